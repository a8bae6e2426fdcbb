// Command litescan is a read-only query engine over the SQLite file
// format: it decodes pages and records directly off disk and runs a
// small SQL subset against them, without linking SQLite itself.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/pageframe/litescan/internal/catalog"
	"github.com/pageframe/litescan/internal/engine"
	"github.com/pageframe/litescan/internal/pager"
)

// cli is the positional argument shape: a database path and a command,
// where the command may be a dot-introspection verb or a SQL statement
// that itself contains spaces, so the remainder of argv is rejoined.
type cli struct {
	Database string   `arg:"" help:"Path to the SQLite database file."`
	Command  []string `arg:"" help:"A dot-command (.dbinfo, .tables) or a SQL statement."`
}

func main() {
	os.Exit(runProgram(os.Args[1:]))
}

// runProgram holds everything main does, separated out so tests can
// drive it with synthetic argv and captured stdout instead of a real
// process.
func runProgram(args []string) int {
	// The spec's two missing-argument cases carry distinct exit codes,
	// which kong's own parse-error handling does not distinguish, so
	// argument count is checked before kong ever sees argv.
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "error: missing database path")
		return 1
	}
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "error: missing command")
		return 2
	}

	var c cli
	parser, err := kong.New(&c,
		kong.Name("litescan"),
		kong.Description("A read-only SQLite file-format query engine."),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if _, err := parser.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if err := run(c); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func run(c cli) error {
	p, err := pager.Open(c.Database)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()
	command := strings.Join(c.Command, " ")

	switch command {
	case ".dbinfo":
		return runDBInfo(ctx, p)
	case ".tables":
		return runTables(ctx, p)
	case "":
		return errors.New("empty command")
	default:
		return runQuery(ctx, p, command)
	}
}

func runDBInfo(ctx context.Context, p *pager.Pager) error {
	page, err := p.ReadPage(ctx, 1)
	if err != nil {
		return err
	}
	fmt.Printf("database page size: %d\n", p.PageSize())
	fmt.Printf("number of tables: %d\n", len(page.TableLeafCells))
	return nil
}

func runTables(ctx context.Context, p *pager.Pager) error {
	cat, err := catalog.Build(ctx, p)
	if err != nil {
		return err
	}
	tables := cat.Tables()
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	fmt.Println(strings.Join(names, " "))
	return nil
}

func runQuery(ctx context.Context, p *pager.Pager, sql string) error {
	cat, err := catalog.Build(ctx, p)
	if err != nil {
		return err
	}
	result, err := engine.New(p, cat).Execute(ctx, sql)
	if err != nil {
		return err
	}
	for _, row := range result.Rows {
		fmt.Println(strings.Join(row, "|"))
	}
	return nil
}
