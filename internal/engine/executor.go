// Package engine executes a parsed SELECT statement against a
// database's B-tree storage: it resolves the table through the
// catalog, picks a full scan or an index-accelerated lookup, applies
// the WHERE predicate, and projects the requested columns.
package engine

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/pageframe/litescan/internal/catalog"
	"github.com/pageframe/litescan/internal/pager"
	"github.com/pageframe/litescan/internal/sql/ast"
	"github.com/pageframe/litescan/internal/sql/parser"
	"github.com/pageframe/litescan/internal/xerrors"
)

// Executor runs SQL text against one database's pager and catalog.
type Executor struct {
	pager *pager.Pager
	cat   *catalog.Catalog
}

func New(p *pager.Pager, cat *catalog.Catalog) *Executor {
	return &Executor{pager: p, cat: cat}
}

// Result is a query's output: a header per select-list item and the
// rendered rows, already formatted the way the CLI prints them.
type Result struct {
	Headers []string
	Rows    [][]string
}

// Execute parses and runs a single SQL statement.
func (e *Executor) Execute(ctx context.Context, sql string) (*Result, error) {
	// A request ID ties together the errors a single query can raise
	// across the lexer, parser, catalog, and B-tree walk.
	queryID := uuid.New().String()

	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, xerrors.New("execute", err, map[string]any{"query_id": queryID})
	}

	switch n := stmt.(type) {
	case *ast.Unsupported:
		return nil, xerrors.New("execute", xerrors.ErrUnsupportedQuery, map[string]any{
			"query_id": queryID,
			"keyword":  n.Keyword,
		})
	case *ast.Select:
		result, err := e.executeSelect(ctx, n)
		if err != nil {
			return nil, xerrors.New("execute", err, map[string]any{"query_id": queryID})
		}
		return result, nil
	default:
		return nil, xerrors.New("execute", xerrors.ErrUnsupportedQuery, map[string]any{"query_id": queryID})
	}
}

func (e *Executor) executeSelect(ctx context.Context, stmt *ast.Select) (*Result, error) {
	table, ok := e.cat.Table(stmt.From.Name)
	if !ok {
		return nil, xerrors.New("resolve_table", xerrors.ErrUnknownTable, map[string]any{
			"table": stmt.From.Name,
		})
	}

	if fc, header, ok := isAggregateFastPath(stmt); ok {
		return e.executeAggregateFastPath(ctx, fc, header, table)
	}

	rows, err := e.matchingRows(ctx, stmt, table)
	if err != nil {
		return nil, err
	}

	items, headers := resolveProjection(stmt.Columns, table)
	result := &Result{Headers: headers}
	if containsAggregate(items) {
		result.Rows = [][]string{projectRow(items, zeroRow(), rows)}
		return result, nil
	}

	result.Rows = make([][]string, len(rows))
	for i, row := range rows {
		result.Rows[i] = projectRow(items, row, rows)
	}
	return result, nil
}

func (e *Executor) executeAggregateFastPath(ctx context.Context, fc *ast.FuncCall, header string, table *catalog.TableSchema) (*Result, error) {
	spec := resolveAggregate(fc, table)

	var count int64
	rows, err := scanTable(ctx, e.pager, table.RootPage)
	if err != nil {
		return nil, err
	}
	if spec.columnIndex < 0 {
		count = int64(len(rows))
	} else {
		for _, r := range rows {
			if !r.Record.At(spec.columnIndex).IsNull() {
				count++
			}
		}
	}

	return &Result{
		Headers: []string{header},
		Rows:    [][]string{{intToString(count)}},
	}, nil
}

// matchingRows resolves a SELECT's source rows: an index-accelerated
// lookup when the WHERE clause is a single equality on an indexed
// column, otherwise a full scan with the predicate applied per row.
func (e *Executor) matchingRows(ctx context.Context, stmt *ast.Select, table *catalog.TableSchema) ([]MatchedRow, error) {
	if stmt.Where == nil {
		return scanTable(ctx, e.pager, table.RootPage)
	}

	bin, ok := stmt.Where.(*ast.BinaryOp)
	if !ok {
		return nil, xerrors.New("evaluate_where", xerrors.ErrUnsupportedQuery, nil)
	}

	if bin.Op == ast.OpEqual {
		if ident, ok := bin.Left.(*ast.Ident); ok {
			if idx, found := e.cat.IndexForColumn(table.Name, ident.Name); found {
				if lit, ok := literalValue(bin.Right); ok {
					rowids, err := indexEqualRowids(ctx, e.pager, idx.RootPage, lit)
					if err != nil {
						return nil, err
					}
					wanted := make(map[int64]bool, len(rowids))
					for _, r := range rowids {
						wanted[r] = true
					}
					return scanTableRowids(ctx, e.pager, table.RootPage, wanted)
				}
			}
		}
	}

	all, err := scanTable(ctx, e.pager, table.RootPage)
	if err != nil {
		return nil, err
	}

	var matched []MatchedRow
	for _, row := range all {
		ok, err := evalWhere(bin, row, table)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func evalWhere(bin *ast.BinaryOp, row MatchedRow, table *catalog.TableSchema) (bool, error) {
	ident, ok := bin.Left.(*ast.Ident)
	if !ok {
		return false, xerrors.New("evaluate_where", xerrors.ErrUnsupportedQuery, nil)
	}
	idx := table.ColumnIndex(ident.Name)
	if idx < 0 {
		return false, xerrors.New("evaluate_where", xerrors.ErrUnknownColumn, map[string]any{
			"column": ident.Name,
		})
	}
	left := row.Record.ColumnOrRowid(idx, row.Rowid)
	right, ok := literalValue(bin.Right)
	if !ok {
		return false, nil
	}
	return evalComparison(bin.Op, left, right), nil
}

// containsAggregate reports whether any projection item is an
// aggregate, the signal that the whole projection collapses to one
// output row evaluated over the matched set (see projectRow).
func containsAggregate(items []projectionItem) bool {
	for _, it := range items {
		if it.aggregate != nil {
			return true
		}
	}
	return false
}

func zeroRow() MatchedRow { return MatchedRow{} }

func intToString(n int64) string {
	return strconv.FormatInt(n, 10)
}
