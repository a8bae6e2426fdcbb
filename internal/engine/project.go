package engine

import (
	"strings"

	"github.com/pageframe/litescan/internal/catalog"
	"github.com/pageframe/litescan/internal/format"
	"github.com/pageframe/litescan/internal/sql/ast"
)

// projectionItem is one resolved select-list entry: either a plain
// column (by index into the table schema, -1 if unknown) or an
// aggregate function to evaluate over the whole matched row set.
type projectionItem struct {
	columnIndex int // -1 for unknown column, -2 for non-column (aggregate)
	aggregate   *aggregateSpec
}

type aggregateSpec struct {
	name        string // "COUNT"
	columnIndex int    // -1 for COUNT(*)
}

// resolveProjection expands the select list into concrete projection
// items, expanding "*" into every schema column in declared order.
func resolveProjection(columns []ast.Expr, table *catalog.TableSchema) ([]projectionItem, []string) {
	var items []projectionItem
	var headers []string

	for _, col := range columns {
		alias, col := aliasAndExpr(col)
		switch n := col.(type) {
		case *ast.Wildcard:
			for i, name := range table.Columns {
				items = append(items, projectionItem{columnIndex: i})
				headers = append(headers, name)
			}
		case *ast.Ident:
			items = append(items, projectionItem{columnIndex: table.ColumnIndex(n.Name)})
			headers = append(headers, headerFor(alias, n.Name))
		case *ast.FuncCall:
			spec := resolveAggregate(n, table)
			items = append(items, projectionItem{columnIndex: -2, aggregate: spec})
			headers = append(headers, headerFor(alias, n.Name))
		default:
			items = append(items, projectionItem{columnIndex: -1})
			headers = append(headers, headerFor(alias, "?"))
		}
	}
	return items, headers
}

// aliasAndExpr strips an *ast.Aliased wrapper, returning its alias name
// (empty if e wasn't aliased) alongside the underlying expression.
func aliasAndExpr(e ast.Expr) (string, ast.Expr) {
	if a, ok := e.(*ast.Aliased); ok {
		return a.Alias, a.Expr
	}
	return "", e
}

func headerFor(alias, sourceName string) string {
	if alias != "" {
		return alias
	}
	return sourceName
}

func resolveAggregate(fc *ast.FuncCall, table *catalog.TableSchema) *aggregateSpec {
	spec := &aggregateSpec{name: fc.Name, columnIndex: -1}
	if len(fc.Args) == 1 {
		if ident, ok := fc.Args[0].(*ast.Ident); ok {
			spec.columnIndex = table.ColumnIndex(ident.Name)
		}
	}
	return spec
}

// projectRow renders one matched row's display values for the given
// projection items. Aggregate items always render the count over the
// full matched set, which is the degenerate behavior the source shows
// for COUNT mixed into an otherwise plain projection.
func projectRow(items []projectionItem, row MatchedRow, allRows []MatchedRow) []string {
	out := make([]string, len(items))
	for i, item := range items {
		switch {
		case item.aggregate != nil:
			out[i] = countRows(allRows, item.aggregate).String()
		case item.columnIndex < 0:
			out[i] = format.Null().String()
		default:
			out[i] = row.Record.ColumnOrRowid(item.columnIndex, row.Rowid).String()
		}
	}
	return out
}

func countRows(rows []MatchedRow, spec *aggregateSpec) format.Value {
	if spec.columnIndex < 0 {
		return format.IntValue(int64(len(rows)))
	}
	var n int64
	for _, r := range rows {
		if !r.Record.At(spec.columnIndex).IsNull() {
			n++
		}
	}
	return format.IntValue(n)
}

// isAggregateFastPath reports whether the select list is exactly one
// COUNT(...) with no WHERE clause, the case the executor answers by
// counting the rows of one full table scan, with no predicate
// evaluation and no per-row projection. The returned header is the select
// item's alias if it has one, else the function name.
func isAggregateFastPath(stmt *ast.Select) (fc *ast.FuncCall, header string, ok bool) {
	if stmt.Where != nil || len(stmt.Columns) != 1 {
		return nil, "", false
	}
	alias, expr := aliasAndExpr(stmt.Columns[0])
	fc, ok = expr.(*ast.FuncCall)
	if !ok {
		return nil, "", false
	}
	if !strings.EqualFold(fc.Name, "COUNT") {
		return nil, "", false
	}
	if len(fc.Args) != 1 {
		return nil, "", false
	}
	switch fc.Args[0].(type) {
	case *ast.Wildcard, *ast.Ident:
		return fc, headerFor(alias, fc.Name), true
	default:
		return nil, "", false
	}
}
