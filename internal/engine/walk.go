package engine

import (
	"context"

	"github.com/pageframe/litescan/internal/format"
	"github.com/pageframe/litescan/internal/pager"
)

// MatchedRow pairs a table row with the rowid that identifies it, since
// projection and predicate evaluation both need the rowid for NULL
// substitution independent of which columns are selected.
type MatchedRow struct {
	Rowid  int64
	Record format.Record
}

// scanTable performs a full, unpruned walk of a table B-tree, visiting
// every leaf cell in key order.
func scanTable(ctx context.Context, p *pager.Pager, rootPage int) ([]MatchedRow, error) {
	var rows []MatchedRow
	err := walkTablePage(ctx, p, rootPage, nil, func(cell format.TableLeafCell) {
		rows = append(rows, MatchedRow{Rowid: cell.Rowid, Record: cell.Record})
	})
	return rows, err
}

// scanTableRowids performs a pruned walk of a table B-tree, visiting
// only the leaves that can hold a rowid in wanted. This turns an
// index-accelerated point lookup into O(log n + |wanted|) page reads
// instead of a full scan.
func scanTableRowids(ctx context.Context, p *pager.Pager, rootPage int, wanted map[int64]bool) ([]MatchedRow, error) {
	var rows []MatchedRow
	err := walkTablePage(ctx, p, rootPage, wanted, func(cell format.TableLeafCell) {
		if wanted[cell.Rowid] {
			rows = append(rows, MatchedRow{Rowid: cell.Rowid, Record: cell.Record})
		}
	})
	return rows, err
}

// walkTablePage visits every table-leaf cell reachable from pageNumber.
// When wanted is non-nil, interior descent is pruned: a child cell
// keyed at k is visited only if wanted holds some rowid <= k, and the
// right-most child is visited only if wanted holds some rowid greater
// than the page's last key.
func walkTablePage(ctx context.Context, p *pager.Pager, pageNumber int, wanted map[int64]bool, visit func(format.TableLeafCell)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	page, err := p.ReadPage(ctx, pageNumber)
	if err != nil {
		return err
	}

	if page.Type.IsLeaf() {
		for _, cell := range page.TableLeafCells {
			visit(cell)
		}
		return nil
	}

	var lastKey int64
	haveLastKey := false
	for _, cell := range page.TableInteriorCells {
		lastKey = cell.Key
		haveLastKey = true
		if wanted != nil && !anyRowidAtMost(wanted, cell.Key) {
			continue
		}
		if err := walkTablePage(ctx, p, int(cell.LeftChild), wanted, visit); err != nil {
			return err
		}
	}

	visitRight := wanted == nil || !haveLastKey || anyRowidGreaterThan(wanted, lastKey)
	if visitRight {
		if err := walkTablePage(ctx, p, int(page.RightmostChild), wanted, visit); err != nil {
			return err
		}
	}
	return nil
}

func anyRowidAtMost(wanted map[int64]bool, k int64) bool {
	for r := range wanted {
		if r <= k {
			return true
		}
	}
	return false
}

func anyRowidGreaterThan(wanted map[int64]bool, k int64) bool {
	for r := range wanted {
		if r > k {
			return true
		}
	}
	return false
}

// indexEqualRowids descends an index B-tree collecting the rowids of
// every entry whose indexed value equals query. This implements the
// corrected traversal: a cell's own rowid is included only on an exact
// match, equal-or-greater keys recurse left, a key greater than the
// query also ends the scan of its page, and otherwise the right-most
// child is visited after the last cell.
func indexEqualRowids(ctx context.Context, p *pager.Pager, rootPage int, query format.Value) ([]int64, error) {
	var rowids []int64
	err := walkIndexPage(ctx, p, rootPage, query, &rowids)
	return rowids, err
}

func walkIndexPage(ctx context.Context, p *pager.Pager, pageNumber int, query format.Value, out *[]int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	page, err := p.ReadPage(ctx, pageNumber)
	if err != nil {
		return err
	}

	if page.Type.IsLeaf() {
		for _, cell := range page.IndexLeafCells {
			if indexKeyEquals(cell.Record, query) {
				*out = append(*out, cell.Rowid)
			}
		}
		return nil
	}

	for _, cell := range page.IndexInteriorCells {
		cmp := compareIndexKey(cell.Record, query)
		switch {
		case cmp > 0:
			// q < k: recurse left and stop scanning this page.
			return walkIndexPage(ctx, p, int(cell.LeftChild), query, out)
		case cmp == 0:
			// q == k: recurse left for duplicates, then take this cell's
			// own rowid as an exact match.
			if err := walkIndexPage(ctx, p, int(cell.LeftChild), query, out); err != nil {
				return err
			}
			*out = append(*out, cell.Rowid)
		default:
			// q > k: this cell can't match, keep scanning right.
		}
	}

	return walkIndexPage(ctx, p, int(page.RightmostChild), query, out)
}

// indexKeyEquals reports whether an index record's leading (indexed)
// column equals query.
func indexKeyEquals(r format.Record, query format.Value) bool {
	return compareIndexKey(r, query) == 0
}

// compareIndexKey compares query against an index record's leading
// column, returning >0 if query < key, 0 if equal, <0 if query > key.
func compareIndexKey(r format.Record, query format.Value) int {
	if len(r.ColumnValues) == 0 {
		return -1
	}
	key := r.ColumnValues[0]
	return compareValues(key, query)
}
