// Package catalog builds an in-memory directory of a database's tables
// and indexes by reading the sqlite_schema rows stored on page 1, and
// parses just enough of each object's CREATE statement to know its
// column names.
package catalog

import (
	"context"
	"strings"

	"github.com/pageframe/litescan/internal/pager"
	"github.com/pageframe/litescan/internal/xerrors"
)

// TableSchema describes one user table found in sqlite_schema.
type TableSchema struct {
	Name     string
	RootPage int
	SQL      string
	Columns  []string
}

// ColumnIndex returns the zero-based position of name in the table's
// declared column order, case-insensitively, or -1 if absent.
func (t *TableSchema) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// IndexSchema describes one index found in sqlite_schema.
type IndexSchema struct {
	Name      string
	TableName string
	RootPage  int
	SQL       string
	Columns   []string
}

// Catalog is the queryable directory of a database's schema objects.
type Catalog struct {
	tables         map[string]*TableSchema
	indexesByTable map[string][]*IndexSchema
}

// Table returns the named table's schema, case-insensitively.
func (c *Catalog) Table(name string) (*TableSchema, bool) {
	t, ok := c.tables[strings.ToLower(name)]
	return t, ok
}

// Tables returns every table in the catalog, in no particular order.
func (c *Catalog) Tables() []*TableSchema {
	out := make([]*TableSchema, 0, len(c.tables))
	for _, t := range c.tables {
		out = append(out, t)
	}
	return out
}

// IndexForColumn returns an index on table covering column, if one
// exists, preferring the first one declared.
func (c *Catalog) IndexForColumn(table, column string) (*IndexSchema, bool) {
	for _, idx := range c.indexesByTable[strings.ToLower(table)] {
		if len(idx.Columns) > 0 && strings.EqualFold(idx.Columns[0], column) {
			return idx, true
		}
	}
	return nil, false
}

// Build reads page 1 as a table-leaf page holding sqlite_schema rows and
// assembles the catalog from the "table" and "index" entries it finds.
func Build(ctx context.Context, p *pager.Pager) (*Catalog, error) {
	page, err := p.ReadPage(ctx, 1)
	if err != nil {
		return nil, xerrors.New("catalog_build_read_page1", err, nil)
	}
	if !page.Type.IsTable() || !page.Type.IsLeaf() {
		return nil, xerrors.New("catalog_build", xerrors.ErrMalformedRecord, map[string]any{
			"reason": "sqlite_schema root page is not a table leaf",
		})
	}

	cat := &Catalog{
		tables:         make(map[string]*TableSchema),
		indexesByTable: make(map[string][]*IndexSchema),
	}

	var pendingIndexes []*IndexSchema
	for _, cell := range page.TableLeafCells {
		rec := cell.Record
		if len(rec.ColumnValues) < 5 {
			continue
		}
		objType := rec.At(0).String()
		name := rec.At(1).String()
		tblName := rec.At(2).String()
		rootPage, _ := rec.At(3).Int64()
		sql := rec.At(4).String()

		switch objType {
		case "table":
			cat.tables[strings.ToLower(name)] = &TableSchema{
				Name:     name,
				RootPage: int(rootPage),
				SQL:      sql,
				Columns:  parseCreateTableColumns(sql),
			}
		case "index":
			if sql == "" {
				// Auto-index backing a UNIQUE/PRIMARY KEY constraint: no
				// CREATE INDEX statement exists to parse columns from.
				continue
			}
			idx := &IndexSchema{
				Name:      name,
				TableName: tblName,
				RootPage:  int(rootPage),
				SQL:       sql,
				Columns:   parseCreateIndexColumns(sql),
			}
			if idx.TableName == "" {
				idx.TableName = parseCreateIndexTableName(sql)
			}
			pendingIndexes = append(pendingIndexes, idx)
		}
	}

	for _, idx := range pendingIndexes {
		key := strings.ToLower(idx.TableName)
		cat.indexesByTable[key] = append(cat.indexesByTable[key], idx)
	}

	return cat, nil
}
