package format

import (
	"encoding/binary"

	"github.com/pageframe/litescan/internal/xerrors"
)

// PageType tags which of the four B-tree page variants a page decodes
// to; it is also the raw byte read from the page header.
type PageType uint8

const (
	PageTableLeaf     PageType = 0x0D
	PageTableInterior PageType = 0x05
	PageIndexLeaf     PageType = 0x0A
	PageIndexInterior PageType = 0x02
)

func (t PageType) IsLeaf() bool {
	return t == PageTableLeaf || t == PageIndexLeaf
}

func (t PageType) IsInterior() bool {
	return t == PageTableInterior || t == PageIndexInterior
}

func (t PageType) IsTable() bool {
	return t == PageTableLeaf || t == PageTableInterior
}

func (t PageType) IsIndex() bool {
	return t == PageIndexLeaf || t == PageIndexInterior
}

// TableLeafCell is a table B-tree leaf cell: a rowid and its record.
type TableLeafCell struct {
	Rowid  int64
	Record Record
}

// TableInteriorCell is a table B-tree interior cell: the page number of
// the subtree to its left and the largest rowid below it.
type TableInteriorCell struct {
	LeftChild uint32
	Key       int64
}

// IndexLeafCell is an index B-tree leaf cell: the indexed record, whose
// trailing column is the rowid it points at in the table tree.
type IndexLeafCell struct {
	Record Record
	Rowid  int64
}

// IndexInteriorCell is an index B-tree interior cell: a left child plus
// the same record/rowid shape as a leaf cell, used as the dividing key.
type IndexInteriorCell struct {
	LeftChild uint32
	Record    Record
	Rowid     int64
}

// Page is a decoded B-tree page: header fields plus whichever cell slice
// matches Type. Exactly one of the four cell slices is populated.
type Page struct {
	Type             PageType
	FirstFreeblock   uint16
	CellCount        uint16
	CellContentStart uint16
	FragmentedBytes  uint8
	RightmostChild   uint32 // interior pages only

	TableLeafCells     []TableLeafCell
	TableInteriorCells []TableInteriorCell
	IndexLeafCells     []IndexLeafCell
	IndexInteriorCells []IndexInteriorCell
}

// ParsePage decodes a raw page buffer (exactly one page-size worth of
// bytes) into a tagged Page. pageNumber is needed to locate the B-tree
// header: it starts at byte 100 on page 1 (after the file header) and
// at byte 0 on every other page.
func ParsePage(buf []byte, pageNumber int) (*Page, error) {
	headerOffset := 0
	if pageNumber == 1 {
		headerOffset = 100
	}
	if len(buf) < headerOffset+8 {
		return nil, xerrors.New("parse_page", xerrors.ErrTruncatedPage, map[string]any{
			"page_number": pageNumber,
			"have_bytes":  len(buf),
		})
	}

	tag := PageType(buf[headerOffset])
	var headerLen int
	switch tag {
	case PageTableLeaf, PageIndexLeaf:
		headerLen = 8
	case PageTableInterior, PageIndexInterior:
		headerLen = 12
	default:
		return nil, xerrors.New("parse_page", xerrors.ErrUnknownPageType, map[string]any{
			"page_number": pageNumber,
			"tag":         tag,
		})
	}
	if len(buf) < headerOffset+headerLen {
		return nil, xerrors.New("parse_page", xerrors.ErrTruncatedPage, map[string]any{
			"page_number": pageNumber,
		})
	}

	page := &Page{
		Type:             tag,
		FirstFreeblock:   binary.BigEndian.Uint16(buf[headerOffset+1 : headerOffset+3]),
		CellCount:        binary.BigEndian.Uint16(buf[headerOffset+3 : headerOffset+5]),
		CellContentStart: binary.BigEndian.Uint16(buf[headerOffset+5 : headerOffset+7]),
		FragmentedBytes:  buf[headerOffset+7],
	}
	if tag.IsInterior() {
		page.RightmostChild = binary.BigEndian.Uint32(buf[headerOffset+8 : headerOffset+12])
	}

	pointerArrayStart := headerOffset + headerLen
	pointers := make([]uint16, page.CellCount)
	for i := 0; i < int(page.CellCount); i++ {
		off := pointerArrayStart + i*2
		if off+2 > len(buf) {
			return nil, xerrors.New("parse_page_cell_pointers", xerrors.ErrTruncatedPage, map[string]any{
				"page_number": pageNumber,
				"cell_index":  i,
			})
		}
		ptr := binary.BigEndian.Uint16(buf[off : off+2])
		if int(ptr) >= len(buf) {
			return nil, xerrors.New("parse_page_cell_pointers", xerrors.ErrTruncatedPage, map[string]any{
				"page_number":   pageNumber,
				"cell_index":    i,
				"pointer_value": ptr,
			})
		}
		pointers[i] = ptr
	}

	var err error
	switch tag {
	case PageTableLeaf:
		page.TableLeafCells, err = parseTableLeafCells(buf, pointers)
	case PageTableInterior:
		page.TableInteriorCells, err = parseTableInteriorCells(buf, pointers)
	case PageIndexLeaf:
		page.IndexLeafCells, err = parseIndexLeafCells(buf, pointers)
	case PageIndexInterior:
		page.IndexInteriorCells, err = parseIndexInteriorCells(buf, pointers)
	}
	if err != nil {
		return nil, err
	}

	return page, nil
}

func parseTableLeafCells(buf []byte, pointers []uint16) ([]TableLeafCell, error) {
	cells := make([]TableLeafCell, len(pointers))
	for i, ptr := range pointers {
		off := int(ptr)
		n1, payloadSize, err := DecodeVarint(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n1
		n2, rowid, err := DecodeVarint(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n2
		if off+int(payloadSize) > len(buf) {
			return nil, xerrors.New("parse_table_leaf_cell", xerrors.ErrTruncatedPage, map[string]any{
				"cell_index": i,
			})
		}
		record, err := ParseRecord(buf[off : off+int(payloadSize)])
		if err != nil {
			return nil, err
		}
		cells[i] = TableLeafCell{Rowid: int64(rowid), Record: record}
	}
	return cells, nil
}

func parseTableInteriorCells(buf []byte, pointers []uint16) ([]TableInteriorCell, error) {
	cells := make([]TableInteriorCell, len(pointers))
	for i, ptr := range pointers {
		off := int(ptr)
		if off+4 > len(buf) {
			return nil, xerrors.New("parse_table_interior_cell", xerrors.ErrTruncatedPage, map[string]any{
				"cell_index": i,
			})
		}
		leftChild := binary.BigEndian.Uint32(buf[off : off+4])
		off += 4
		_, key, err := DecodeVarint(buf[off:])
		if err != nil {
			return nil, err
		}
		cells[i] = TableInteriorCell{LeftChild: leftChild, Key: int64(key)}
	}
	return cells, nil
}

func parseIndexLeafCells(buf []byte, pointers []uint16) ([]IndexLeafCell, error) {
	cells := make([]IndexLeafCell, len(pointers))
	for i, ptr := range pointers {
		off := int(ptr)
		n, payloadSize, err := DecodeVarint(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n
		if off+int(payloadSize) > len(buf) {
			return nil, xerrors.New("parse_index_leaf_cell", xerrors.ErrTruncatedPage, map[string]any{
				"cell_index": i,
			})
		}
		record, err := ParseRecord(buf[off : off+int(payloadSize)])
		if err != nil {
			return nil, err
		}
		rowid := trailingRowid(record)
		cells[i] = IndexLeafCell{Record: record, Rowid: rowid}
	}
	return cells, nil
}

func parseIndexInteriorCells(buf []byte, pointers []uint16) ([]IndexInteriorCell, error) {
	cells := make([]IndexInteriorCell, len(pointers))
	for i, ptr := range pointers {
		off := int(ptr)
		if off+4 > len(buf) {
			return nil, xerrors.New("parse_index_interior_cell", xerrors.ErrTruncatedPage, map[string]any{
				"cell_index": i,
			})
		}
		leftChild := binary.BigEndian.Uint32(buf[off : off+4])
		off += 4
		n, payloadSize, err := DecodeVarint(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n
		if off+int(payloadSize) > len(buf) {
			return nil, xerrors.New("parse_index_interior_cell", xerrors.ErrTruncatedPage, map[string]any{
				"cell_index": i,
			})
		}
		record, err := ParseRecord(buf[off : off+int(payloadSize)])
		if err != nil {
			return nil, err
		}
		rowid := trailingRowid(record)
		cells[i] = IndexInteriorCell{LeftChild: leftChild, Record: record, Rowid: rowid}
	}
	return cells, nil
}

// trailingRowid extracts the rowid carried as the last column of an
// index record (spec 3/4.B: "index leaf/interior ... last column is
// rowid").
func trailingRowid(r Record) int64 {
	if len(r.ColumnValues) == 0 {
		return 0
	}
	last := r.ColumnValues[len(r.ColumnValues)-1]
	n, _ := last.Int64()
	return n
}
