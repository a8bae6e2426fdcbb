package engine

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// This file builds small synthetic single- and multi-page SQLite
// databases for the executor tests below, the same way the format and
// catalog packages build synthetic pages for their own unit tests.

func encodeVarintForTest(v uint64) []byte {
	if v&(uint64(0xff000000)<<32) != 0 {
		p := make([]byte, 9)
		p[8] = byte(v)
		v >>= 8
		for i := 7; i >= 0; i-- {
			p[i] = byte(v&0x7f) | 0x80
			v >>= 7
		}
		return p
	}
	var buf [9]byte
	n := 0
	for {
		buf[n] = byte(v&0x7f) | 0x80
		n++
		v >>= 7
		if v == 0 {
			break
		}
	}
	buf[0] &= 0x7f
	p := make([]byte, n)
	for i, j := 0, n-1; j >= 0; j, i = j-1, i+1 {
		p[i] = buf[j]
	}
	return p
}

// colVal is one column's test value, tagged by kind.
type colVal struct {
	null bool
	i    *int64
	s    *string
}

func nullCol() colVal       { return colVal{null: true} }
func intCol(v int64) colVal { return colVal{i: &v} }
func textCol(v string) colVal {
	return colVal{s: &v}
}

func encodeColumn(v colVal) (serialType uint64, body []byte) {
	switch {
	case v.null:
		return 0, nil
	case v.i != nil:
		n := *v.i
		if n >= -128 && n <= 127 {
			return 1, []byte{byte(int8(n))}
		}
		body = make([]byte, 8)
		binary.BigEndian.PutUint64(body, uint64(n))
		return 6, body
	default:
		return uint64(len(*v.s))*2 + 13, []byte(*v.s)
	}
}

func encodeRecordFrom(cols []colVal) []byte {
	var header []byte
	var body []byte
	for _, c := range cols {
		st, b := encodeColumn(c)
		header = append(header, encodeVarintForTest(st)...)
		body = append(body, b...)
	}
	headerLen := uint64(len(header)) + 1
	hlBytes := encodeVarintForTest(headerLen)
	for uint64(len(hlBytes))+uint64(len(header)) != headerLen {
		headerLen++
		hlBytes = encodeVarintForTest(headerLen)
	}
	var record []byte
	record = append(record, hlBytes...)
	record = append(record, header...)
	record = append(record, body...)
	return record
}

type leafCellSpec struct {
	rowid int64
	cols  []colVal
}

// buildTableLeafPage lays out a single table-leaf page, optionally with
// the 100-byte file-header offset applied (isPageOne).
func buildTableLeafPage(t *testing.T, pageSize int, isPageOne bool, cells []leafCellSpec) []byte {
	t.Helper()
	buf := make([]byte, pageSize)

	headerOffset := 0
	if isPageOne {
		headerOffset = 100
	}
	buf[headerOffset] = 0x0D

	cellEnd := pageSize
	pointers := make([]uint16, len(cells))
	for i, spec := range cells {
		record := encodeRecordFrom(spec.cols)
		var cell []byte
		cell = append(cell, encodeVarintForTest(uint64(len(record)))...)
		cell = append(cell, encodeVarintForTest(uint64(spec.rowid))...)
		cell = append(cell, record...)

		cellEnd -= len(cell)
		copy(buf[cellEnd:], cell)
		pointers[i] = uint16(cellEnd)
	}

	binary.BigEndian.PutUint16(buf[headerOffset+3:headerOffset+5], uint16(len(cells)))
	if len(pointers) > 0 {
		binary.BigEndian.PutUint16(buf[headerOffset+5:headerOffset+7], pointers[len(pointers)-1])
	}

	pointerArrayStart := headerOffset + 8
	for i, ptr := range pointers {
		binary.BigEndian.PutUint16(buf[pointerArrayStart+i*2:pointerArrayStart+i*2+2], ptr)
	}

	return buf
}

// buildIndexLeafPage lays out a single index-leaf page. Each cell's
// record is the indexed column's value followed by the trailing rowid.
func buildIndexLeafPage(t *testing.T, pageSize int, entries []struct {
	value string
	rowid int64
}) []byte {
	t.Helper()
	buf := make([]byte, pageSize)
	buf[0] = 0x0A

	cellEnd := pageSize
	pointers := make([]uint16, len(entries))
	for i, e := range entries {
		record := encodeRecordFrom([]colVal{textCol(e.value), intCol(e.rowid)})
		var cell []byte
		cell = append(cell, encodeVarintForTest(uint64(len(record)))...)
		cell = append(cell, record...)

		cellEnd -= len(cell)
		copy(buf[cellEnd:], cell)
		pointers[i] = uint16(cellEnd)
	}

	binary.BigEndian.PutUint16(buf[3:5], uint16(len(entries)))
	if len(pointers) > 0 {
		binary.BigEndian.PutUint16(buf[5:7], pointers[len(pointers)-1])
	}
	for i, ptr := range pointers {
		binary.BigEndian.PutUint16(buf[8+i*2:10+i*2], ptr)
	}

	return buf
}

type tableInteriorCellSpec struct {
	leftChild uint32
	key       int64
}

// buildTableInteriorPage lays out a table-interior page: one 4-byte
// left-child-page + varint-key cell per entry, plus the right-most
// child page number in the header.
func buildTableInteriorPage(t *testing.T, pageSize int, cells []tableInteriorCellSpec, rightmostChild uint32) []byte {
	t.Helper()
	buf := make([]byte, pageSize)
	buf[0] = 0x05

	cellEnd := pageSize
	pointers := make([]uint16, len(cells))
	for i, spec := range cells {
		var cell []byte
		var leftChildBytes [4]byte
		binary.BigEndian.PutUint32(leftChildBytes[:], spec.leftChild)
		cell = append(cell, leftChildBytes[:]...)
		cell = append(cell, encodeVarintForTest(uint64(spec.key))...)

		cellEnd -= len(cell)
		copy(buf[cellEnd:], cell)
		pointers[i] = uint16(cellEnd)
	}

	binary.BigEndian.PutUint16(buf[3:5], uint16(len(cells)))
	if len(pointers) > 0 {
		binary.BigEndian.PutUint16(buf[5:7], pointers[len(pointers)-1])
	}
	binary.BigEndian.PutUint32(buf[8:12], rightmostChild)
	for i, ptr := range pointers {
		binary.BigEndian.PutUint16(buf[12+i*2:14+i*2], ptr)
	}

	return buf
}

type indexInteriorEntrySpec struct {
	leftChild uint32
	value     string
	rowid     int64
}

// buildIndexInteriorPage lays out an index-interior page: one 4-byte
// left-child-page + varint-length + record (value, rowid) cell per
// entry, plus the right-most child page number in the header.
func buildIndexInteriorPage(t *testing.T, pageSize int, entries []indexInteriorEntrySpec, rightmostChild uint32) []byte {
	t.Helper()
	buf := make([]byte, pageSize)
	buf[0] = 0x02

	cellEnd := pageSize
	pointers := make([]uint16, len(entries))
	for i, e := range entries {
		record := encodeRecordFrom([]colVal{textCol(e.value), intCol(e.rowid)})
		var cell []byte
		var leftChildBytes [4]byte
		binary.BigEndian.PutUint32(leftChildBytes[:], e.leftChild)
		cell = append(cell, leftChildBytes[:]...)
		cell = append(cell, encodeVarintForTest(uint64(len(record)))...)
		cell = append(cell, record...)

		cellEnd -= len(cell)
		copy(buf[cellEnd:], cell)
		pointers[i] = uint16(cellEnd)
	}

	binary.BigEndian.PutUint16(buf[3:5], uint16(len(entries)))
	if len(pointers) > 0 {
		binary.BigEndian.PutUint16(buf[5:7], pointers[len(pointers)-1])
	}
	binary.BigEndian.PutUint32(buf[8:12], rightmostChild)
	for i, ptr := range pointers {
		binary.BigEndian.PutUint16(buf[12+i*2:14+i*2], ptr)
	}

	return buf
}

type testSchemaRow struct {
	objType  string
	name     string
	tblName  string
	rootPage int64
	sql      string
}

func schemaRowCols(r testSchemaRow) []colVal {
	return []colVal{
		textCol(r.objType),
		textCol(r.name),
		textCol(r.tblName),
		intCol(r.rootPage),
		textCol(r.sql),
	}
}

// writeDatabase assembles a multi-page database file: page 1 is the
// schema table, and pages contains any additional pre-built pages in
// file order starting at page 2.
func writeDatabase(t *testing.T, pageSize int, schemaRows []testSchemaRow, pages ...[]byte) string {
	t.Helper()

	cells := make([]leafCellSpec, len(schemaRows))
	for i, r := range schemaRows {
		cells[i] = leafCellSpec{rowid: int64(i + 1), cols: schemaRowCols(r)}
	}
	page1 := buildTableLeafPage(t, pageSize, true, cells)

	totalPages := 1 + len(pages)
	buf := make([]byte, pageSize*totalPages)
	copy(buf[:16], "SQLite format 3\x00")
	binary.BigEndian.PutUint16(buf[16:18], uint16(pageSize))
	copy(buf[100:pageSize], page1[100:])

	for i, p := range pages {
		copy(buf[(i+1)*pageSize:(i+2)*pageSize], p)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write synthetic database: %v", err)
	}
	return path
}
