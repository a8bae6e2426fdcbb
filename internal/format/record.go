package format

import "github.com/pageframe/litescan/internal/xerrors"

// Record is a parsed serial-type header plus its decoded column values.
type Record struct {
	ColumnTypes  []uint64
	ColumnValues []Value
}

// ParseRecord decodes a record payload: a header giving one serial type
// per column, followed by a body holding each column's bytes in order.
func ParseRecord(payload []byte) (Record, error) {
	if len(payload) == 0 {
		return Record{}, nil
	}

	n, headerLen, err := DecodeVarint(payload)
	if err != nil {
		return Record{}, xerrors.New("parse_record_header_length", err, nil)
	}
	if int(headerLen) > len(payload) {
		return Record{}, xerrors.New("parse_record", xerrors.ErrMalformedRecord, map[string]any{
			"header_length": headerLen,
			"payload_len":   len(payload),
		})
	}

	var types []uint64
	offset := n
	for offset < int(headerLen) {
		consumed, serialType, err := DecodeVarint(payload[offset:])
		if err != nil {
			return Record{}, xerrors.New("parse_record_serial_type", err, map[string]any{
				"offset": offset,
			})
		}
		if offset+consumed > int(headerLen) {
			return Record{}, xerrors.New("parse_record", xerrors.ErrMalformedRecord, map[string]any{
				"reason": "serial type overruns header",
				"offset": offset,
			})
		}
		types = append(types, serialType)
		offset += consumed
	}

	values := make([]Value, len(types))
	body := int(headerLen)
	for i, st := range types {
		width := SerialTypeWidth(st)
		if body+width > len(payload) {
			return Record{}, xerrors.New("parse_record_body", xerrors.ErrMalformedRecord, map[string]any{
				"column":       i,
				"need_bytes":   body + width,
				"have_bytes":   len(payload),
			})
		}
		v, err := DecodeValue(st, payload[body:body+width])
		if err != nil {
			return Record{}, err
		}
		values[i] = v
		body += width
	}

	return Record{ColumnTypes: types, ColumnValues: values}, nil
}

// ColumnOrRowid returns the value at index i, substituting rowid for a
// NULL (the unconditional interpretation the design adopts: a NULL at
// any index gets the rowid, not only in the leading column and
// regardless of declared PRIMARY KEY column). An index outside the
// record yields NULL.
func (r Record) ColumnOrRowid(i int, rowid int64) Value {
	if i < 0 || i >= len(r.ColumnValues) {
		return Null()
	}
	v := r.ColumnValues[i]
	if v.IsNull() {
		return IntValue(rowid)
	}
	return v
}

// At returns the value at index i, or NULL if the record is shorter
// than the schema (short records pad with NULL at projection time).
func (r Record) At(i int) Value {
	if i < 0 || i >= len(r.ColumnValues) {
		return Null()
	}
	return r.ColumnValues[i]
}
