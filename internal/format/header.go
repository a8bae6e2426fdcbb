package format

import (
	"bytes"
	"encoding/binary"

	"github.com/pageframe/litescan/internal/xerrors"
)

const (
	HeaderSize = 100
	magic      = "SQLite format 3\x00"
)

// FileHeader is the 100-byte SQLite database file header that precedes
// page 1's B-tree page header.
type FileHeader struct {
	PageSize int
}

// ParseFileHeader validates the magic string and decodes the page size
// from the first 100 bytes of the file.
func ParseFileHeader(buf []byte) (FileHeader, error) {
	if len(buf) < HeaderSize {
		return FileHeader{}, xerrors.New("parse_file_header", xerrors.ErrInvalidHeader, map[string]any{
			"have_bytes": len(buf),
		})
	}
	if !bytes.Equal(buf[:16], []byte(magic)) {
		return FileHeader{}, xerrors.New("parse_file_header", xerrors.ErrInvalidHeader, map[string]any{
			"reason": "magic mismatch",
		})
	}

	raw := binary.BigEndian.Uint16(buf[16:18])
	var pageSize int
	switch {
	case raw == 1:
		pageSize = 65536
	case raw != 0 && raw&(raw-1) == 0:
		pageSize = int(raw)
	default:
		return FileHeader{}, xerrors.New("parse_file_header", xerrors.ErrInvalidHeader, map[string]any{
			"reason":        "page size not a power of two",
			"raw_page_size": raw,
		})
	}
	if pageSize < 512 || pageSize > 65536 {
		return FileHeader{}, xerrors.New("parse_file_header", xerrors.ErrInvalidHeader, map[string]any{
			"reason":    "page size out of range",
			"page_size": pageSize,
		})
	}

	return FileHeader{PageSize: pageSize}, nil
}
