// Package pager turns a SQLite database file into a sequence of decoded
// pages: it owns the open file handle, validates the file header once at
// open time, and serves ReadPage calls from an in-memory cache backed by
// format.ParsePage.
package pager

import (
	"container/list"
	"context"
	"fmt"
	"os"

	"github.com/pageframe/litescan/internal/format"
	"github.com/pageframe/litescan/internal/xerrors"
)

// Pager reads and caches the pages of a single SQLite database file.
// It is not safe for concurrent use: litescan walks one B-tree at a
// time on a single goroutine, and the cache below assumes that.
type Pager struct {
	file   *os.File
	header format.FileHeader
	config *Config

	cache     map[int]*format.Page
	lru       *list.List
	lruByPage map[int]*list.Element
}

// Open opens path, validates the 100-byte file header, and returns a
// Pager ready to serve ReadPage calls.
func Open(path string, opts ...Option) (*Pager, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, xerrors.New("pager_open", err, map[string]any{"path": path})
	}

	headerBuf := make([]byte, format.HeaderSize)
	if _, err := file.ReadAt(headerBuf, 0); err != nil {
		file.Close()
		return nil, xerrors.New("pager_open_read_header", err, map[string]any{"path": path})
	}
	header, err := format.ParseFileHeader(headerBuf)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Pager{
		file:      file,
		header:    header,
		config:    cfg,
		cache:     make(map[int]*format.Page),
		lru:       list.New(),
		lruByPage: make(map[int]*list.Element),
	}, nil
}

// PageSize returns the database's page size in bytes.
func (p *Pager) PageSize() int { return p.header.PageSize }

// ReadPage returns the decoded page for the given 1-indexed page number,
// serving from cache when possible.
func (p *Pager) ReadPage(ctx context.Context, pageNumber int) (*format.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, xerrors.New("pager_read_page", err, map[string]any{"page_number": pageNumber})
	}
	if pageNumber < 1 {
		return nil, xerrors.New("pager_read_page", xerrors.ErrIO, map[string]any{
			"reason":      "page numbers are 1-indexed",
			"page_number": pageNumber,
		})
	}

	if page, ok := p.cache[pageNumber]; ok {
		p.touch(pageNumber)
		return page, nil
	}

	raw := make([]byte, p.header.PageSize)
	offset := int64(pageNumber-1) * int64(p.header.PageSize)
	n, err := p.file.ReadAt(raw, offset)
	if err != nil {
		return nil, xerrors.New("pager_read_page", err, map[string]any{
			"page_number": pageNumber,
			"offset":      offset,
		})
	}
	if n != p.header.PageSize {
		return nil, xerrors.New("pager_read_page", xerrors.ErrTruncatedPage, map[string]any{
			"page_number": pageNumber,
			"want_bytes":  p.header.PageSize,
			"got_bytes":   n,
		})
	}

	page, err := format.ParsePage(raw, pageNumber)
	if err != nil {
		return nil, err
	}

	p.put(pageNumber, page)
	return page, nil
}

// Close releases the underlying file handle.
func (p *Pager) Close() error {
	return p.file.Close()
}

func (p *Pager) touch(pageNumber int) {
	if p.config.CacheLimit <= 0 {
		return
	}
	if elem, ok := p.lruByPage[pageNumber]; ok {
		p.lru.MoveToFront(elem)
	}
}

func (p *Pager) put(pageNumber int, page *format.Page) {
	p.cache[pageNumber] = page
	if p.config.CacheLimit <= 0 {
		return
	}

	elem := p.lru.PushFront(pageNumber)
	p.lruByPage[pageNumber] = elem

	for p.lru.Len() > p.config.CacheLimit {
		oldest := p.lru.Back()
		if oldest == nil {
			break
		}
		evicted := oldest.Value.(int)
		p.lru.Remove(oldest)
		delete(p.lruByPage, evicted)
		delete(p.cache, evicted)
	}
}

// String renders the header's page size as "page size: N". The CLI's
// .dbinfo command prints its own lines and does not use it.
func (p *Pager) String() string {
	return fmt.Sprintf("page size: %d", p.header.PageSize)
}
