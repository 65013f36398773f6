package webdavfs

import (
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/debridav/debridav/pkg/vfs"
)

// handle.go implements the webdav.File handles OpenFile returns: a
// directory-listing handle and a read-only byte-content handle shared by
// StrmLeaf (re-resolved content) and VirtualBlob (static NFO bytes), with
// checked-arithmetic Seek per §4.H/§8.

type blobHandle struct {
	name      string
	content   []byte
	createdAt time.Time
	pos       int64
}

func (h *blobHandle) Close() error { return nil }

func (h *blobHandle) Read(p []byte) (int, error) {
	if h.pos >= int64(len(h.content)) {
		return 0, io.EOF
	}
	n := copy(p, h.content[h.pos:])
	h.pos += int64(n)
	return n, nil
}

// Seek rejects any resulting offset outside [0, len(content)]: a negative
// offset never wraps, and SeekFrom::End(+1) is rejected rather than
// silently clamped.
func (h *blobHandle) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = h.pos + offset
	case io.SeekEnd:
		target = int64(len(h.content)) + offset
	default:
		return 0, os.ErrInvalid
	}
	if target < 0 || target > int64(len(h.content)) {
		return 0, os.ErrInvalid
	}
	h.pos = target
	return h.pos, nil
}

func (h *blobHandle) Write(p []byte) (int, error) {
	return 0, ErrReadOnly
}

func (h *blobHandle) Readdir(count int) ([]fs.FileInfo, error) {
	return nil, os.ErrInvalid
}

func (h *blobHandle) Stat() (fs.FileInfo, error) {
	return newFileInfo(h.name, &vfs.VirtualBlob{Content: h.content}, h.createdAt), nil
}

// dirHandle serves PROPFIND listings; order follows the directory's own
// lexicographic key order.
type dirHandle struct {
	name      string
	dir       *vfs.Directory
	createdAt time.Time
	listed    bool
}

func (h *dirHandle) Close() error                                 { return nil }
func (h *dirHandle) Read(p []byte) (int, error)                   { return 0, os.ErrInvalid }
func (h *dirHandle) Seek(offset int64, whence int) (int64, error) { return 0, os.ErrInvalid }
func (h *dirHandle) Write(p []byte) (int, error)                  { return 0, ErrReadOnly }

func (h *dirHandle) Readdir(count int) ([]fs.FileInfo, error) {
	if h.listed && count > 0 {
		return nil, io.EOF
	}
	h.listed = true

	infos := make([]fs.FileInfo, 0, h.dir.Len())
	for _, name := range h.dir.Keys() {
		child, _ := h.dir.Get(name)
		infos = append(infos, newFileInfo(name, child, h.createdAt))
	}
	return infos, nil
}

func (h *dirHandle) Stat() (fs.FileInfo, error) {
	return newFileInfo(h.name, h.dir, h.createdAt), nil
}
