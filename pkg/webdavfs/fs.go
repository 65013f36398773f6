package webdavfs

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/net/webdav"

	"github.com/debridav/debridav/internal/request"
	"github.com/debridav/debridav/pkg/debrid"
	"github.com/debridav/debridav/pkg/repair"
	"github.com/debridav/debridav/pkg/vfs"
)

// fs.go implements webdav.FileSystem over a live vfs.Tree snapshot. The
// projection is read-only (§4.H): every mutating call fails with
// ErrReadOnly, and every OpenFile of a leaf re-resolves its debrid link
// through the debrid client (whose unrestrict cache may answer) instead of
// serving the content captured at build time.

var ErrReadOnly = os.ErrPermission

// TreeSource supplies the reconciler's current tree snapshot. The
// reconciler satisfies this by exposing its live, mutex-guarded tree.
type TreeSource interface {
	Current() *vfs.Tree
}

type FS struct {
	trees  TreeSource
	debrid *debrid.Client
	repair *repair.Manager
}

func New(trees TreeSource, d *debrid.Client, r *repair.Manager) *FS {
	return &FS{trees: trees, debrid: d, repair: r}
}

func (f *FS) Mkdir(ctx context.Context, name string, perm os.FileMode) error {
	return ErrReadOnly
}

func (f *FS) RemoveAll(ctx context.Context, name string) error {
	return ErrReadOnly
}

func (f *FS) Rename(ctx context.Context, oldName, newName string) error {
	return ErrReadOnly
}

func (f *FS) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	segs, err := resolvePath(name)
	if err != nil {
		return nil, err
	}
	tree := f.trees.Current()
	node, leafName, err := lookup(tree.Root, segs)
	if err != nil {
		return nil, err
	}
	return newFileInfo(leafName, node, tree.CreatedAt), nil
}

func (f *FS) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (webdav.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_APPEND|os.O_TRUNC) != 0 {
		return nil, ErrReadOnly
	}

	segs, err := resolvePath(name)
	if err != nil {
		return nil, err
	}
	tree := f.trees.Current()
	node, leafName, err := lookup(tree.Root, segs)
	if err != nil {
		return nil, err
	}

	switch v := node.(type) {
	case *vfs.Directory:
		return &dirHandle{name: leafName, dir: v, createdAt: tree.CreatedAt}, nil
	case *vfs.StrmLeaf:
		return f.openLeaf(ctx, leafName, v, tree.CreatedAt)
	case *vfs.VirtualBlob:
		return &blobHandle{name: leafName, content: v.Content, createdAt: tree.CreatedAt}, nil
	default:
		return nil, os.ErrInvalid
	}
}

// openLeaf re-resolves the debrid link on every open. Only a 503/unavailable
// response (§4.H, §8 Scenario 5) marks the owning torrent Broken and
// dispatches a background repair; a transient transport error or a 404
// surfaces as a plain I/O error without touching repair state, since neither
// implies the torrent itself is gone.
func (f *FS) openLeaf(ctx context.Context, name string, leaf *vfs.StrmLeaf, createdAt time.Time) (webdav.File, error) {
	resp, err := f.debrid.Unrestrict(ctx, leaf.DebridLink)
	if err != nil {
		if f.repair != nil && leaf.TorrentID != "" && errors.Is(err, request.ErrUnavailable) {
			f.repair.MarkBroken(leaf.TorrentID)
			f.repair.SpawnRepair(leaf.TorrentID)
		}
		return nil, os.ErrInvalid
	}

	content := []byte(resp.Download + "\n")
	return &blobHandle{name: name, content: content, createdAt: createdAt}, nil
}
