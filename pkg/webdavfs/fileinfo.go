package webdavfs

import (
	"os"
	"time"

	"github.com/debridav/debridav/pkg/vfs"
)

type nodeInfo struct {
	name      string
	isDir     bool
	size      int64
	createdAt time.Time
}

func (n *nodeInfo) Name() string { return n.name }
func (n *nodeInfo) Size() int64  { return n.size }
func (n *nodeInfo) Mode() os.FileMode {
	if n.isDir {
		return os.ModeDir | 0555
	}
	return 0444
}
func (n *nodeInfo) ModTime() time.Time { return n.createdAt }
func (n *nodeInfo) IsDir() bool        { return n.isDir }
func (n *nodeInfo) Sys() interface{}   { return nil }

func newFileInfo(name string, node vfs.Node, createdAt time.Time) os.FileInfo {
	switch v := node.(type) {
	case *vfs.Directory:
		return &nodeInfo{name: name, isDir: true, createdAt: createdAt}
	case *vfs.StrmLeaf:
		return &nodeInfo{name: name, size: int64(len(v.ContentBytes)), createdAt: createdAt}
	case *vfs.VirtualBlob:
		return &nodeInfo{name: name, size: int64(len(v.Content)), createdAt: createdAt}
	default:
		return &nodeInfo{name: name, createdAt: createdAt}
	}
}
