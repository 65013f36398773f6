package webdavfs

import (
	"os"

	"github.com/debridav/debridav/pkg/vfs"
)

// lookup.go walks a resolved segment chain against a tree snapshot.

func lookup(root *vfs.Directory, segs []string) (vfs.Node, string, error) {
	if len(segs) == 0 {
		return root, "/", nil
	}

	var current vfs.Node = root
	for i, seg := range segs {
		dir, ok := current.(*vfs.Directory)
		if !ok {
			return nil, "", os.ErrNotExist
		}
		next, ok := dir.Get(seg)
		if !ok {
			return nil, "", os.ErrNotExist
		}
		current = next
		if i == len(segs)-1 {
			return current, seg, nil
		}
	}
	return current, segs[len(segs)-1], nil
}
