package vfs

import (
	"bytes"
	"path"
	"sort"
)

// diff.go implements the VFS diff (§4.G): a pure function over two
// snapshots producing the minimal set of Created/Modified/Deleted changes
// at the narrowest path (a leaf, or the deepest new directory) that
// captures them, with no side effects.

type ChangeType int

const (
	Created ChangeType = iota
	Modified
	Deleted
)

type Change struct {
	Path string
	Type ChangeType
}

// DiffTrees computes the minimal change set between two snapshots.
// diff_trees(v, v) is always empty.
func DiffTrees(oldTree, newTree *Tree) []Change {
	var oldRoot, newRoot *Directory
	if oldTree != nil {
		oldRoot = oldTree.Root
	}
	if newTree != nil {
		newRoot = newTree.Root
	}
	return diffDirs(oldRoot, newRoot, "")
}

func diffDirs(oldDir, newDir *Directory, prefix string) []Change {
	var changes []Change

	names := unionKeys(oldDir, newDir)

	for _, name := range names {
		childPath := joinPath(prefix, name)

		var oldNode, newNode Node
		var inOld, inNew bool
		if oldDir != nil {
			oldNode, inOld = oldDir.Get(name)
		}
		if newDir != nil {
			newNode, inNew = newDir.Get(name)
		}

		switch {
		case inOld && !inNew:
			changes = append(changes, Change{Path: childPath, Type: Deleted})

		case !inOld && inNew:
			changes = append(changes, newSubtreeChange(newNode, childPath)...)

		case inOld && inNew:
			changes = append(changes, diffExisting(oldNode, newNode, childPath)...)
		}
	}

	return changes
}

func diffExisting(oldNode, newNode Node, childPath string) []Change {
	oldChildDir, oldIsDir := oldNode.(*Directory)
	newChildDir, newIsDir := newNode.(*Directory)

	switch {
	case oldIsDir && newIsDir:
		sub := diffDirs(oldChildDir, newChildDir, childPath)
		if len(sub) > 0 {
			return sub
		}
		if !structurallyEqual(oldChildDir, newChildDir) {
			return []Change{{Path: childPath, Type: Modified}}
		}
		return nil

	case !oldIsDir && !newIsDir:
		if !leafEqual(oldNode, newNode) {
			return []Change{{Path: childPath, Type: Modified}}
		}
		return nil

	default:
		// A directory replaced a leaf or vice versa: the whole subtree at
		// this path is gone and a new one takes its place.
		changes := []Change{{Path: childPath, Type: Deleted}}
		return append(changes, newSubtreeChange(newNode, childPath)...)
	}
}

// newSubtreeChange walks a brand-new subtree while it single-directory
// descends, so the report names the deepest unambiguous new directory
// rather than every ancestor down to it.
func newSubtreeChange(node Node, nodePath string) []Change {
	dir, ok := node.(*Directory)
	if !ok {
		return []Change{{Path: nodePath, Type: Created}}
	}

	for dir.Len() == 1 {
		name := dir.Keys()[0]
		child, _ := dir.Get(name)
		childDir, isDir := child.(*Directory)
		if !isDir {
			break
		}
		dir = childDir
		nodePath = joinPath(nodePath, name)
	}

	return []Change{{Path: nodePath, Type: Created}}
}

func unionKeys(oldDir, newDir *Directory) []string {
	seen := map[string]bool{}
	var names []string
	if oldDir != nil {
		for _, k := range oldDir.Keys() {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	if newDir != nil {
		for _, k := range newDir.Keys() {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

func leafEqual(a, b Node) bool {
	switch av := a.(type) {
	case *StrmLeaf:
		bv, ok := b.(*StrmLeaf)
		if !ok {
			return false
		}
		return av.DebridLink == bv.DebridLink && av.TorrentID == bv.TorrentID && bytes.Equal(av.ContentBytes, bv.ContentBytes)
	case *VirtualBlob:
		bv, ok := b.(*VirtualBlob)
		if !ok {
			return false
		}
		return bytes.Equal(av.Content, bv.Content)
	default:
		return false
	}
}

func structurallyEqual(a, b *Directory) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, k := range a.Keys() {
		an, _ := a.Get(k)
		bn, ok := b.Get(k)
		if !ok {
			return false
		}
		adir, aIsDir := an.(*Directory)
		bdir, bIsDir := bn.(*Directory)
		if aIsDir != bIsDir {
			return false
		}
		if aIsDir {
			if !structurallyEqual(adir, bdir) {
				return false
			}
		} else if !leafEqual(an, bn) {
			return false
		}
	}
	return true
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
