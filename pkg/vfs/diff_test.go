package vfs

import (
	"testing"
	"time"
)

func leafTree(path, link, torrentID string) *Tree {
	root := NewDirectory()
	dir := root.Ensure("Movies").Ensure(path)
	dir.Set("movie.strm", &StrmLeaf{ContentBytes: []byte("https://example.com/" + link + "\n"), DebridLink: link, TorrentID: torrentID})
	return &Tree{Root: root, CreatedAt: time.Now()}
}

func TestDiffTrees_SameTreeIsEmpty(t *testing.T) {
	tree := leafTree("Movie (2020)", "link1", "t1")
	if changes := DiffTrees(tree, tree); len(changes) != 0 {
		t.Fatalf("expected no changes diffing a tree against itself, got %+v", changes)
	}
}

func TestDiffTrees_EmptyToPopulatedReportsCreatedAtNarrowestDir(t *testing.T) {
	empty := &Tree{Root: NewDirectory(), CreatedAt: time.Now()}
	populated := leafTree("Movie (2020)", "link1", "t1")

	changes := DiffTrees(empty, populated)
	if len(changes) != 1 {
		t.Fatalf("expected exactly one change, got %+v", changes)
	}
	if changes[0].Type != Created {
		t.Fatalf("expected Created, got %v", changes[0].Type)
	}
	if changes[0].Path != "Movies/Movie (2020)" {
		t.Fatalf("expected the narrowest new directory path, got %q", changes[0].Path)
	}
}

func TestDiffTrees_LeafContentChangeIsModified(t *testing.T) {
	oldTree := leafTree("Movie (2020)", "link1", "t1")
	newTree := leafTree("Movie (2020)", "link2", "t1")

	changes := DiffTrees(oldTree, newTree)
	if len(changes) != 1 || changes[0].Type != Modified {
		t.Fatalf("expected a single Modified change, got %+v", changes)
	}
}

func TestDiffTrees_RemovedFolderIsDeleted(t *testing.T) {
	oldTree := leafTree("Movie (2020)", "link1", "t1")
	newTree := &Tree{Root: NewDirectory(), CreatedAt: time.Now()}

	changes := DiffTrees(oldTree, newTree)
	if len(changes) != 1 || changes[0].Type != Deleted {
		t.Fatalf("expected a single Deleted change, got %+v", changes)
	}
}

func TestDiffTrees_UnrelatedSiblingUnaffected(t *testing.T) {
	oldRoot := NewDirectory()
	oldRoot.Ensure("Movies").Ensure("A (2020)").Set("a.strm", &StrmLeaf{ContentBytes: []byte("x\n"), DebridLink: "a"})
	oldRoot.Ensure("Movies").Ensure("B (2021)").Set("b.strm", &StrmLeaf{ContentBytes: []byte("y\n"), DebridLink: "b"})
	oldTree := &Tree{Root: oldRoot, CreatedAt: time.Now()}

	newRoot := NewDirectory()
	newRoot.Ensure("Movies").Ensure("A (2020)").Set("a.strm", &StrmLeaf{ContentBytes: []byte("x\n"), DebridLink: "a"})
	newRoot.Ensure("Movies").Ensure("B (2021)").Set("b.strm", &StrmLeaf{ContentBytes: []byte("z\n"), DebridLink: "b-changed"})
	newTree := &Tree{Root: newRoot, CreatedAt: time.Now()}

	changes := DiffTrees(oldTree, newTree)
	if len(changes) != 1 {
		t.Fatalf("expected exactly one change confined to B, got %+v", changes)
	}
	if changes[0].Path != "Movies/B (2021)/b.strm" {
		t.Fatalf("expected change scoped to the modified leaf, got %q", changes[0].Path)
	}
}
