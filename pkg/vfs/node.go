package vfs

import (
	"sort"
	"time"
)

// node.go defines the VfsNode sum type (§3) as a sealed interface with
// deterministic, lexicographically-ordered directory iteration, so two
// reconciles of the same inventory build byte-identical trees (§8).

type NodeKind int

const (
	KindDirectory NodeKind = iota
	KindStrmLeaf
	KindVirtualBlob
)

type Node interface {
	Kind() NodeKind
}

// Directory holds children behind a sorted key slice plus a lookup map,
// so Keys() always yields lexicographic order regardless of insertion
// order.
type Directory struct {
	keys     []string
	children map[string]Node
}

func NewDirectory() *Directory {
	return &Directory{children: make(map[string]Node)}
}

func (d *Directory) Kind() NodeKind { return KindDirectory }

func (d *Directory) Get(name string) (Node, bool) {
	n, ok := d.children[name]
	return n, ok
}

func (d *Directory) Set(name string, n Node) {
	if _, exists := d.children[name]; !exists {
		d.keys = append(d.keys, name)
		sort.Strings(d.keys)
	}
	d.children[name] = n
}

// Ensure returns the child Directory named name, creating it if absent.
func (d *Directory) Ensure(name string) *Directory {
	if existing, ok := d.children[name]; ok {
		if dir, ok := existing.(*Directory); ok {
			return dir
		}
	}
	dir := NewDirectory()
	d.Set(name, dir)
	return dir
}

// Keys returns child names in lexicographic order.
func (d *Directory) Keys() []string {
	return d.keys
}

func (d *Directory) Len() int {
	return len(d.keys)
}

// StrmLeaf is a resolved-on-read indirection to a debrid link.
type StrmLeaf struct {
	ContentBytes []byte
	DebridLink   string
	TorrentID    string
}

func (s *StrmLeaf) Kind() NodeKind { return KindStrmLeaf }

// VirtualBlob is an auxiliary generated file, e.g. an .nfo descriptor.
type VirtualBlob struct {
	Content []byte
}

func (v *VirtualBlob) Kind() NodeKind { return KindVirtualBlob }

// Tree is one immutable snapshot. CreatedAt is fixed once at build time and
// reported for every node in the snapshot. The reconciler keeps the live
// snapshot when a rebuild diffs empty against it, so an unchanged inventory
// keeps serving the same timestamps.
type Tree struct {
	Root      *Directory
	CreatedAt time.Time
}
