package webdavfs

import (
	"io"
	"testing"
)

func TestBlobHandle_SeekRejectsNegativeOffset(t *testing.T) {
	h := &blobHandle{content: []byte("hello")}
	if _, err := h.Seek(-1, io.SeekStart); err == nil {
		t.Fatalf("expected negative offset to be rejected")
	}
}

func TestBlobHandle_SeekRejectsPastEOF(t *testing.T) {
	h := &blobHandle{content: []byte("hello")}
	if _, err := h.Seek(1, io.SeekEnd); err == nil {
		t.Fatalf("expected SeekEnd(+1) to be rejected")
	}
}

func TestBlobHandle_SeekToExactEndIsAllowed(t *testing.T) {
	h := &blobHandle{content: []byte("hello")}
	pos, err := h.Seek(0, io.SeekEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos != 5 {
		t.Fatalf("expected pos 5, got %d", pos)
	}
	if _, err := h.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("expected EOF at end, got %v", err)
	}
}

func TestBlobHandle_WriteIsReadOnly(t *testing.T) {
	h := &blobHandle{content: []byte("hello")}
	if _, err := h.Write([]byte("x")); err != ErrReadOnly {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}
