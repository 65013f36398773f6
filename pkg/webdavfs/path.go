package webdavfs

import (
	"os"
	"strings"
	"unicode/utf8"
)

// path.go resolves a WebDAV request path into an ordered segment chain,
// rejecting `..` traversal and non-UTF-8 components outright (§4.H, §8
// boundary: `/../etc/x` is rejected).

func resolvePath(name string) ([]string, error) {
	if !utf8.ValidString(name) {
		return nil, os.ErrInvalid
	}

	raw := strings.Trim(name, "/")
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." {
			continue
		}
		if p == ".." {
			return nil, os.ErrPermission
		}
		if !utf8.ValidString(p) {
			return nil, os.ErrInvalid
		}
		segs = append(segs, p)
	}
	return segs, nil
}
