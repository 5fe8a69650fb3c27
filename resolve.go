package wasmstatic

import (
	"errors"
	"io/fs"
	"path"
	"strings"
)

var (
	ErrTraversal   = errors.New("path traversal attempt detected")
	ErrInvalidPath = errors.New("invalid path")
)

// resolvePath converts a decoded URL path into a name usable with fs.FS.
// The root itself is ".". dir reports whether the request ended with a slash.
func resolvePath(urlPath string) (name string, dir bool, err error) {
	if strings.IndexByte(urlPath, 0) >= 0 {
		return "", false, ErrInvalidPath
	}
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." {
			return "", false, ErrTraversal
		}
	}
	dir = urlPath == "" || strings.HasSuffix(urlPath, "/")
	name = strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", false, ErrInvalidPath
	}
	return name, dir, nil
}

// hasDotSegment reports whether any element of name starts with a dot.
func hasDotSegment(name string) bool {
	if name == "." {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
