package wasmstatic

import (
	"maps"
	"mime"
	"slices"
	"strings"
)

const (
	WasmContentType    = "application/wasm"
	DefaultContentType = "application/octet-stream"
)

// MimeRegistry maps file extensions to content types. A registry is never
// modified after construction; With returns a new one.
type MimeRegistry struct {
	types map[string]string
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func NewMimeRegistry(types map[string]string) *MimeRegistry {
	r := &MimeRegistry{types: make(map[string]string, len(types))}
	for ext, ctype := range types {
		if ext = normalizeExt(ext); ext != "" {
			r.types[ext] = ctype
		}
	}
	return r
}

// DefaultMimeRegistry returns a registry holding the .wasm override only.
func DefaultMimeRegistry() *MimeRegistry {
	return NewMimeRegistry(map[string]string{".wasm": WasmContentType})
}

func (r *MimeRegistry) With(ext, contentType string) *MimeRegistry {
	ext = normalizeExt(ext)
	if ext == "" {
		return r
	}
	res := &MimeRegistry{types: maps.Clone(r.types)}
	if res.types == nil {
		res.types = map[string]string{}
	}
	res.types[ext] = contentType
	return res
}

// TypeByExtension looks up the override table, then the system table, and
// falls back to application/octet-stream.
func (r *MimeRegistry) TypeByExtension(ext string) string {
	ext = normalizeExt(ext)
	if ext == "" {
		return DefaultContentType
	}
	if ctype, ok := r.types[ext]; ok {
		return ctype
	}
	if ctype := mime.TypeByExtension(ext); ctype != "" {
		return ctype
	}
	return DefaultContentType
}

func (r *MimeRegistry) Extensions() []string {
	return slices.Sorted(maps.Keys(r.types))
}
