package wasmstatic

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"
)

type DotfilePolicy int

const (
	DotfilesAllow DotfilePolicy = iota
	DotfilesIgnore
	DotfilesDeny
)

func ParseDotfilePolicy(s string) (DotfilePolicy, error) {
	switch s {
	case "", "allow":
		return DotfilesAllow, nil
	case "ignore":
		return DotfilesIgnore, nil
	case "deny":
		return DotfilesDeny, nil
	}
	return DotfilesAllow, fmt.Errorf("unknown dotfiles policy %q", s)
}

// HandlerOptions tunes a Handler. The zero value serves index.html,
// redirects directories, allows dotfiles and sends no ETag.
type HandlerOptions struct {
	Index      string
	Dotfiles   DotfilePolicy
	MaxAge     time.Duration
	NoRedirect bool
	ETags      *ETagCache
}

type Handler struct {
	fs    fs.StatFS
	types *MimeRegistry
	opts  HandlerOptions
}

func NewHandler(fsys fs.StatFS, types *MimeRegistry, opts HandlerOptions) *Handler {
	if types == nil {
		types = DefaultMimeRegistry()
	}
	if opts.Index == "" {
		opts.Index = "index.html"
	}
	slog.Info("handler created", "root", fsys, "types", types.Extensions(), "index", opts.Index)
	return &Handler{fs: fsys, types: types, opts: opts}
}

func fail(res http.ResponseWriter, code int) int {
	http.Error(res, fmt.Sprintf("%d %s", code, http.StatusText(code)), code)
	return code
}

func statusFor(err error) int {
	if errors.Is(err, fs.ErrPermission) {
		return http.StatusForbidden
	}
	return http.StatusNotFound
}

func (h *Handler) notModified(req *http.Request, etag string, mtime time.Time) bool {
	if inm := req.Header.Get("If-None-Match"); inm != "" {
		return etag != "" && etagMatch(inm, etag)
	}
	ims := req.Header.Get("If-Modified-Since")
	if ims == "" || mtime.IsZero() {
		return false
	}
	t, err := http.ParseTime(ims)
	if err != nil {
		return false
	}
	return !mtime.Truncate(time.Second).After(t)
}

func (h *Handler) serveHTTP(res http.ResponseWriter, req *http.Request) int {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		res.Header().Set("Allow", "GET, HEAD")
		return fail(res, http.StatusMethodNotAllowed)
	}
	name, dirReq, err := resolvePath(req.URL.Path)
	if err != nil {
		slog.Warn("rejected path", "path", req.URL.Path, "error", err)
		if errors.Is(err, ErrTraversal) {
			return fail(res, http.StatusForbidden)
		}
		return fail(res, http.StatusBadRequest)
	}
	if hasDotSegment(name) {
		switch h.opts.Dotfiles {
		case DotfilesIgnore:
			return fail(res, http.StatusNotFound)
		case DotfilesDeny:
			return fail(res, http.StatusForbidden)
		}
	}
	info, err := h.fs.Stat(name)
	if err != nil {
		slog.Debug("stat failed", "path", name, "error", err)
		return fail(res, statusFor(err))
	}
	if info.IsDir() {
		if !dirReq && !h.opts.NoRedirect {
			loc := (&url.URL{Path: "/" + name + "/", RawQuery: req.URL.RawQuery}).String()
			http.Redirect(res, req, loc, http.StatusMovedPermanently)
			return http.StatusMovedPermanently
		}
		name = path.Join(name, h.opts.Index)
		if info, err = h.fs.Stat(name); err != nil {
			slog.Debug("no index", "path", name, "error", err)
			return fail(res, statusFor(err))
		}
	} else if dirReq {
		return fail(res, http.StatusNotFound)
	}
	if !info.Mode().IsRegular() {
		slog.Debug("not a regular file", "path", name, "mode", info.Mode())
		return fail(res, http.StatusNotFound)
	}

	fp, err := h.fs.Open(name)
	if err != nil {
		slog.Error("open error", "path", name, "error", err)
		return fail(res, http.StatusInternalServerError)
	}
	defer fp.Close()

	etag := ""
	if h.opts.ETags != nil {
		if rs, ok := fp.(io.ReadSeeker); ok {
			tag, read, err := h.opts.ETags.Tag(name, info, rs)
			if err == nil && read {
				_, err = rs.Seek(0, io.SeekStart)
			}
			if err != nil {
				slog.Error("etag failed", "path", name, "error", err)
				if read {
					return fail(res, http.StatusInternalServerError)
				}
			}
			etag = tag
		} else {
			slog.Debug("no etag for unseekable file", "path", name)
		}
	}
	hdr := res.Header()
	if etag != "" {
		hdr.Set("ETag", etag)
	}
	if !info.ModTime().IsZero() {
		hdr.Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	}
	hdr.Set("Cache-Control", "public, max-age="+strconv.Itoa(int(h.opts.MaxAge/time.Second)))
	if h.notModified(req, etag, info.ModTime()) {
		res.WriteHeader(http.StatusNotModified)
		return http.StatusNotModified
	}
	hdr.Set("Content-Type", h.types.TypeByExtension(path.Ext(name)))
	hdr.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	res.WriteHeader(http.StatusOK)
	if req.Method == http.MethodHead {
		return http.StatusOK
	}
	if _, err := io.Copy(res, fp); err != nil {
		slog.Error("copy error", "path", name, "error", err)
	}
	return http.StatusOK
}

func (h *Handler) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	st := time.Now()
	code := h.serveHTTP(res, req)
	slog.Info("accesslog", "method", req.Method, "path", req.URL.Path, "remote", req.RemoteAddr, "status", code, "elapsed_ns", time.Since(st))
}
