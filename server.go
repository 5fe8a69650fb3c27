package wasmstatic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

type Config struct {
	RootDir   string            `json:"rootdir,omitempty"`
	Listen    string            `json:"listen,omitempty"`
	Index     string            `json:"index,omitempty"`
	Dotfiles  string            `json:"dotfiles,omitempty"`
	MaxAge    time.Duration     `json:"maxage,omitempty"`
	ETag      bool              `json:"etag,omitempty"`
	Watch     bool              `json:"watch,omitempty"`
	Redirect  bool              `json:"redirect,omitempty"`
	MimeTypes map[string]string `json:"mimetypes,omitempty"`
}

func CreateConfig() *Config {
	return &Config{
		RootDir:   ".",
		Listen:    ":8080",
		Index:     "index.html",
		Dotfiles:  "allow",
		ETag:      true,
		Redirect:  true,
		MimeTypes: map[string]string{".wasm": WasmContentType},
	}
}

type State int32

const (
	StateInitializing State = iota
	StateListening
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateListening:
		return "listening"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

type Server struct {
	cfg     *Config
	types   *MimeRegistry
	etags   *ETagCache
	handler http.Handler
	state   atomic.Int32
}

// New prepares a server for cfg. The content type table is complete when
// New returns, before any listener exists.
func New(cfg *Config) (*Server, error) {
	if cfg.RootDir == "" {
		return nil, fmt.Errorf("rootdir cannot be empty")
	}
	dotfiles, err := ParseDotfilePolicy(cfg.Dotfiles)
	if err != nil {
		return nil, err
	}
	types := DefaultMimeRegistry()
	for ext, ctype := range cfg.MimeTypes {
		types = types.With(ext, ctype)
	}
	fsys, err := NewRootFS(cfg.RootDir)
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, types: types}
	if cfg.ETag {
		s.etags = NewETagCache()
	}
	s.handler = NewHandler(fsys, types, HandlerOptions{
		Index:      cfg.Index,
		Dotfiles:   dotfiles,
		MaxAge:     cfg.MaxAge,
		NoRedirect: !cfg.Redirect,
		ETags:      s.etags,
	})
	slog.Info("server initialized", "rootdir", cfg.RootDir, "listen", cfg.Listen)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Types() *MimeRegistry {
	return s.types
}

func (s *Server) State() State {
	return State(s.state.Load())
}

// Listen accepts "unix:/path", "tcp:addr", "tcp4:addr", "tcp6:addr" or a
// plain TCP address.
func Listen(listen string) (net.Listener, error) {
	if protos := strings.SplitN(listen, ":", 2); len(protos) == 2 {
		switch protos[0] {
		case "unix", "tcp", "tcp4", "tcp6":
			return net.Listen(protos[0], protos[1])
		}
	}
	return net.Listen("tcp", listen)
}

// Listen binds the configured address and moves the server to
// StateListening.
func (s *Server) Listen() (net.Listener, error) {
	l, err := Listen(s.cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}
	s.state.Store(int32(StateListening))
	slog.Info("listening", "addr", l.Addr().String())
	return l, nil
}

// Serve handles connections on l until ctx is done. A cancelled context
// closes the listener and is not reported as an error. The file watcher
// is stopped before Serve returns.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	if s.cfg.Watch && s.etags != nil {
		root, err := filepath.Abs(s.cfg.RootDir)
		if err == nil {
			var w *Watcher
			if w, err = NewWatcher(root, s.etags.Invalidate); err == nil {
				watchCtx, stopWatch := context.WithCancel(ctx)
				watching := make(chan struct{})
				go func() {
					defer close(watching)
					w.Run(watchCtx)
				}()
				defer func() {
					stopWatch()
					<-watching
				}()
			}
		}
		if err != nil {
			slog.Warn("file watcher disabled", "error", err)
		}
	}
	server := http.Server{
		Handler: s.handler,
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			slog.Info("shutting down server")
			l.Close()
		case <-done:
		}
	}()
	err := server.Serve(l)
	if ctx.Err() != nil && (errors.Is(err, net.ErrClosed) || errors.Is(err, http.ErrServerClosed)) {
		return nil
	}
	return err
}

// Start binds, calls onListening with the bound address and serves until
// ctx is done.
func (s *Server) Start(ctx context.Context, onListening func(net.Addr)) error {
	l, err := s.Listen()
	if err != nil {
		return err
	}
	if onListening != nil {
		onListening(l.Addr())
	}
	return s.Serve(ctx, l)
}
