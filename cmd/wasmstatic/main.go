package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/wtnb75/wasmstatic"
)

// parseMime splits ".ext=type/subtype".
func parseMime(s string) (string, string, error) {
	ext, ctype, ok := strings.Cut(s, "=")
	ext = strings.TrimSpace(ext)
	ctype = strings.TrimSpace(ctype)
	if !ok || ext == "" || ctype == "" {
		return "", "", fmt.Errorf("mime %q: expected .ext=type", s)
	}
	if _, _, err := mime.ParseMediaType(ctype); err != nil {
		return "", "", fmt.Errorf("mime %q: %w", s, err)
	}
	return ext, ctype, nil
}

func parseFlags(args []string, stderr io.Writer) (*wasmstatic.Config, bool, error) {
	cfg := wasmstatic.CreateConfig()
	fl := flag.NewFlagSet("wasmstatic", flag.ContinueOnError)
	fl.SetOutput(stderr)
	fl.StringVar(&cfg.Listen, "listen", cfg.Listen, "listen address (unix:/path, tcp4:addr, ...)")
	fl.StringVar(&cfg.RootDir, "dir", cfg.RootDir, "serve directory")
	fl.StringVar(&cfg.Index, "index", cfg.Index, "directory index file")
	fl.StringVar(&cfg.Dotfiles, "dotfiles", cfg.Dotfiles, "dotfiles policy: allow, ignore or deny")
	fl.DurationVar(&cfg.MaxAge, "max-age", cfg.MaxAge, "Cache-Control max-age")
	fl.BoolVar(&cfg.ETag, "etag", cfg.ETag, "send content hash ETags")
	fl.BoolVar(&cfg.Watch, "watch", cfg.Watch, "watch the directory and drop stale ETags")
	fl.BoolVar(&cfg.Redirect, "redirect", cfg.Redirect, "redirect directories to a trailing slash")
	fl.Func("mime", "extra content type, .ext=type (repeatable)", func(s string) error {
		ext, ctype, err := parseMime(s)
		if err != nil {
			return err
		}
		cfg.MimeTypes[ext] = ctype
		return nil
	})
	verbose := fl.Bool("verbose", false, "enable verbose logging")
	if err := fl.Parse(args); err != nil {
		return nil, false, err
	}
	if fl.NArg() != 0 {
		return nil, false, fmt.Errorf("unexpected arguments: %q", fl.Args())
	}
	return cfg, *verbose, nil
}

func realMain() error {
	cfg, verbose, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetLogLoggerLevel(level)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	if cfg.Watch && !cfg.ETag {
		slog.Warn("-watch has no effect without -etag")
	}

	srv, err := wasmstatic.New(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx, func(addr net.Addr) {
		slog.Info("starting server", "addr", addr.String(), "dir", cfg.RootDir)
	})
}

func main() {
	if err := realMain(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
