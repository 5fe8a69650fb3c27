package main

import (
	"io"
	"testing"
	"time"
)

// TestParseFlags_Defaults tests the default configuration
func TestParseFlags_Defaults(t *testing.T) {
	cfg, verbose, err := parseFlags(nil, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verbose {
		t.Errorf("expected verbose=false")
	}
	if cfg.Listen != ":8080" || cfg.RootDir != "." || cfg.Index != "index.html" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if !cfg.ETag || cfg.Watch || !cfg.Redirect {
		t.Errorf("unexpected boolean defaults %+v", cfg)
	}
	if cfg.MimeTypes[".wasm"] != "application/wasm" {
		t.Errorf("expected wasm mapping, got %v", cfg.MimeTypes)
	}
}

// TestParseFlags_All tests every flag
func TestParseFlags_All(t *testing.T) {
	args := []string{
		"-listen", "unix:/tmp/x.sock",
		"-dir", "/srv/www",
		"-index", "main.html",
		"-dotfiles", "deny",
		"-max-age", "1h",
		"-etag=false",
		"-watch",
		"-redirect=false",
		"-mime", ".data=application/x-data",
		"-mime", "glb=model/gltf-binary",
		"-verbose",
	}
	cfg, verbose, err := parseFlags(args, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verbose {
		t.Errorf("expected verbose=true")
	}
	if cfg.Listen != "unix:/tmp/x.sock" || cfg.RootDir != "/srv/www" || cfg.Index != "main.html" || cfg.Dotfiles != "deny" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.MaxAge != time.Hour || cfg.ETag || !cfg.Watch || cfg.Redirect {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.MimeTypes[".data"] != "application/x-data" || cfg.MimeTypes["glb"] != "model/gltf-binary" {
		t.Errorf("unexpected mime types %v", cfg.MimeTypes)
	}
}

// TestParseFlags_Errors tests invalid arguments
func TestParseFlags_Errors(t *testing.T) {
	testCases := [][]string{
		{"-mime", "wasm"},
		{"-mime", ".x="},
		{"-mime", ".x=not a type"},
		{"-no-such-flag"},
		{"extra"},
	}
	for _, args := range testCases {
		if _, _, err := parseFlags(args, io.Discard); err == nil {
			t.Errorf("%q: expected error", args)
		}
	}
}
