package wasmstatic

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes below a root directory as slash-separated names
// relative to that root.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	onChange func(name string)
}

func NewWatcher(root string, onChange func(name string)) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	w := &Watcher{root: abs, watcher: fw, onChange: onChange}
	if err := w.addTree(abs); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) relName(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Run delivers events until ctx is done. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Warn("failed to close file watcher", "error", err)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			if name, ok := w.relName(event.Name); ok {
				slog.Debug("root changed", "name", name, "op", event.Op.String())
				w.onChange(name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}
