package wasmstatic

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// NewRootFS returns a read-only filesystem confined to dir.
func NewRootFS(dir string) (fs.StatFS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("rootdir %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("rootdir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rootdir %s: not a directory", dir)
	}
	slog.Debug("root filesystem", "dir", dir, "abs", abs)
	return afero.NewIOFS(afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), abs))), nil
}
