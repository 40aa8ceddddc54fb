package monitor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/term"

	"github.com/rileyhilliard/livemon/internal/errors"
)

// Surface is the display sink a session writes reports into. Replace
// swaps the whole visible content for html.
type Surface interface {
	Replace(html string) error
}

// SurfaceFunc adapts a function to Surface, e.g. a notebook kernel's
// display-update hook.
type SurfaceFunc func(html string) error

// Replace implements Surface.
func (f SurfaceFunc) Replace(html string) error {
	return f(html)
}

// FileSurface keeps the latest report in a file. Each Replace writes a
// temp file next to Path and renames it over Path, so readers never see a
// partial fragment.
type FileSurface struct {
	fs   afero.Fs
	path string
}

// NewFileSurface writes to path on the OS filesystem.
func NewFileSurface(path string) *FileSurface {
	return NewFileSurfaceFs(afero.NewOsFs(), path)
}

// NewFileSurfaceFs writes to path on fs.
func NewFileSurfaceFs(fs afero.Fs, path string) *FileSurface {
	return &FileSurface{fs: fs, path: path}
}

// Path returns the report file path.
func (s *FileSurface) Path() string {
	return s.path
}

// Replace implements Surface.
func (s *FileSurface) Replace(html string) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrSurface,
			fmt.Sprintf("Can't create report directory %s", dir),
			"Check the output path and directory permissions")
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSurface,
			"Can't create temporary report file",
			"Check directory permissions")
	}
	tmpName := tmp.Name()

	if _, err := io.WriteString(tmp, html); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrSurface, "Can't write report", "")
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrSurface, "Can't write report", "")
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrSurface,
			fmt.Sprintf("Can't replace %s", s.path), "")
	}
	return nil
}

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

// WriterSurface writes each report to an io.Writer, one per line group.
// On a terminal the screen is cleared first so the latest report replaces
// the previous one visually.
type WriterSurface struct {
	mu    sync.Mutex
	w     io.Writer
	clear bool
}

// NewWriterSurface writes to w, clearing between frames when w is a terminal.
func NewWriterSurface(w io.Writer) *WriterSurface {
	clear := false
	if f, ok := w.(*os.File); ok {
		clear = term.IsTerminal(int(f.Fd()))
	}
	return &WriterSurface{w: w, clear: clear}
}

// Replace implements Surface.
func (s *WriterSurface) Replace(html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clear {
		if _, err := io.WriteString(s.w, clearScreen); err != nil {
			return errors.WrapWithCode(err, errors.ErrSurface, "Can't write report", "")
		}
	}
	if _, err := io.WriteString(s.w, html+"\n"); err != nil {
		return errors.WrapWithCode(err, errors.ErrSurface, "Can't write report", "")
	}
	return nil
}
