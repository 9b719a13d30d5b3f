package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skratchdot/open-golang/open"
	"go.uber.org/multierr"
)

// ErrUnsafeDir is returned when clearing the output directory would delete
// the working directory or a file the run depends on.
var ErrUnsafeDir = errors.New("refusing to clear output directory")

// Prepare empties dir, creating it when missing. Every entry that cannot be
// removed is reported in the returned error. dir must not be the working
// directory or one of its parents, and must not contain any of keep.
func Prepare(dir string, keep ...string) error {
	if err := checkSafe(dir, keep); err != nil {
		return err
	}
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("stat output dir: %w", err)
	case !info.IsDir():
		return fmt.Errorf("output path %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read output dir: %w", err)
	}
	var errs error
	for _, e := range entries {
		errs = multierr.Append(errs, os.RemoveAll(filepath.Join(dir, e.Name())))
	}
	if errs != nil {
		return fmt.Errorf("clear output dir: %w", errs)
	}
	return nil
}

func checkSafe(dir string, keep []string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}
	if filepath.Dir(abs) == abs {
		return fmt.Errorf("%w: %s is a filesystem root", ErrUnsafeDir, abs)
	}
	if wd, err := os.Getwd(); err == nil && within(wd, abs) {
		return fmt.Errorf("%w: %s contains the working directory", ErrUnsafeDir, abs)
	}
	for _, k := range keep {
		if k == "" {
			continue
		}
		kabs, err := filepath.Abs(k)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", k, err)
		}
		if within(kabs, abs) {
			return fmt.Errorf("%w: %s contains %s", ErrUnsafeDir, abs, k)
		}
	}
	return nil
}

// within reports whether path is dir or lies below it. Both must be absolute.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Opener opens a directory in the desktop file browser.
type Opener func(path string) error

// DefaultOpener starts the platform's open/xdg-open/start command without
// waiting for it to exit.
var DefaultOpener Opener = open.Start

// Open shows dir with opener, or DefaultOpener when opener is nil.
func Open(dir string, opener Opener) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}
	if opener == nil {
		opener = DefaultOpener
	}
	if err := opener(abs); err != nil {
		return fmt.Errorf("open %s: %w", abs, err)
	}
	return nil
}
