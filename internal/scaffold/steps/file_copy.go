package steps

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/artisanexperiences/boilerplate/internal/fs"
)

type FileCopyStep struct {
	from string
	to   string
}

func NewFileCopyStep(from, to string) *FileCopyStep {
	return &FileCopyStep{from: from, to: to}
}

func (s *FileCopyStep) Name() string {
	return FileCopy
}

func (s *FileCopyStep) paths(sc *Context) (from, to string) {
	return filepath.Join(sc.Dir, sc.expand(s.from)), filepath.Join(sc.Dir, sc.expand(s.to))
}

func (s *FileCopyStep) Run(_ context.Context, sc *Context, opts Options) error {
	fromPath, toPath := s.paths(sc)

	if opts.DryRun {
		sc.Logger.Info("would copy", "from", fromPath, "to", toPath)
		return nil
	}

	if err := fs.CopyFile(sc.FS, fromPath, sc.FS, toPath); err != nil {
		return fmt.Errorf("copying %s to %s: %w", fromPath, toPath, err)
	}
	sc.Logger.Info("copied", "from", fromPath, "to", toPath)
	return nil
}

// Condition skips the copy when the source does not exist.
func (s *FileCopyStep) Condition(sc *Context) bool {
	fromPath, _ := s.paths(sc)
	return fs.Exists(sc.FS, fromPath)
}
