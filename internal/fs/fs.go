// Package fs holds the filesystem helpers shared by template discovery, the
// generator and the path renamer. Everything goes through billy so tests can
// run against an in-memory filesystem.
package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Default is rooted at "/" and is addressed with absolute paths.
var Default billy.Filesystem = osfs.New("/")

// IsBinary reports whether data contains a NUL byte. Binary files are copied
// byte for byte and never expanded.
func IsBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}

// Exists reports whether path exists on fsys.
func Exists(fsys billy.Filesystem, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(fsys billy.Filesystem, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.IsDir()
}

// ReadFile reads the entire file at path.
func ReadFile(fsys billy.Filesystem, path string) ([]byte, error) {
	return util.ReadFile(fsys, path)
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(fsys billy.Filesystem, path string, data []byte, perm os.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	return util.WriteFile(fsys, path, data, perm)
}

// CopyFile copies src on srcFS to dst on dstFS.
func CopyFile(srcFS billy.Filesystem, src string, dstFS billy.Filesystem, dst string) error {
	in, err := srcFS.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	if err := dstFS.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}

	out, err := dstFS.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

// WalkFiles returns the paths of every regular file below root, relative to
// root and sorted.
func WalkFiles(fsys billy.Filesystem, root string) ([]string, error) {
	var files []string
	err := util.Walk(fsys, root, func(path string, info iofs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// ErrExists is returned when a write would replace an existing path.
var ErrExists = errors.New("path already exists")
