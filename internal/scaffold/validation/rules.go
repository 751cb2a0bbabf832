package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// ErrInvalid is wrapped by every rule failure.
var ErrInvalid = errors.New("invalid value")

// RequiredField validates that a string field is not blank.
type RequiredField[T any] struct {
	FieldName string
	GetValue  func(T) string
}

func (r RequiredField[T]) Validate(v T) error {
	if strings.TrimSpace(r.GetValue(v)) == "" {
		return fmt.Errorf("%w: required field %q is missing", ErrInvalid, r.FieldName)
	}
	return nil
}

// OneOf validates that a field holds one of the allowed values. An empty
// value passes.
type OneOf[T any] struct {
	FieldName string
	GetValue  func(T) string
	Allowed   []string
}

func (o OneOf[T]) Validate(v T) error {
	value := o.GetValue(v)
	if value == "" {
		return nil
	}
	for _, allowed := range o.Allowed {
		if value == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: field %q must be one of %v, got %q", ErrInvalid, o.FieldName, o.Allowed, value)
}

// Matches validates a field against a pattern. An empty value passes.
type Matches[T any] struct {
	FieldName string
	GetValue  func(T) string
	Pattern   *regexp.Regexp
	Hint      string
}

func (m Matches[T]) Validate(v T) error {
	value := m.GetValue(v)
	if value == "" || m.Pattern.MatchString(value) {
		return nil
	}
	if m.Hint != "" {
		return fmt.Errorf("%w: field %q %s, got %q", ErrInvalid, m.FieldName, m.Hint, value)
	}
	return fmt.Errorf("%w: field %q must match %s, got %q", ErrInvalid, m.FieldName, m.Pattern, value)
}

// RelativePath validates that a field is a relative path that stays inside
// its base directory. An empty value passes.
type RelativePath[T any] struct {
	FieldName string
	GetValue  func(T) string
}

func (r RelativePath[T]) Validate(v T) error {
	value := r.GetValue(v)
	if value == "" {
		return nil
	}
	if filepath.IsAbs(value) {
		return fmt.Errorf("%w: field %q must be relative, got %q", ErrInvalid, r.FieldName, value)
	}
	clean := filepath.Clean(value)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: field %q escapes its directory: %q", ErrInvalid, r.FieldName, value)
	}
	return nil
}

// DirExists validates that the path returned by GetPath is a directory on FS.
type DirExists[T any] struct {
	FS        billy.Filesystem
	FieldName string
	GetPath   func(T) string
}

func (d DirExists[T]) Validate(v T) error {
	path := d.GetPath(v)
	info, err := d.FS.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s %q does not exist", ErrInvalid, d.FieldName, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s %q is not a directory", ErrInvalid, d.FieldName, path)
	}
	return nil
}

// CustomRule adapts a function into a Rule.
type CustomRule[T any] struct {
	Name       string
	ValidateFn func(T) error
}

func (c CustomRule[T]) Validate(v T) error {
	return c.ValidateFn(v)
}
