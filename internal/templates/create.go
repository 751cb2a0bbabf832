package templates

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"github.com/artisanexperiences/boilerplate/internal/fs"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/validation"
)

const (
	DefaultRootDir = "src"
	DefaultVersion = "1.0.0"
	ExampleFile    = "example.txt"
)

var ErrTemplateExists = errors.New("template already exists")

const exampleContent = `Hello from ${input.name}!

Created ${date:YYYY-MM-DD} in ${outputDirectoryRelative}.
Class name: ${name:pascalcase}
Slug: ${{ kebabcase(name) }}
`

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9._-]`)
)

// Slug turns a display name into a directory name: lower case, whitespace
// collapsed to '-', everything outside [a-z0-9._-] dropped.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugSpaces.ReplaceAllString(s, "-")
	return slugInvalid.ReplaceAllString(s, "")
}

// CreateOptions describes a new template skeleton.
type CreateOptions struct {
	Name        string
	Description string
	Author      string
	Tags        []string
	Force       bool
	Now         time.Time
}

func createValidator() *validation.Validator[CreateOptions] {
	return validation.NewValidator[CreateOptions]("template name").
		AddRule(validation.RequiredField[CreateOptions]{
			FieldName: "name",
			GetValue:  func(o CreateOptions) string { return o.Name },
		}).
		AddRule(validation.CustomRule[CreateOptions]{
			Name: "slug",
			ValidateFn: func(o CreateOptions) error {
				if strings.TrimSpace(o.Name) != "" && strings.Trim(Slug(o.Name), ".-_") == "" {
					return fmt.Errorf("%w: %q has no usable characters for a directory name", validation.ErrInvalid, o.Name)
				}
				return nil
			},
		})
}

// Create writes a template skeleton, a manifest plus src/example.txt, into
// dir/<slug>. An existing template directory is only written into when
// opts.Force is set. It returns the new template directory.
func (l *Loader) Create(dir string, opts CreateOptions) (string, error) {
	if err := createValidator().ValidateFirst(opts); err != nil {
		return "", err
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Tags == nil {
		opts.Tags = []string{}
	}

	target := filepath.Join(l.ExpandDirectory(dir), Slug(opts.Name))
	if fs.Exists(l.FS, target) && !opts.Force {
		return "", fmt.Errorf("%w: %s", ErrTemplateExists, target)
	}

	manifest := map[string]any{
		"name":        strings.TrimSpace(opts.Name),
		"rootDir":     DefaultRootDir,
		"description": opts.Description,
		"author":      opts.Author,
		"version":     DefaultVersion,
		"created":     opts.Now.Format(time.RFC3339),
		"tags":        toAny(opts.Tags),
	}
	data := oj.JSON(manifest, &ojg.Options{Indent: 4, Sort: true}) + "\n"

	if err := fs.WriteFile(l.FS, filepath.Join(target, ManifestFile), []byte(data), 0644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	example := filepath.Join(target, DefaultRootDir, ExampleFile)
	if err := fs.WriteFile(l.FS, example, []byte(exampleContent), 0644); err != nil {
		return "", fmt.Errorf("writing example file: %w", err)
	}

	l.Logger.Info("created template", "path", target)
	return target, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
