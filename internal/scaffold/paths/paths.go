// Package paths resolves {name} and {name:transform} placeholders in file and
// directory names.
package paths

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"

	"github.com/artisanexperiences/boilerplate/internal/fs"
	"github.com/artisanexperiences/boilerplate/internal/logging"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/template"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/words"
)

// HasPlaceholder reports whether name contains an unescaped {placeholder}.
func HasPlaceholder(name string) bool {
	return template.Has(template.Lex(name, template.ModePath), template.PathVar)
}

// ResolveName substitutes every placeholder in a single path segment. A
// placeholder without a non-empty answer is left as written.
func ResolveName(name string, answers map[string]string) string {
	return resolveName(name, answers, logging.For("paths"))
}

func resolveName(name string, answers map[string]string, logger *log.Logger) string {
	tokens := template.Lex(name, template.ModePath)
	if !template.Has(tokens, template.PathVar) {
		return name
	}

	return template.Render(tokens, func(_ int, tok template.Token) (string, bool) {
		parts := strings.Split(tok.Body, ":")
		value, ok := answers[parts[0]]
		if !ok || value == "" {
			return "", false
		}
		for _, t := range parts[1:] {
			kind, known := words.Parse(t)
			if !known {
				logger.Warn("unknown transform", "transform", t, "placeholder", tok.Raw)
				continue
			}
			value = words.Transform(value, kind)
		}
		return value, true
	})
}

// ResolvePath resolves every segment of a relative path.
func ResolvePath(rel string, answers map[string]string) string {
	logger := logging.For("paths")
	segments := strings.Split(rel, string(filepath.Separator))
	for i, seg := range segments {
		segments[i] = resolveName(seg, answers, logger)
	}
	return strings.Join(segments, string(filepath.Separator))
}

// Variables lists the distinct placeholder names in name, in order of first
// appearance.
func Variables(name string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, tok := range template.Lex(name, template.ModePath) {
		if tok.Kind != template.PathVar {
			continue
		}
		v, _, _ := strings.Cut(tok.Body, ":")
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		names = append(names, v)
	}
	return names
}

// Rename records a single rename performed (or planned) by RenameTree.
type Rename struct {
	From string
	To   string
}

// Renamer applies placeholder resolution to an existing directory tree.
type Renamer struct {
	FS     billy.Filesystem
	DryRun bool
	Logger *log.Logger
}

func NewRenamer(fsys billy.Filesystem) *Renamer {
	return &Renamer{FS: fsys, Logger: logging.For("paths")}
}

// RenameTree renames entries below root whose names resolve differently.
// Within a directory, files are handled first, then each sub-directory is
// renamed before it is descended into. Entries whose target already exists
// are skipped. Per-entry failures are logged and do not stop the walk.
func (r *Renamer) RenameTree(root string, answers map[string]string) ([]Rename, error) {
	if _, err := r.FS.Stat(root); err != nil {
		return nil, err
	}
	var done []Rename
	r.renameDir(root, answers, &done)
	return done, nil
}

func (r *Renamer) renameDir(dir string, answers map[string]string, done *[]Rename) {
	entries, err := r.FS.ReadDir(dir)
	if err != nil {
		r.Logger.Error("reading directory", "dir", dir, "err", err)
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		r.renameEntry(dir, e.Name(), answers, done)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := r.renameEntry(dir, e.Name(), answers, done)
		r.renameDir(path, answers, done)
	}
}

// renameEntry renames dir/name when its resolved name differs and returns
// the path the entry now lives at.
func (r *Renamer) renameEntry(dir, name string, answers map[string]string, done *[]Rename) string {
	from := filepath.Join(dir, name)
	if !HasPlaceholder(name) {
		return from
	}

	resolved := resolveName(name, answers, r.Logger)
	if resolved == name || resolved == "" {
		return from
	}

	to := filepath.Join(dir, resolved)
	if fs.Exists(r.FS, to) {
		r.Logger.Warn("skipping rename, target exists", "from", from, "to", to)
		return from
	}

	if r.DryRun {
		r.Logger.Info("would rename", "from", from, "to", to)
		*done = append(*done, Rename{From: from, To: to})
		return from
	}

	if err := r.FS.Rename(from, to); err != nil {
		r.Logger.Error("rename failed", "from", from, "to", to, "err", err)
		return from
	}
	r.Logger.Info("renamed", "from", from, "to", to)
	*done = append(*done, Rename{From: from, To: to})
	return to
}
