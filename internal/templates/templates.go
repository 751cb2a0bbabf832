// Package templates discovers template directories and loads their
// manifest.json descriptors.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-viper/mapstructure/v2"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/viper"

	"github.com/artisanexperiences/boilerplate/internal/fs"
	"github.com/artisanexperiences/boilerplate/internal/logging"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/steps"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/validation"
)

const ManifestFile = "manifest.json"

// ReadmeFiles are looked up, in order, by Readme.
var ReadmeFiles = []string{"README.md", "readme.md", "README"}

var ErrTemplateNotFound = errors.New("template not found")

// NotFoundError reports a failed lookup together with the closest names.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("template %q not found", e.Name)
	}
	return fmt.Sprintf("template %q not found, did you mean %s?", e.Name, strings.Join(e.Suggestions, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrTemplateNotFound }

// File maps a source file to its path relative to the generation target.
// TargetPath may still contain {placeholders}.
type File struct {
	InputPath  string
	TargetPath string
}

// Template is a loaded template directory.
type Template struct {
	Name        string   `mapstructure:"name"`
	RootDir     string   `mapstructure:"rootDir"`
	Description string   `mapstructure:"description"`
	Author      string   `mapstructure:"author"`
	Version     string   `mapstructure:"version"`
	Created     string   `mapstructure:"created"`
	Tags        []string `mapstructure:"tags"`

	// Steps run in the target directory after the files are generated.
	Steps []steps.Config `mapstructure:"steps"`

	// Path is the template directory.
	Path  string `mapstructure:"-"`
	Files []File `mapstructure:"-"`
}

// SourceDir is the directory whose contents are generated.
func (t *Template) SourceDir() string {
	return filepath.Join(t.Path, t.RootDir)
}

func manifestValidator() *validation.Validator[Template] {
	return validation.NewValidator[Template](ManifestFile).
		AddRule(validation.RequiredField[Template]{
			FieldName: "name",
			GetValue:  func(t Template) string { return t.Name },
		}).
		AddRule(validation.RelativePath[Template]{
			FieldName: "rootDir",
			GetValue:  func(t Template) string { return t.RootDir },
		})
}

// Loader reads templates from a filesystem.
type Loader struct {
	FS        billy.Filesystem
	Home      string
	Workspace string
	Logger    *log.Logger
}

func NewLoader(fsys billy.Filesystem, workspace string) *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		FS:        fsys,
		Home:      home,
		Workspace: workspace,
		Logger:    logging.For("templates"),
	}
}

// ExpandDirectory substitutes a leading ~ and the $HOME, $WORKSPACE and $CWD
// markers in a configured template directory.
func (l *Loader) ExpandDirectory(dir string) string {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		dir = l.Home + dir[1:]
	}
	return strings.NewReplacer(
		"$HOME", l.Home,
		"$WORKSPACE", l.Workspace,
		"$CWD", l.Workspace,
	).Replace(dir)
}

// Discover loads every template found directly below the given directories.
// Missing directories are skipped, as are sub-directories without a
// manifest. A broken manifest is logged and its template skipped.
func (l *Loader) Discover(dirs []string) []Template {
	var found []Template
	for _, dir := range dirs {
		dir = l.ExpandDirectory(dir)
		l.Logger.Debug("searching for templates", "dir", dir)

		entries, err := l.FS.ReadDir(dir)
		if err != nil {
			l.Logger.Debug("skipping template directory", "dir", dir, "err", err)
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if !fs.Exists(l.FS, filepath.Join(path, ManifestFile)) {
				continue
			}
			tmpl, err := l.Load(path)
			if err != nil {
				l.Logger.Warn("skipping template", "path", path, "err", err)
				continue
			}
			found = append(found, *tmpl)
		}
	}
	return found
}

// manifestDecodeHook accepts "tags" either as a list or as one
// comma-separated string.
func manifestDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		splitListHook,
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

func splitListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
		return data, nil
	}
	var out []string
	for _, part := range strings.Split(data.(string), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

// Load reads the template in dir. The name defaults to the directory name
// and every file below the root directory except the manifest is listed.
func (l *Loader) Load(dir string) (*Template, error) {
	manifestPath := filepath.Join(dir, ManifestFile)
	data, err := fs.ReadFile(l.FS, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault("name", filepath.Base(dir))
	v.SetDefault("rootDir", "")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", manifestPath, err)
	}

	var tmpl Template
	if err := v.Unmarshal(&tmpl, viper.DecodeHook(manifestDecodeHook())); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", manifestPath, err)
	}
	if err := manifestValidator().Validate(tmpl); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	tmpl.Path = dir

	source := tmpl.SourceDir()
	if err := (validation.DirExists[string]{
		FS:        l.FS,
		FieldName: "root directory",
		GetPath:   func(p string) string { return p },
	}).Validate(source); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}

	rels, err := fs.WalkFiles(l.FS, source)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", source, err)
	}
	for _, rel := range rels {
		input := filepath.Join(source, rel)
		if input == manifestPath {
			continue
		}
		tmpl.Files = append(tmpl.Files, File{InputPath: input, TargetPath: rel})
	}

	return &tmpl, nil
}

// Readme returns the template's README contents, if any.
func (l *Loader) Readme(t *Template) (string, bool) {
	for _, name := range ReadmeFiles {
		data, err := fs.ReadFile(l.FS, filepath.Join(t.Path, name))
		if err == nil {
			return string(data), true
		}
	}
	return "", false
}

// Find returns the template whose name, or directory name, equals name.
// On a miss the error is a *NotFoundError listing up to three close names.
func Find(templates []Template, name string) (*Template, error) {
	for i := range templates {
		if templates[i].Name == name {
			return &templates[i], nil
		}
	}
	for i := range templates {
		if filepath.Base(templates[i].Path) == name {
			return &templates[i], nil
		}
	}
	return nil, &NotFoundError{Name: name, Suggestions: Suggest(templates, name, 3)}
}

// Suggest ranks template names by fuzzy similarity to name.
func Suggest(templates []Template, name string, limit int) []string {
	names := Names(templates)
	var out []string
	for _, m := range fuzzy.Find(name, names) {
		if len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// Names lists template names in discovery order.
func Names(templates []Template) []string {
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	return names
}
