// Package scope assembles the variable namespace for a single file
// expansion.
package scope

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"

	"github.com/artisanexperiences/boilerplate/internal/fs"
	"github.com/artisanexperiences/boilerplate/internal/logging"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/types"
	"github.com/artisanexperiences/boilerplate/internal/utils"
)

// Builder produces a fresh namespace per file. Sources are merged in a fixed
// order, later ones overriding earlier ones:
//
//	system defaults, env, config variables, manifests, path scalars, answers
type Builder struct {
	FS            billy.Filesystem
	WorkspaceRoot string
	Variables     map[string]any
	Manifests     []string
	EnvFile       string
	Environ       func() []string
	Logger        *log.Logger
}

func NewBuilder(fsys billy.Filesystem, workspaceRoot string) *Builder {
	return &Builder{
		FS:            fsys,
		WorkspaceRoot: workspaceRoot,
		Manifests:     []string{"package.json"},
		EnvFile:       ".env",
		Environ:       os.Environ,
		Logger:        logging.For("scope"),
	}
}

func (b *Builder) Build(inputPath, outputPath string, answers map[string]string) *types.Namespace {
	ns := types.NewNamespace()

	b.addSystem(ns)
	b.addEnv(ns)
	b.addVariables(ns)
	b.addManifests(ns, filepath.Dir(outputPath))
	b.addPaths(ns, inputPath, outputPath)

	for k, v := range answers {
		ns.SetVar("input."+k, v)
		ns.SetVar(k, v)
	}

	return ns
}

func (b *Builder) addSystem(ns *types.Namespace) {
	ns.SetVar("system.os", runtime.GOOS)
	ns.SetVar("system.arch", runtime.GOARCH)

	if host, err := os.Hostname(); err == nil {
		ns.SetVar("system.hostname", host)
	}

	username := os.Getenv("USER")
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
	}
	ns.SetVar("system.user", username)

	if home, err := os.UserHomeDir(); err == nil {
		ns.SetVar("system.home", home)
	}
	ns.SetVar("system.shell", os.Getenv("SHELL"))
}

func (b *Builder) addEnv(ns *types.Namespace) {
	if b.Environ != nil {
		for _, kv := range b.Environ() {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || name == "" {
				continue
			}
			ns.SetVar("env."+name, value)
		}
	}

	if b.FS == nil || b.EnvFile == "" {
		return
	}
	for name, value := range utils.ReadEnvFile(b.FS, b.WorkspaceRoot, b.EnvFile) {
		ns.SetVar("env."+name, value)
	}
}

func (b *Builder) addVariables(ns *types.Namespace) {
	for key, value := range FlattenVariables(b.Variables) {
		ns.SetVar(key, value)
	}
}

func (b *Builder) addManifests(ns *types.Namespace, startDir string) {
	if b.FS == nil {
		return
	}
	for _, name := range b.Manifests {
		path, ok := FindUp(b.FS, startDir, name)
		if !ok {
			b.Logger.Debug("manifest not found", "name", name, "from", startDir)
			continue
		}
		data, err := fs.ReadFile(b.FS, path)
		if err != nil {
			b.Logger.Warn("reading manifest", "path", path, "err", err)
			continue
		}
		fields, err := DecodeManifest(path, data)
		if err != nil {
			b.Logger.Warn("decoding manifest", "path", path, "err", err)
			continue
		}
		prefix := Prefix(name)
		for k, v := range fields {
			ns.SetVar(prefix+"."+k, v)
		}
	}
}

func (b *Builder) addPaths(ns *types.Namespace, inputPath, outputPath string) {
	for k, v := range PathScalars(b.WorkspaceRoot, inputPath, outputPath) {
		ns.SetVar(k, v)
	}
}

// PathScalars computes the path-derived variables for one file.
func PathScalars(workspaceRoot, inputPath, outputPath string) map[string]string {
	inputRel := relative(workspaceRoot, inputPath)
	outputRel := relative(workspaceRoot, outputPath)
	outputFilename := filepath.Base(outputPath)

	return map[string]string{
		"workspaceRoot":           workspaceRoot,
		"inputPath":               inputPath,
		"outputPath":              outputPath,
		"inputPathRelative":       inputRel,
		"outputPathRelative":      outputRel,
		"inputDirectory":          filepath.Dir(inputPath),
		"outputDirectory":         filepath.Dir(outputPath),
		"inputDirectoryRelative":  filepath.Dir(inputRel),
		"outputDirectoryRelative": filepath.Dir(outputRel),
		"inputFilename":           filepath.Base(inputPath),
		"outputFilename":          outputFilename,
		"filename":                strings.TrimSuffix(outputFilename, filepath.Ext(outputFilename)),
	}
}

func relative(root, path string) string {
	if root != "" {
		path = strings.TrimPrefix(path, root)
	}
	return strings.TrimPrefix(path, string(filepath.Separator))
}

// FlattenVariables turns configured variables into dotted keys with string
// values. Keys may be written bare or wrapped as ${key}.
func FlattenVariables(vars map[string]any) map[string]string {
	out := make(map[string]string)
	flattenVariables(out, "", vars)
	return out
}

func flattenVariables(out map[string]string, prefix string, vars map[string]any) {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := unwrapKey(k)
		if name == "" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		switch v := vars[k].(type) {
		case map[string]any:
			flattenVariables(out, name, v)
		default:
			out[name] = types.Stringify(v)
		}
	}
}

func unwrapKey(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "${") && strings.HasSuffix(key, "}") {
		key = key[2 : len(key)-1]
	}
	return strings.TrimPrefix(key, "variables.")
}
