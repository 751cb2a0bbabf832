package scope

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/ohler55/ojg/oj"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/artisanexperiences/boilerplate/internal/fs"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/types"
)

// MaxManifestDepth is how many parent directories are searched above the
// starting directory.
const MaxManifestDepth = 10

// FindUp returns the nearest dir/filename walking upward from dir, checking
// dir itself and at most MaxManifestDepth parents.
func FindUp(fsys billy.Filesystem, dir, filename string) (string, bool) {
	for i := 0; i <= MaxManifestDepth; i++ {
		candidate := filepath.Join(dir, filename)
		if fs.Exists(fsys, candidate) && !fs.IsDir(fsys, candidate) {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// Prefix is the namespace root a manifest's fields are exposed under:
// package.json becomes "package".
func Prefix(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DecodeManifest parses data by the extension of filename and returns its
// top-level fields as strings. Nested values are rendered as JSON text.
func DecodeManifest(filename string, data []byte) (map[string]string, error) {
	var raw map[string]any

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		v, err := oj.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filename, err)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: top level is not an object", filename)
		}
		raw = m
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filename, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filename, err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s", filename)
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		fields[k] = types.Stringify(v)
	}
	return fields, nil
}
