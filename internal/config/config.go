package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/artisanexperiences/boilerplate/internal/scaffold/validation"
)

const (
	// Exit codes
	ExitSuccess = iota
	ExitGeneralError
	ExitInvalidArguments
	ExitTemplateNotFound
	ExitGenerationFailed
	ExitConfigurationError
)

const (
	AppName           = "boilerplate"
	ConfigName        = "boilerplate"
	ProjectConfigFile = ".boilerplate.yaml"
	EnvPrefix         = "BOILERPLATE"

	// EnvConfigDir overrides the global config directory.
	EnvConfigDir = "BOILERPLATE_CONFIG_DIR"
	// EnvStateDir overrides the directory holding the counter database.
	EnvStateDir = "BOILERPLATE_STATE_DIR"
)

const (
	CounterStoreMemory = "memory"
	CounterStoreSQLite = "sqlite"
)

var ErrConfigNotFound = errors.New("config not found")

// DefaultTemplateDirectories are searched when no directories are configured.
var DefaultTemplateDirectories = []string{"~/.boilerplate/templates", "$WORKSPACE/.boilerplate/templates"}

// Config is the merged global and project configuration.
type Config struct {
	TemplateDirectories []string       `mapstructure:"template_directories"`
	Manifests           []string       `mapstructure:"manifests"`
	EnvFile             string         `mapstructure:"env_file"`
	Counter             CounterConfig  `mapstructure:"counter"`
	Scaffold            ScaffoldConfig `mapstructure:"scaffold"`

	// Variables keeps the key case written in the config files.
	Variables map[string]any `mapstructure:"-"`
}

// CounterConfig selects where ${counter} state lives.
type CounterConfig struct {
	Store string `mapstructure:"store"`
	Path  string `mapstructure:"path"`
}

// ScaffoldConfig controls generation.
type ScaffoldConfig struct {
	Parallel bool `mapstructure:"parallel"`
}

func validator() *validation.Validator[Config] {
	return validation.NewValidator[Config]("config").
		AddRule(validation.OneOf[Config]{
			FieldName: "counter.store",
			GetValue:  func(c Config) string { return c.Counter.Store },
			Allowed:   []string{CounterStoreMemory, CounterStoreSQLite},
		})
}

// GlobalConfigDir returns the global config directory.
func GlobalConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// GlobalConfigPath returns the global config file path.
func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), ConfigName+".yaml")
}

// StateDir returns the directory for persistent runtime state.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultCounterPath is where the SQLite counter store lives by default.
func DefaultCounterPath() string {
	return filepath.Join(StateDir(), "counters.db")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("template_directories", DefaultTemplateDirectories)
	v.SetDefault("manifests", []string{"package.json"})
	v.SetDefault("env_file", ".env")
	v.SetDefault("counter.store", CounterStoreMemory)
	v.SetDefault("counter.path", "")
	v.SetDefault("scaffold.parallel", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the global config, then merges the project config found in
// workspace over it. Missing files are not an error.
func Load(workspace string) (*Config, error) {
	v := newViper()

	files := []string{GlobalConfigPath()}
	if workspace != "" {
		files = append(files, filepath.Join(workspace, ProjectConfigFile))
	}

	var loaded []string
	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}

	return decode(v, loaded)
}

// LoadProject loads only the project config in path.
func LoadProject(path string) (*Config, error) {
	configPath := filepath.Join(path, ProjectConfigFile)
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return decode(v, []string{configPath})
}

func decode(v *viper.Viper, files []string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	vars, err := readVariables(files)
	if err != nil {
		return nil, err
	}
	cfg.Variables = vars

	if cfg.Counter.Path == "" {
		cfg.Counter.Path = DefaultCounterPath()
	}
	if err := validator().Validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// readVariables decodes the variables section of each file with yaml.v3,
// since viper lower-cases every key. Later files override earlier ones key by
// key.
func readVariables(files []string) (map[string]any, error) {
	vars := make(map[string]any)
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		var raw struct {
			Variables map[string]any `yaml:"variables"`
		}
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return nil, fmt.Errorf("parsing variables in %s: %w", path, err)
		}
		for k, val := range raw.Variables {
			vars[k] = val
		}
	}
	return vars, nil
}

// SaveProject writes cfg into the project config in path. Keys already in the
// file that cfg does not set are kept.
func SaveProject(path string, cfg *Config) error {
	return save(filepath.Join(path, ProjectConfigFile), cfg)
}

// SaveGlobal writes cfg into the global config, creating its directory.
func SaveGlobal(cfg *Config) error {
	if err := os.MkdirAll(GlobalConfigDir(), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return save(GlobalConfigPath(), cfg)
}

func save(configPath string, cfg *Config) error {
	var existing map[string]interface{}
	if content, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(content, &existing); err != nil {
			return fmt.Errorf("parsing existing config: %w", err)
		}
	}

	if existing == nil {
		existing = make(map[string]interface{})
	}

	if len(cfg.TemplateDirectories) > 0 {
		existing["template_directories"] = cfg.TemplateDirectories
	}
	if len(cfg.Manifests) > 0 {
		existing["manifests"] = cfg.Manifests
	}
	if cfg.EnvFile != "" {
		existing["env_file"] = cfg.EnvFile
	}
	if len(cfg.Variables) > 0 {
		vars, _ := existing["variables"].(map[string]interface{})
		if vars == nil {
			vars = make(map[string]interface{})
		}
		for k, v := range cfg.Variables {
			vars[k] = v
		}
		existing["variables"] = vars
	}

	if cfg.Counter.Store != "" || cfg.Counter.Path != "" {
		counter, _ := existing["counter"].(map[string]interface{})
		if counter == nil {
			counter = make(map[string]interface{})
		}
		if cfg.Counter.Store != "" {
			counter["store"] = cfg.Counter.Store
		}
		if cfg.Counter.Path != "" {
			counter["path"] = cfg.Counter.Path
		}
		existing["counter"] = counter
	}

	if cfg.Scaffold.Parallel {
		scaffold, _ := existing["scaffold"].(map[string]interface{})
		if scaffold == nil {
			scaffold = make(map[string]interface{})
		}
		scaffold["parallel"] = true
		existing["scaffold"] = scaffold
	}

	content, err := yaml.Marshal(existing)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
