// Package steps runs the post-generation steps a template declares in its
// manifest, such as installing dependencies or writing an .env entry.
package steps

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"

	"github.com/artisanexperiences/boilerplate/internal/scaffold/types"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/validation"
)

// Config is one entry of a manifest's "steps" list. Which fields apply
// depends on Name.
type Config struct {
	Name    string `mapstructure:"name"`
	Enabled *bool  `mapstructure:"enabled"`
	Command string `mapstructure:"command"`
	StoreAs string `mapstructure:"store_as"`
	From    string `mapstructure:"from"`
	To      string `mapstructure:"to"`
	Key     string `mapstructure:"key"`
	Value   string `mapstructure:"value"`
	File    string `mapstructure:"file"`
}

func (c Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Validate checks the fields required by the step type.
func (c Config) Validate() error {
	return configValidator(c.Name).Validate(c)
}

func configValidator(name string) *validation.Validator[Config] {
	v := validation.NewValidator[Config](fmt.Sprintf("step %q", name)).
		AddRule(validation.RequiredField[Config]{
			FieldName: "name",
			GetValue:  func(c Config) string { return c.Name },
		})

	required := func(field string, get func(Config) string) {
		v.AddRule(validation.RequiredField[Config]{FieldName: field, GetValue: get})
	}

	switch name {
	case CommandRun, BashRun:
		required("command", func(c Config) string { return c.Command })
	case FileCopy:
		required("from", func(c Config) string { return c.From })
		required("to", func(c Config) string { return c.To })
		v.AddRule(validation.RelativePath[Config]{FieldName: "from", GetValue: func(c Config) string { return c.From }})
		v.AddRule(validation.RelativePath[Config]{FieldName: "to", GetValue: func(c Config) string { return c.To }})
	case EnvRead:
		required("key", func(c Config) string { return c.Key })
		required("store_as", func(c Config) string { return c.StoreAs })
	case EnvWrite:
		required("key", func(c Config) string { return c.Key })
	}
	return v
}

// Context is shared by the steps of one run.
type Context struct {
	// Dir is the generation target; relative step paths resolve against it.
	Dir string
	FS  billy.Filesystem

	// Expand resolves placeholders in a step argument. Values stored by
	// earlier steps are visible through vars.
	Expand func(s string, vars types.Answers) string

	Logger *log.Logger

	mu   sync.RWMutex
	vars types.Answers
}

func (c *Context) SetVar(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vars == nil {
		c.vars = types.Answers{}
	}
	c.vars[key] = value
}

func (c *Context) GetVar(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vars[key]
}

// Vars returns a copy of the values stored so far.
func (c *Context) Vars() types.Answers {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vars.Clone()
}

func (c *Context) expand(s string) string {
	if c.Expand == nil {
		return s
	}
	return c.Expand(s, c.Vars())
}

type Options struct {
	DryRun  bool
	Verbose bool
}

type Step interface {
	Name() string
	Run(ctx context.Context, sc *Context, opts Options) error
	Condition(sc *Context) bool
}
