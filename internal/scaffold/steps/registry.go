package steps

import (
	"fmt"
	"sort"
)

const (
	CommandRun = "command.run"
	BashRun    = "bash.run"
	FileCopy   = "file.copy"
	EnvRead    = "env.read"
	EnvWrite   = "env.write"
)

type StepFactory func(cfg Config) Step

var registry = make(map[string]StepFactory)

func Register(name string, factory StepFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("step %q already registered", name))
	}
	registry[name] = factory
}

func Create(name string, cfg Config) (Step, error) {
	if factory, ok := registry[name]; ok {
		return factory(cfg), nil
	}
	return nil, fmt.Errorf("unknown step %q (available: %v)", name, ListRegistered())
}

func ListRegistered() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(CommandRun, func(cfg Config) Step {
		return NewCommandRunStep(cfg.Command, cfg.StoreAs)
	})
	Register(BashRun, func(cfg Config) Step {
		return NewBashRunStep(cfg.Command, cfg.StoreAs)
	})
	Register(FileCopy, func(cfg Config) Step {
		return NewFileCopyStep(cfg.From, cfg.To)
	})
	Register(EnvRead, func(cfg Config) Step {
		return NewEnvReadStep(cfg)
	})
	Register(EnvWrite, func(cfg Config) Step {
		return NewEnvWriteStep(cfg)
	})
}
