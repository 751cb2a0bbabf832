package steps

import (
	"context"
	"fmt"

	"github.com/artisanexperiences/boilerplate/internal/logging"
)

// Build validates configs and creates their steps, dropping disabled ones.
func Build(configs []Config) ([]Step, error) {
	list := make([]Step, 0, len(configs))
	for i, cfg := range configs {
		if !cfg.IsEnabled() {
			continue
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		step, err := Create(cfg.Name, cfg)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		list = append(list, step)
	}
	return list, nil
}

// Run executes list in order. It stops at the first failing step; steps
// whose condition does not hold are skipped.
func Run(ctx context.Context, list []Step, sc *Context, opts Options) error {
	if sc.Logger == nil {
		sc.Logger = logging.For("steps")
	}

	for i, step := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !step.Condition(sc) {
			sc.Logger.Info("skipping step", "step", step.Name())
			continue
		}
		if err := step.Run(ctx, sc, opts); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Name(), err)
		}
	}
	return nil
}
