package config

import (
	"fmt"

	"github.com/artisanexperiences/boilerplate/internal/scaffold/counter"
)

// OpenCounterStore returns the counter store selected by cfg together with a
// function that releases it.
func (c *Config) OpenCounterStore() (counter.Store, func() error, error) {
	switch c.Counter.Store {
	case "", CounterStoreMemory:
		return counter.Default, func() error { return nil }, nil
	case CounterStoreSQLite:
		path := c.Counter.Path
		if path == "" {
			path = DefaultCounterPath()
		}
		store, err := counter.OpenSQLite(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening counter store: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown counter store %q", c.Counter.Store)
	}
}
