package memory

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/code-vault/pkg/config"
)

// ErrInduced is returned by Get while errors are induced
var ErrInduced = errors.New("memory config: induced error")

// Config is a mutable, in memory config.Config. A nil value means no value is
// set.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	induced  bool
	shutdown bool
}

func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// Get implements config.Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.induced:
		return nil, ErrInduced
	case c.value == nil:
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

// Shutdown implements config.Config.Shutdown
func (c *Config) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shutdown = true
}

// SetValue replaces the current value. Setting nil clears it.
func (c *Config) SetValue(value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
}

// SetInducedErrors toggles whether Get fails with ErrInduced
func (c *Config) SetInducedErrors(induced bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.induced = induced
}
