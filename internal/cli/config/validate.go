package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapview/internal/cache"
	"github.com/leapstack-labs/leapview/pkg/engine"
)

// OutputFormats are the accepted values of output and --format.
var OutputFormats = []string{"table", "json", "csv", "md", "markdown"}

// Validate checks the configuration. Every problem is reported at once.
func (c *Config) Validate() error {
	var errs []error

	engineType := strings.ToLower(c.Engine.Type)
	switch {
	case engineType == "":
		errs = append(errs, errors.New("engine.type is required"))
	case !engine.IsRegistered(engineType):
		errs = append(errs, fmt.Errorf("unknown engine type %q (available: %s)",
			c.Engine.Type, strings.Join(engine.ListEngines(), ", ")))
	}

	if c.Engine.MaxRows < 0 {
		errs = append(errs, fmt.Errorf("engine.max_rows must not be negative, got %d", c.Engine.MaxRows))
	}
	if err := validatePort("engine.port", c.Engine.Port); err != nil {
		errs = append(errs, err)
	}
	if err := validatePort("ui.port", c.UI.Port); err != nil {
		errs = append(errs, err)
	}

	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case "", cache.BackendMemory, cache.BackendRedis:
		default:
			errs = append(errs, fmt.Errorf("unknown cache backend %q (want %s or %s)",
				c.Cache.Backend, cache.BackendMemory, cache.BackendRedis))
		}
	}

	if c.Output != "" && !slices.Contains(OutputFormats, c.Output) {
		errs = append(errs, fmt.Errorf("unknown output format %q (want one of %s)",
			c.Output, strings.Join(OutputFormats, ", ")))
	}

	return errors.Join(errs...)
}

func validatePort(name string, port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("%s must be between 0 and 65535, got %d", name, port)
	}
	return nil
}
