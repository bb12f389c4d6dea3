// Package config is a thin wrapper over caarlos0/env: the storefront's
// configuration comes entirely from environment variables declared as
// `env` tags on the config struct.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the environment. cfg must be a pointer to a struct
// with `env` tags; defaults come from `envDefault`.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
