// Package config fills configuration structs from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg, a pointer to a struct, from its `env` tags. Defaults
// come from `envDefault`; list values use `envSeparator`.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
