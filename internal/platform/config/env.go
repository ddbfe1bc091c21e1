// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every environment variable read through ParseEnv.
const Prefix = "TYPESHELF_"

// ParseEnv loads configuration from TYPESHELF_-prefixed environment variables.
func ParseEnv(target any) error {
	return parse(target, env.Options{Prefix: Prefix})
}

// ParseEnvUnprefixed loads configuration using the raw tag names.
func ParseEnvUnprefixed(target any) error {
	return parse(target, env.Options{})
}

func parse(target any, opts env.Options) error {
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
