package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	FactoriesPath string // .hcl definition files, a directory or one file
	FactoryName   string // factory to build; empty lists what was loaded
	Strategy      string // build mode; empty uses the factory's default
	Count         int    // number of objects to build
	Overrides     map[string]string

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.FactoriesPath == "" {
		return nil, errors.New("FactoriesPath is a required configuration field and cannot be empty")
	}
	if cfg.Count <= 0 {
		cfg.Count = 1
	}

	return &cfg, nil
}
