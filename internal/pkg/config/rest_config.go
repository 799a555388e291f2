package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// RestConfig holds the settings of the REST API server
type RestConfig struct {
	Port       string             `yaml:"port" validate:"required,numeric"`
	Logger     LoggerSettings     `yaml:"logger"`
	Database   DatabaseSettings   `yaml:"database"`
	Dispatcher DispatcherSettings `yaml:"dispatcher"`
}

// Validate checks the server settings and every nested settings block
func (c *RestConfig) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed for RestConfig: %w", err)
	}
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	return c.Dispatcher.Validate()
}

// InitializeRestConfig loads the YAML file at path, applies environment
// overrides and validates the result.
func InitializeRestConfig(path string) (*RestConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg RestConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *RestConfig) error {
	if port, ok := os.LookupEnv("PORT"); ok {
		cfg.Port = port
	}
	if level, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.Logger.LogLevel = level
	}
	if dsn, ok := os.LookupEnv("DATABASE_DSN"); ok {
		cfg.Database.DSN = dsn
	}
	if workers, ok := os.LookupEnv("DISPATCHER_WORKERS"); ok {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid DISPATCHER_WORKERS %q: %w", workers, err)
		}
		cfg.Dispatcher.Workers = n
	}
	return nil
}
