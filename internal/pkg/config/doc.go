// Package config provides functionality for loading and managing application configuration.
//
// Settings are read from a YAML file, overridden from the environment and
// validated before the REST server or CLI wires its dependencies.
package config
