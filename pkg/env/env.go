package env

import (
	"github.com/gqlbind/gqlbind/pkg/log"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

var variables = new(Environment)

// Process the environment variables set for gqlbind.
func Process() error {
	if err := envconfig.Process("gqlbind", variables); err != nil {
		return errors.Wrap(err, "failed to process environment variables")
	}

	// set the log level
	if err := log.SetLevel(variables.LogLevel); err != nil {
		return errors.Wrap(err, "failed to set log level")
	}

	return nil
}

// Variables returns the processed environment variables.
func Variables() Environment {
	return *variables
}

// Environment defines the environment variables used
// by gqlbind.
type Environment struct {
	LogLevel string `default:"info"`
	Port     int    `default:"8080"`
	Pretty   bool   `default:"false"`
	GraphiQL bool   `default:"true"`
}
