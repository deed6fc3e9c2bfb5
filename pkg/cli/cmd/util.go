package cmd

import (
	"fmt"

	"github.com/biolinks/biolinks/pkg/config"
	"github.com/biolinks/biolinks/pkg/environment"
	"github.com/spf13/viper"
)

func loadConfiguration() (*config.BiolinksConfiguration, error) {
	v := viper.New()
	runtimeConfig, err := config.LoadRuntimeConfiguration(v, config.AppPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load runtime configuration: %w", err)
	}
	return runtimeConfig, nil
}

// loadEnvironment builds the same environment the server runs with. Callers
// close it when done.
func loadEnvironment() (*environment.Environment, error) {
	runtimeConfig, err := loadConfiguration()
	if err != nil {
		return nil, err
	}

	env, err := environment.NewEnvironment(runtimeConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize environment: %w", err)
	}
	return env, nil
}
