package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

/*
Config precedence (highest to lowest):

 1. Environment variables (TERN_* plus ANTHROPIC_API_KEY for the secret)
 2. Local project config (./.tern.yaml)
 3. Global user config ($XDG_CONFIG_HOME/tern/tern.yaml)
 4. Built-in defaults

Both config files are optional; the final merged config is validated before
use so a bad value fails at startup, not mid-request.
*/

const (
	envPrefix      = "TERN"
	configFileName = "tern"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("model.name", "claude-3-5-sonnet-latest")
	v.SetDefault("model.maxTokens", 1024)
	v.SetDefault("model.temperature", 1.0)
	v.SetDefault("upstream.baseUrl", "https://api.anthropic.com")
	v.SetDefault("upstream.version", "2023-06-01")
	v.SetDefault("server.address", ":8787")
	v.SetDefault("server.shutdownSeconds", 30)
	v.SetDefault("log.level", "INFO")
}

// New loads, merges, and validates the configuration.
func New(overrides *RuntimeOverrides) (*ConfigSchema, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("upstream.apiKey", "ANTHROPIC_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding api key: %w", err)
	}

	for _, path := range configFiles() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg ConfigSchema
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyOverrides(&cfg, overrides)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// configFiles returns candidate config files, lowest precedence first.
func configFiles() []string {
	var paths []string

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		paths = append(paths, filepath.Join(configHome, "tern", configFileName+".yaml"))
	}

	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, "."+configFileName+".yaml"))
	}
	return paths
}
