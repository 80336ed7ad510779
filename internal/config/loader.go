package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads envFile (if present) and cfgFile into a Config, applying
// environment-variable overrides ("__" in an env var name maps to "."
// in a config key). Load does not watch cfgFile; WatchAndReload does.
// Missing files fall back to Default().
func Load(cfgFile, envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("config: loading env file %s: %w", envFile, err)
			}
		}
	}

	v := viper.New()
	cfg := Default()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(cfgFile); statErr == nil {
				return nil, fmt.Errorf("config: reading %s: %w", cfgFile, err)
			}
			// No config file on disk: run with defaults, still honoring
			// env overrides below.
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	return cfg, nil
}

// WatchAndReload invokes onChange with the newly decoded Config every
// time cfgFile changes on disk. onChange must not block.
func WatchAndReload(cfgFile string, onChange func(*Config)) {
	if cfgFile == "" {
		return
	}

	v := viper.New()
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg := Default()
		if err := v.Unmarshal(cfg); err == nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
}
