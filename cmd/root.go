package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mdrp-sim/go-engine/internal/config"
)

var (
	cfgFile string
	envFile string

	// loadedConfig is rebuilt by initConfig and again by the viper
	// watcher that initConfig installs, each time the config file
	// changes (SPEC_FULL.md §6 "Configuration").
	loadedConfig = config.Default()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "mdrp-sim",
	Short:   "last-mile delivery discrete-event simulator",
	Long:    "mdrp-sim runs a discrete-event simulation of a last-mile on-demand delivery platform",
	Version: "0.0.0",
}

// SetVersion inject version from git
func SetVersion(r string) {
	if len(r) > 0 {
		RootCmd.Version = r
	}
	viper.SetDefault("service_version", RootCmd.Version)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "env file (default is .env)")
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file (default is config.yaml)")
}

func initConfig() {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			log.Fatalf("Error loading env file %s: %v", envFile, err)
		} else {
			fmt.Println("Loaded env file:", envFile)
		}
	} else {
		fmt.Println("No env file found, skipping:", envFile)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file found, using defaults:", err)
	} else {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	decodeConfig()

	viper.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("config changed, reloading:", e.Name)
		decodeConfig()
	})
	viper.WatchConfig()
}

func decodeConfig() {
	next := config.Default()
	if err := viper.Unmarshal(next, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())); err != nil {
		log.Printf("failed to decode config, keeping previous: %v", err)
		return
	}
	loadedConfig = next
}

// currentConfig returns the most recently decoded configuration. The
// run command reads it once, when its single simulated instance
// starts; an edit caught later by the fsnotify watcher above does not
// change an instance that is already running.
func currentConfig() *config.Config {
	return loadedConfig
}
