package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/internal/config"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

var (
	cfgFile  string
	logLevel string

	// Loaded configuration
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pm25scope",
	Short: "Explore WHO urban PM2.5 measurements",
	Long: `pm25scope cleans the WHO ambient air quality dataset, summarises PM2.5
concentrations by region, settlement type and year, fits a categorical
regression and serves the results as a JSON dashboard API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// Execute is the entry point called by main.
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
}

func loadConfig() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read .env: %v\n", err)
	}
	c, err := config.Load(cfgFile)
	if err != nil {
		// commands that need configuration report it through requireConfig
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return
	}
	if rootCmd.PersistentFlags().Changed("log-level") {
		c.Log.Level = logLevel
	}
	cfg = c
}

func setupLogging() error {
	level := logLevel
	if cfg != nil && level == "" {
		level = cfg.Log.Level
	}
	if level == "" {
		level = "info"
	}
	return log.SetupLogger(level, os.Stderr)
}

func requireConfig() (*config.Config, error) {
	if cfg == nil {
		return nil, errors.New("no usable configuration; run 'pm25scope config init' or fix the config file")
	}
	return cfg, nil
}

// newCache registers the clean and raw sources named in c.
func newCache(c *config.Config) (*dataset.Cache, error) {
	cache := dataset.NewCache()
	for _, location := range []string{c.Data.CleanSource, c.Data.RawSource} {
		src, err := dataset.SourceFor(location)
		if err != nil {
			return nil, err
		}
		cache.Register(src)
	}
	return cache, nil
}
