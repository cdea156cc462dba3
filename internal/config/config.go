// Package config loads pm25scope settings from defaults, an optional yaml
// file, a .env file and PM25SCOPE_* environment variables.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. PM25SCOPE_SERVER_ADDR.
const EnvPrefix = "PM25SCOPE"

// DefaultFile is the config file looked up in the working directory when no
// path is given.
const DefaultFile = "pm25scope.yaml"

// Config is the full application configuration.
type Config struct {
	Server     Server     `mapstructure:"server" yaml:"server"`
	Log        Log        `mapstructure:"log" yaml:"log"`
	Data       Data       `mapstructure:"data" yaml:"data"`
	Analysis   Analysis   `mapstructure:"analysis" yaml:"analysis"`
	Regression Regression `mapstructure:"regression" yaml:"regression"`
	Dashboard  Dashboard  `mapstructure:"dashboard" yaml:"dashboard"`
}

type Server struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Data names the two tables the dashboard reads. Each is a file path
// (.csv or .xlsx) or an http(s) URL serving CSV.
type Data struct {
	CleanSource string `mapstructure:"clean_source" yaml:"clean_source"`
	RawSource   string `mapstructure:"raw_source" yaml:"raw_source"`
}

type Analysis struct {
	ValueColumn string `mapstructure:"value_column" yaml:"value_column"`
}

type Regression struct {
	Target     string   `mapstructure:"target" yaml:"target"`
	Predictors []string `mapstructure:"predictors" yaml:"predictors"`
}

type Dashboard struct {
	TopN int `mapstructure:"top_n" yaml:"top_n"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("data.clean_source", "data/processed/pm25_cleaned.csv")
	v.SetDefault("data.raw_source", "data/raw/WHO_PM25_urban_2022.csv")
	v.SetDefault("analysis.value_column", "FactValueNumeric")
	v.SetDefault("regression.target", "FactValueNumeric")
	v.SetDefault("regression.predictors", []string{"Dim1", "Location"})
	v.SetDefault("dashboard.top_n", 10)
}

// Default returns the configuration with every default applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	// Unmarshalling defaults alone cannot fail.
	_ = v.Unmarshal(&c)
	return &c
}

// Load reads configuration with precedence env > config file > defaults.
// An empty cfgFile looks for DefaultFile in the working directory and
// silently skips it when absent; an explicit cfgFile must exist.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(strings.TrimSuffix(DefaultFile, filepath.Ext(DefaultFile)))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch {
	case c.Data.CleanSource == "":
		return errors.NewValueError("config", "data.clean_source is empty")
	case c.Data.RawSource == "":
		return errors.NewValueError("config", "data.raw_source is empty")
	case c.Analysis.ValueColumn == "":
		return errors.NewValueError("config", "analysis.value_column is empty")
	case c.Regression.Target == "":
		return errors.NewValueError("config", "regression.target is empty")
	case len(c.Regression.Predictors) == 0:
		return errors.NewValueError("config", "regression.predictors is empty")
	case c.Dashboard.TopN <= 0:
		return errors.NewValueError("config", "dashboard.top_n must be positive")
	}
	return nil
}

// Save writes c as yaml to path, creating parent directories.
func Save(c *Config, path string) error {
	if path == "" {
		path = DefaultFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "mkdir config dir")
		}
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Wrapf(err, "load %s", p)
		}
	}
	return nil
}
