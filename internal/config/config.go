// Package config loads tasklex settings from defaults, an optional yaml file,
// TASKLEX_* environment variables and command-line flags, in increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lehmann314159/tasklex/internal/errors"
	"github.com/lehmann314159/tasklex/internal/logging"
)

const (
	AppName   = "tasklex"
	EnvPrefix = "tasklex"
)

// Config holds every runtime setting.
type Config struct {
	TasksDB      string           `mapstructure:"tasks_db"`
	VocabularyDB string           `mapstructure:"vocabulary_db"`
	HTTP         HTTPConfig       `mapstructure:"http"`
	Dictionary   DictionaryConfig `mapstructure:"dictionary"`
	Log          LogConfig        `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr     string `mapstructure:"addr"`
	APIToken string `mapstructure:"api_token"`
}

type DictionaryConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"tasks-db":      "tasks_db",
	"vocabulary-db": "vocabulary_db",
	"log-level":     "log.level",
	"log-json":      "log.json",
	"addr":          "http.addr",
	"api-token":     "http.api_token",
}

// Defaults returns the default value of every key.
func Defaults() map[string]any {
	return map[string]any{
		"tasks_db":            filepath.Join(xdg.DataHome, AppName, "tasks.db"),
		"vocabulary_db":       filepath.Join(xdg.DataHome, AppName, "vocabulary.db"),
		"http.addr":           ":8080",
		"http.api_token":      "",
		"dictionary.base_url": "https://api.dictionaryapi.dev/api/v2/entries/en",
		"log.level":           "info",
		"log.json":            false,
	}
}

// ConfigDir is the per-user directory searched for tasklex.yaml.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Load builds the configuration. configFile, when set, must exist; otherwise
// tasklex.yaml is searched for in ConfigDir and the working directory and may
// be absent. A .env file in the working directory is loaded into the
// environment first. cmd may be nil.
func Load(cmd *cobra.Command, configFile string) (Config, error) {
	var c Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, errors.Wrap(err, "failed to load .env")
	}

	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(AppName)
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return c, errors.Wrap(err, "failed to read config file")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		flags := cmd.Flags()
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, errors.Wrapf(err, "failed to bind flag %s", name)
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, errors.Wrap(err, "failed to parse config")
	}
	return c, c.Validate()
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	if strings.TrimSpace(c.TasksDB) == "" {
		return errors.NewValidationError("tasks_db", "", "must not be empty")
	}
	if strings.TrimSpace(c.VocabularyDB) == "" {
		return errors.NewValidationError("vocabulary_db", "", "must not be empty")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.NewValidationError("log.level", c.Log.Level, "must be debug, info, warn or error")
	}
	return nil
}

// Logging converts the log settings into a logger configuration.
func (c Config) Logging() logging.Config {
	level, _ := logging.ParseLevel(c.Log.Level)
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.JSON = c.Log.JSON
	return cfg
}
