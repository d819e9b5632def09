package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/aimrepo/internal/logging"
)

const (
	settingsFileName = "config"
	settingsFileType = "yaml"
	settingsFileExt  = "config.yaml"
	envPrefix        = "AIM"

	keyLogLevel      = "log_level"
	keyLogFormat     = "log_format"
	keyDefaultRemote = "default_remote"
)

// settings are the user level CLI preferences kept in config.yaml of the
// settings directory. Environment variables AIM_<KEY> override the file.
type settings struct {
	LogLevel      string `yaml:"log_level" mapstructure:"log_level"`
	LogFormat     string `yaml:"log_format" mapstructure:"log_format"`
	DefaultRemote string `yaml:"default_remote" mapstructure:"default_remote"`
}

func defaultSettings() settings {
	return settings{
		LogLevel:      logging.LevelInfo,
		LogFormat:     logging.FormatConsole,
		DefaultRemote: "origin",
	}
}

// loadSettings reads config.yaml from configDir using Viper, creating the
// directory and a default file on first run.
func loadSettings(configDir string) (settings, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return settings{}, fmt.Errorf("create config dir: %w", err)
	}
	if err := writeSettingsIfMissing(filepath.Join(configDir, settingsFileExt)); err != nil {
		return settings{}, fmt.Errorf("write default config: %w", err)
	}

	def := defaultSettings()
	v := viper.New()
	v.SetDefault(keyLogLevel, def.LogLevel)
	v.SetDefault(keyLogFormat, def.LogFormat)
	v.SetDefault(keyDefaultRemote, def.DefaultRemote)
	v.SetConfigName(settingsFileName)
	v.SetConfigType(settingsFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("decode config: %w", err)
	}
	return s, nil
}

// writeSettingsIfMissing creates config.yaml with default values. An
// existing file is left alone.
func writeSettingsIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	def := defaultSettings()
	data, err := yaml.Marshal(&def)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
