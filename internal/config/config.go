// Package config loads tidyfiles settings from defaults, an optional YAML
// file, TIDYFILES_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TIDYFILES"

const (
	appConfigDir  = ".config/tidyfiles"
	appConfigName = "config"
	appConfigType = "yaml"
)

// Config holds application configuration.
type Config struct {
	Download DownloadConfig `mapstructure:"download"`
	UI       UIConfig       `mapstructure:"ui"`
	Web      WebConfig      `mapstructure:"web"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	History  HistoryConfig  `mapstructure:"history"`
}

// CatalogConfig selects the file listing source.
type CatalogConfig struct {
	// Path of a YAML catalog; empty uses the built-in sample.
	Path  string        `mapstructure:"path"`
	Delay time.Duration `mapstructure:"delay"`
}

// HistoryConfig holds the sqlite download history settings.
type HistoryConfig struct {
	// Path of the database; empty disables history.
	Path string `mapstructure:"path"`
	Keep int    `mapstructure:"keep"`
}

// DownloadConfig holds the download confirmation settings.
type DownloadConfig struct {
	Message string `mapstructure:"message"`
}

// WebConfig holds the web page settings.
type WebConfig struct {
	Addr string `mapstructure:"addr"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	AriaLabel string `mapstructure:"aria_label"`
}

// DefaultHistoryPath is the default download history database.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".local", "share", "tidyfiles", "history.db")
}

// AppConfigPath returns the path of the default config file.
// Returns an empty string if the home directory cannot be determined.
func AppConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, appConfigDir, appConfigName+"."+appConfigType)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.delay", time.Second)
	v.SetDefault("history.path", DefaultHistoryPath())
	v.SetDefault("history.keep", 100)
	v.SetDefault("download.message", "")
	v.SetDefault("web.addr", "127.0.0.1:8080")
	v.SetDefault("ui.aria_label", "Files Table")
}

// Load reads configuration. file names an explicit config file that must
// exist; when empty the default location is used if present. flags maps
// config keys to command-line flags that override every other source when
// they were set.
func Load(file string, flags map[string]*pflag.Flag) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(appConfigType)

	if file != "" {
		v.SetConfigFile(ExpandPath(file))
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, appConfigDir))
		v.SetConfigName(appConfigName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return Config{}, fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	c.Catalog.Path = ExpandPath(c.Catalog.Path)
	c.History.Path = ExpandPath(c.History.Path)

	return c, nil
}

// Validate checks c and returns a *ValidationErrors wrapped in
// ErrInvalidConfig when any key is invalid.
func Validate(c Config) error {
	ve := &ValidationErrors{}

	if c.Catalog.Delay < 0 {
		ve.Add(NewFieldError("catalog.delay", c.Catalog.Delay.String(), ErrNegative))
	}

	if c.History.Keep < 0 {
		ve.Add(NewFieldError("history.keep", fmt.Sprint(c.History.Keep), ErrNegative))
	}

	for key, path := range map[string]string{"catalog.path": c.Catalog.Path, "history.path": c.History.Path} {
		if err := ValidatePath(path); err != nil {
			ve.Add(NewFieldError(key, path, err))
		}
	}

	if strings.TrimSpace(c.Web.Addr) == "" {
		ve.Add(NewFieldError("web.addr", c.Web.Addr, ErrEmptyValue))
	} else if _, _, err := net.SplitHostPort(c.Web.Addr); err != nil {
		ve.Add(NewFieldError("web.addr", c.Web.Addr, err))
	}

	if strings.TrimSpace(c.UI.AriaLabel) == "" {
		ve.Add(NewFieldError("ui.aria_label", c.UI.AriaLabel, ErrEmptyValue))
	}

	if ve.HasErrors() {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ve)
	}

	return nil
}

// ValidatePath rejects paths containing null bytes. Empty paths are valid.
func ValidatePath(path string) error {
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("%w: path contains null byte", ErrUnsafePath)
	}

	return nil
}

// ExpandPath expands a leading ~ and environment variables in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
