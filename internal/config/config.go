// Package config loads settings from voicetran.yaml, a .env file, VOICETRAN_*
// environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/valpere/voicetran/internal/language"
	"github.com/valpere/voicetran/internal/translator"
)

const (
	ConfigName = "voicetran"
	EnvPrefix  = "VOICETRAN"
)

type LibreTranslate struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

type MyMemory struct {
	URL   string `mapstructure:"url"`
	Email string `mapstructure:"email"`
}

type Google struct {
	Credentials string `mapstructure:"credentials"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Server struct {
	Addr string `mapstructure:"addr"`
}

type Config struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Source    string `mapstructure:"source"`
	Target    string `mapstructure:"target"`

	// HTTPTimeout is the shared client timeout. AttemptTimeout, when set,
	// bounds each provider attempt on top of it.
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`

	LibreTranslate LibreTranslate `mapstructure:"libretranslate"`
	MyMemory       MyMemory       `mapstructure:"mymemory"`
	Google         Google         `mapstructure:"google"`

	DBPath  string `mapstructure:"db_path"`
	History bool   `mapstructure:"history"`

	Log    Log    `mapstructure:"log"`
	Server Server `mapstructure:"server"`
}

// FlagKeys maps command line flag names to configuration keys.
var FlagKeys = map[string]string{
	"primary":        "primary",
	"secondary":      "secondary",
	"source":         "source",
	"target":         "target",
	"timeout":        "attempt_timeout",
	"db":             "db_path",
	"history":        "history",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"addr":           "server.addr",
	"mymemory-email": "mymemory.email",
	"libretranslate": "libretranslate.url",
	"credentials":    "google.credentials",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("primary", "libretranslate")
	v.SetDefault("secondary", "mymemory")
	v.SetDefault("source", language.English.Code)
	v.SetDefault("target", language.Spanish.Code)
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("attempt_timeout", time.Duration(0))
	v.SetDefault("libretranslate.url", translator.DefaultLibreTranslateURL)
	v.SetDefault("libretranslate.api_key", "")
	v.SetDefault("mymemory.url", translator.DefaultMyMemoryURL)
	v.SetDefault("mymemory.email", "")
	v.SetDefault("google.credentials", "")
	v.SetDefault("db_path", filepath.Join(".", "data", "voicetran.db"))
	v.SetDefault("history", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.addr", ":8080")
}

// Load reads configuration. configFile may be empty to search the working
// directory and $HOME/.config/voicetran. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	// .env fills in variables not already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Primary = strings.ToLower(strings.TrimSpace(c.Primary))
	c.Secondary = strings.ToLower(strings.TrimSpace(c.Secondary))

	known := translator.ServiceNames()
	if !slices.Contains(known, c.Primary) {
		return fmt.Errorf("unknown primary service %q (available: %s)", c.Primary, strings.Join(known, ", "))
	}
	if !slices.Contains(known, c.Secondary) {
		return fmt.Errorf("unknown secondary service %q (available: %s)", c.Secondary, strings.Join(known, ", "))
	}
	if c.Primary == c.Secondary {
		return fmt.Errorf("primary and secondary services must differ")
	}
	if c.Source != "auto" {
		if _, err := language.Lookup(c.Source); err != nil {
			return fmt.Errorf("source: %w", err)
		}
	}
	if _, err := language.Lookup(c.Target); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if c.HTTPTimeout < 0 || c.AttemptTimeout < 0 {
		return fmt.Errorf("timeouts must be >= 0")
	}
	return nil
}

// ProviderOptions returns what translator.Build needs, sharing one HTTP
// client between providers.
func (c *Config) ProviderOptions() translator.Options {
	return translator.Options{
		LibreTranslateURL:    c.LibreTranslate.URL,
		LibreTranslateAPIKey: c.LibreTranslate.APIKey,
		MyMemoryURL:          c.MyMemory.URL,
		MyMemoryEmail:        c.MyMemory.Email,
		GoogleCredentials:    c.Google.Credentials,
		Client:               translator.NewHTTPClient(c.HTTPTimeout),
	}
}
