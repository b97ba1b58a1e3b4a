package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/gabrielfornes/memex/internal/app"
	"github.com/gabrielfornes/memex/internal/request"
)

const (
	ConfigName = ".memex"
	ConfigType = "yaml"
	EnvPrefix  = "MEMEX"
)

// Config is the resolved runtime configuration.
type Config struct {
	Server   string
	Limit    int
	TagMin   int
	Timeout  time.Duration
	RetryMax int
	Policy   request.Policy
	LogLevel string
	LogFile  string
}

// AppOptions returns the controller options derived from c.
func (c Config) AppOptions() app.Options {
	return app.Options{Limit: c.Limit, TagMin: c.TagMin, Policy: c.Policy}
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	defaults := app.DefaultOptions()
	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("limit", defaults.Limit)
	v.SetDefault("tag_min", defaults.TagMin)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("retry_max", 0)
	v.SetDefault("stale_policy", defaults.Policy.String())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Init points v at the config file (explicit path or ~/.memex.yaml) and
// the MEMEX_ environment. A missing default file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("could not determine home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(ConfigName)
		v.SetConfigType(ConfigType)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("could not read config: %w", err)
	}
	return nil
}

// timeout reads a bare number as seconds and anything else as a duration.
func timeout(v *viper.Viper) time.Duration {
	if secs, err := strconv.ParseFloat(strings.TrimSpace(v.GetString("timeout")), 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return v.GetDuration("timeout")
}

// Load validates and resolves the values in v.
func Load(v *viper.Viper) (Config, error) {
	policy, err := request.ParsePolicy(v.GetString("stale_policy"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server:   strings.TrimSpace(v.GetString("server")),
		Limit:    v.GetInt("limit"),
		TagMin:   v.GetInt("tag_min"),
		Timeout:  timeout(v),
		RetryMax: v.GetInt("retry_max"),
		Policy:   policy,
		LogLevel: v.GetString("log.level"),
		LogFile:  v.GetString("log.file"),
	}

	switch {
	case cfg.Server == "":
		return Config{}, fmt.Errorf("server cannot be empty")
	case cfg.Limit <= 0:
		return Config{}, fmt.Errorf("limit must be positive, got %d", cfg.Limit)
	case cfg.TagMin < 0:
		return Config{}, fmt.Errorf("tag_min cannot be negative, got %d", cfg.TagMin)
	case cfg.Timeout < 0:
		return Config{}, fmt.Errorf("timeout cannot be negative, got %s", cfg.Timeout)
	case cfg.Timeout > 0 && cfg.Timeout < time.Millisecond:
		return Config{}, fmt.Errorf("timeout %s is too short; use a unit such as 10s", cfg.Timeout)
	case cfg.RetryMax < 0:
		return Config{}, fmt.Errorf("retry_max cannot be negative, got %d", cfg.RetryMax)
	}
	return cfg, nil
}

// DefaultLogFile is where the TUI logs when log.file is unset.
func DefaultLogFile() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".memex", "memex.log"), nil
}
