package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"garage_opener/internal/door"
	"garage_opener/internal/relay"
)

const envPrefix = "GARAGE"

// DefaultSigningKey ships in the sample config and must be replaced in production.
const DefaultSigningKey = "change-me"

// Config is the fully resolved application configuration.
type Config struct {
	Port  string
	Log   LogConfig
	DB    DBConfig
	Auth  AuthConfig
	Door  DoorConfig
	Relay relay.Config
}

type LogConfig struct {
	Level  string
	Format string
}

type DBConfig struct {
	Path string
}

type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// UsesDefaultKey reports whether tokens are signed with the well-known default.
func (a AuthConfig) UsesDefaultKey() bool {
	return a.SigningKey == DefaultSigningKey
}

// DoorConfig holds the display name and the travel delays.
type DoorConfig struct {
	Name   string
	Timing door.Timing
}

var (
	errNegativeDelay   = errors.New("door delays must not be negative")
	errRelayTimeout    = errors.New("relay.timeout_ms must be positive")
	errEmptySigningKey = errors.New("auth.signing_key must not be empty")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.path", "garage.db")
	v.SetDefault("auth.signing_key", DefaultSigningKey)
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("door.name", "Garage Door")
	v.SetDefault("door.open_time", 15.0)
	v.SetDefault("door.close_time", 15.0)
	v.SetDefault("door.auto_close_time", 60.0)
	v.SetDefault("relay.host", "")
	v.SetDefault("relay.username", "")
	v.SetDefault("relay.password", "")
	v.SetDefault("relay.timeout_ms", 3000)
}

// New returns a viper instance reading configs/config.yml (or the given paths),
// with GARAGE_* environment overrides and defaults for every key.
func New(paths ...string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"configs", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file if one exists and resolves typed settings.
// A missing file is not an error; defaults and env still apply.
func Load(paths ...string) (Config, error) {
	v := New(paths...)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper converts raw settings into Config and validates them.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port: v.GetString("port"),
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		DB: DBConfig{Path: v.GetString("db.path")},
		Auth: AuthConfig{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
		},
		Door: DoorConfig{
			Name: v.GetString("door.name"),
			Timing: door.Timing{
				OpenDelay:      seconds(v.GetFloat64("door.open_time")),
				CloseDelay:     seconds(v.GetFloat64("door.close_time")),
				AutoCloseDelay: seconds(v.GetFloat64("door.auto_close_time")),
			},
		},
		Relay: relay.Config{
			Host:           strings.TrimSpace(v.GetString("relay.host")),
			Username:       v.GetString("relay.username"),
			Password:       v.GetString("relay.password"),
			RequestTimeout: time.Duration(v.GetInt("relay.timeout_ms")) * time.Millisecond,
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the program relies on.
func (c Config) Validate() error {
	t := c.Door.Timing
	if t.OpenDelay < 0 || t.CloseDelay < 0 || t.AutoCloseDelay < 0 {
		return errNegativeDelay
	}
	if c.Relay.RequestTimeout <= 0 {
		return errRelayTimeout
	}
	if c.Auth.SigningKey == "" {
		return errEmptySigningKey
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
