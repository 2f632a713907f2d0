// Package config loads rfpchat client settings from a YAML file, the
// environment (RFPCHAT_*), and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "RFPCHAT"

	KeyAPIURL         = "api_url"
	KeySessionFile    = "session_file"
	KeyTypingDelay    = "typing_delay"
	KeyRequestTimeout = "request_timeout"
	KeyLogFile        = "log_file"
	KeyLogLevel       = "log_level"

	DefaultAPIURL         = "http://localhost:8080"
	DefaultTypingDelay    = 500 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
)

type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	SessionFile    string        `mapstructure:"session_file"`
	TypingDelay    time.Duration `mapstructure:"typing_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogFile        string        `mapstructure:"log_file"`
	LogLevel       string        `mapstructure:"log_level"`
}

// Dir is the default directory for the config file, session, and log.
func Dir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "rfpchat")
	}
	return filepath.Join(".", ".rfpchat")
}

// New returns a viper instance with defaults and env binding applied. It
// is exported so the CLI can bind flags onto the same keys.
func New() *viper.Viper {
	v := viper.New()
	dir := Dir()
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeySessionFile, filepath.Join(dir, "session.json"))
	v.SetDefault(KeyTypingDelay, DefaultTypingDelay)
	v.SetDefault(KeyRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(KeyLogFile, filepath.Join(dir, "rfpchat.log"))
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (or <Dir>/config.yaml when empty) into v and decodes it.
// A missing default file is not an error; a missing explicit file is.
func Load(v *viper.Viper, file string) (Config, error) {
	_ = godotenv.Load()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return errors.New("config: api_url must not be empty")
	}
	if c.SessionFile == "" {
		return errors.New("config: session_file must not be empty")
	}
	if c.TypingDelay <= 0 {
		c.TypingDelay = DefaultTypingDelay
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	return nil
}
