// Package config resolves switchhub settings from flags, the environment,
// an optional .env file and switchhub.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allbin/switchhub"
	"github.com/allbin/switchhub/serial"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SWITCHHUB_BAUD.
const EnvPrefix = "SWITCHHUB"

const (
	KeyBaud         = "baud"
	KeyWorkflowsDir = "workflows_dir"
	KeyPollInterval = "poll_interval"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
	KeyLogFile      = "log.file"
)

type Config struct {
	Baud         int
	WorkflowsDir string
	PollInterval time.Duration
	Log          LogConfig
}

type LogConfig struct {
	Level  string
	Format string // text or json
	File   string // empty means stderr
}

// SetDefaults registers the built-in value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaud, 9600)
	v.SetDefault(KeyWorkflowsDir, "workflows")
	v.SetDefault(KeyPollInterval, 10*time.Millisecond)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
}

// LoadDotEnv exports the variables in path. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads configFile, or switchhub.yaml from the usual places when it is
// empty, and resolves the settings. Environment variables win over the file.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("switchhub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "switchhub"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		Baud:         v.GetInt(KeyBaud),
		WorkflowsDir: v.GetString(KeyWorkflowsDir),
		PollInterval: v.GetDuration(KeyPollInterval),
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			File:   v.GetString(KeyLogFile),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	sc := serial.DefaultConfig()
	if err := serial.WithBaudRate(c.Baud)(&sc); err != nil {
		return fmt.Errorf("%s: %w", KeyBaud, err)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyPollInterval, c.PollInterval)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%s must be text or json, got %q", KeyLogFormat, c.Log.Format)
	}
	return nil
}

// NewLogger builds the process logger. The returned closer releases the log
// file, if one was opened.
func (c *Config) NewLogger() (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	if c.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if c.Log.File == "" {
		logger.SetOutput(os.Stderr)
		return logger, nopCloser{}, nil
	}

	f, err := os.OpenFile(c.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

// EngineOptions turns the settings into engine options.
func (c *Config) EngineOptions(logger logrus.FieldLogger) []switchhub.Option {
	return []switchhub.Option{
		switchhub.WithSerialOptions(serial.WithBaudRate(c.Baud)),
		switchhub.WithPollInterval(c.PollInterval),
		switchhub.WithLogger(logger),
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
