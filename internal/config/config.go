package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/hwmond/hwmond/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultInterval     = 2000 // milliseconds
	DefaultProbeTimeout = 500  // milliseconds
	DefaultLogLevel     = "info"
	DefaultListenAddr   = "127.0.0.1:9515"

	configEnvVar = "HWMOND_CONFIG"
)

type Config struct {
	Interval     int    `mapstructure:"interval"`      // sampling interval in milliseconds
	ProbeTimeout int    `mapstructure:"probe_timeout"` // per-probe timeout in milliseconds
	LogLevel     string `mapstructure:"log_level"`
	HTTP         bool   `mapstructure:"http"`
	Listen       string `mapstructure:"listen"`
	Telemetry    bool   `mapstructure:"telemetry"`
	TelemetryDB  string `mapstructure:"database"`
	NvidiaSMI    string `mapstructure:"nvidia_smi"` // override path to nvidia-smi
}

// SampleInterval returns the sampling interval as a duration.
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.Interval) * time.Millisecond
}

// ProbeTimeoutDuration returns the per-probe timeout as a duration.
func (c *Config) ProbeTimeoutDuration() time.Duration {
	return time.Duration(c.ProbeTimeout) * time.Millisecond
}

func Load() (*Config, error) {
	errFactory := errors.New()

	fs := pflag.NewFlagSet("hwmond", pflag.ContinueOnError)
	fs.Int("interval", DefaultInterval, "Sampling interval in milliseconds")
	fs.Int("probe-timeout", DefaultProbeTimeout, "Per-probe timeout in milliseconds")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("http", true, "Enable the HTTP status server")
	fs.String("listen", DefaultListenAddr, "HTTP listen address")
	fs.Bool("telemetry", false, "Enable telemetry recording")
	fs.String("database", "", "Path to the telemetry database")
	fs.String("nvidia-smi", "", "Path to the nvidia-smi binary")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	v := viper.New()
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("probe_timeout", DefaultProbeTimeout)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("http", true)
	v.SetDefault("listen", DefaultListenAddr)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", defaultDBPath())

	bindings := map[string]string{
		"interval":      "interval",
		"probe_timeout": "probe-timeout",
		"log_level":     "log-level",
		"http":          "http",
		"listen":        "listen",
		"telemetry":     "telemetry",
		"database":      "database",
		"nvidia_smi":    "nvidia-smi",
	}
	for key, flagName := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flagName)); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func readConfigFile(v *viper.Viper) error {
	errFactory := errors.New()

	if path := os.Getenv(configEnvVar); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err).
				WithMessage("Failed to read config file")
		}
		return nil
	}

	v.SetConfigName("hwmond")
	v.SetConfigType("toml")
	if programData := os.Getenv("PROGRAMDATA"); programData != "" {
		v.AddConfigPath(filepath.Join(programData, "hwmond"))
	}
	v.AddConfigPath("/etc")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errFactory.Wrap(errors.ErrReadConfig, err).
				WithMessage("Failed to read config file")
		}
	}

	return nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.ProbeTimeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.ProbeTimeout)
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "telemetry enabled without a database path")
	}

	return nil
}

func defaultDBPath() string {
	if programData := os.Getenv("PROGRAMDATA"); programData != "" {
		return filepath.Join(programData, "hwmond", "telemetry.db")
	}

	return "/var/lib/hwmond/telemetry.db"
}
