package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr          string        `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	SessionTTL        time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"2h"`
	SweepInterval     time.Duration `yaml:"sweep-interval" env:"SWEEP_INTERVAL" env-default:"5m"`
	HeartbeatInterval time.Duration `yaml:"heartbeat-interval" env:"HEARTBEAT_INTERVAL" env-default:"15s"`
	SubscriberBuffer  int           `yaml:"subscriber-buffer" env:"SUBSCRIBER_BUFFER" env-default:"1"`
	ShutdownTimeout   time.Duration `yaml:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Load reads the YAML file at path, falling back to the environment alone
// when the file does not exist. Environment variables override the file.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, config); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}
			return config, config.validate()
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("unable to stat config file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}
	return config, config.validate()
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

func (that *Config) validate() error {
	if that.SubscriberBuffer < 1 {
		return fmt.Errorf("subscriber-buffer must be positive, got %d", that.SubscriberBuffer)
	}
	if that.SweepInterval <= 0 || that.HeartbeatInterval <= 0 {
		return errors.New("sweep-interval and heartbeat-interval must be positive")
	}
	return nil
}
