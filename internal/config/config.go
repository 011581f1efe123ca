package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"TTT_LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"TTT_HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"TTT_SOCKET_PORT" env-default:"9091"`
	Storage    string  `yaml:"storage" env:"TTT_STORAGE" env-default:"memory"`
	Redis      Redis   `yaml:"redis"`
	Session    Session `yaml:"session"`
}

type Redis struct {
	Host     string `yaml:"host" env:"TTT_REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"TTT_REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"TTT_REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"TTT_REDIS_DB" env-default:"0"`
}

type Session struct {
	// TTL - how long an idle page session keeps its game.
	TTL time.Duration `yaml:"ttl" env:"TTT_SESSION_TTL" env-default:"24h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (that *Config) validate() error {
	if _, err := parseLevel(that.LogLevel); err != nil {
		return err
	}

	switch that.Storage {
	case StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q", that.Storage)
	}

	if that.Session.TTL < 0 {
		return fmt.Errorf("session ttl must not be negative, got %s", that.Session.TTL)
	}

	return nil
}

// Level - the slog level named by log-level.
func (that *Config) Level() slog.Level {
	level, _ := parseLevel(that.LogLevel)
	return level
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}

	return level, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
