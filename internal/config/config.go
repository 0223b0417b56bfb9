package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr  string    `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	Store     string    `yaml:"store" env:"STORE" env-default:"memory"`
	Redis     Redis     `yaml:"redis" env-prefix:"REDIS_"`
	Game      Game      `yaml:"game" env-prefix:"GAME_"`
	Ticket    Ticket    `yaml:"ticket" env-prefix:"TICKET_"`
	Telemetry Telemetry `yaml:"telemetry" env-prefix:"OTEL_"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"PORT" env-default:"6379"`
	Password   string        `yaml:"password" env:"PASSWORD"`
	DB         int           `yaml:"db" env:"DB" env-default:"0"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"30m"`
}

type Game struct {
	ComputerDelay   time.Duration `yaml:"computer-delay" env:"COMPUTER_DELAY" env-default:"500ms"`
	JanitorInterval time.Duration `yaml:"janitor-interval" env:"JANITOR_INTERVAL" env-default:"1m"`
}

type Ticket struct {
	Secret string        `yaml:"secret" env:"SECRET"`
	TTL    time.Duration `yaml:"ttl" env:"TTL" env-default:"2h"`
}

type Telemetry struct {
	Enabled     bool   `yaml:"enabled" env:"ENABLED" env-default:"false"`
	Endpoint    string `yaml:"endpoint" env:"ENDPOINT" env-default:"otel-collector:4317"`
	ServiceName string `yaml:"service-name" env:"SERVICE_NAME" env-default:"tic-tac-toe"`
}

// Load reads path when it is set, then applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(config)
	} else {
		err = cleanenv.ReadConfig(path, config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

func (c *Config) Validate() error {
	var errs []error
	if c.Store != StoreMemory && c.Store != StoreRedis {
		errs = append(errs, fmt.Errorf("store must be %q or %q, got %q", StoreMemory, StoreRedis, c.Store))
	}
	if c.Ticket.Secret == "" {
		errs = append(errs, errors.New("ticket secret is required"))
	}
	if c.Ticket.TTL <= 0 {
		errs = append(errs, errors.New("ticket ttl must be positive"))
	}
	if c.Game.ComputerDelay < 0 {
		errs = append(errs, errors.New("computer delay must not be negative"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
