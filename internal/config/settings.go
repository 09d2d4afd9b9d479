package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Settings is the typed view of the configuration consumed by cmd/wakdex.
type Settings struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerSettings `mapstructure:"server"`
	Store       StoreSettings  `mapstructure:"store"`
	Log         LogSettings    `mapstructure:"log"`
}

type ServerSettings struct {
	Host           string            `mapstructure:"host"`
	Port           int               `mapstructure:"port"`
	ReadTimeout    time.Duration     `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration     `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration     `mapstructure:"idle_timeout"`
	MaxConnections int               `mapstructure:"max_connections"`
	RateLimit      RateLimitSettings `mapstructure:"rate_limit"`
}

// RateLimitSettings configures the per-client limiter. RPS <= 0 disables it.
type RateLimitSettings struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type StoreSettings struct {
	Driver       string         `mapstructure:"driver"`
	SQLite       SQLiteSettings `mapstructure:"sqlite"`
	Mongo        MongoSettings  `mapstructure:"mongo"`
	QueryTimeout time.Duration  `mapstructure:"query_timeout"`
}

type SQLiteSettings struct {
	Path string `mapstructure:"path"`
}

type MongoSettings struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

// Settings decodes the configuration and validates the fields main relies on.
func (c *Config) Settings() (Settings, error) {
	var s Settings
	if err := c.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	switch s.Store.Driver {
	case "sqlite", "mongo":
	default:
		return Settings{}, fmt.Errorf("store.driver must be sqlite or mongo, got %q", s.Store.Driver)
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return Settings{}, fmt.Errorf("server.port out of range: %d", s.Server.Port)
	}
	return s, nil
}

// IsProduction reports whether error responses must hide diagnostics.
func (s Settings) IsProduction() bool {
	return s.Environment == "production"
}

// Addr returns the listen address.
func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
