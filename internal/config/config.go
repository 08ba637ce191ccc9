// Package config loads and validates the bookmarks service configuration.
package config

import "fmt"

// Config is the root configuration for the bookmarks service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Discord DiscordConfig `yaml:"discord"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig controls the inbound HTTP listener.
type ServerConfig struct {
	Port           int       `yaml:"port"`
	Bind           string    `yaml:"bind"` // "loopback" | "lan" | "custom"
	CustomBindHost string    `yaml:"customBindHost"`
	TLS            TLSConfig `yaml:"tls"`
}

// TLSConfig enables serving the webhook endpoint over TLS directly.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertPath string `yaml:"certPath"`
	KeyPath  string `yaml:"keyPath"`
}

// DiscordConfig holds the Discord application credentials. All three values
// are opaque strings supplied by the environment; the public key is only
// ever hex-decoded by the signature verifier.
type DiscordConfig struct {
	ApplicationID string `yaml:"applicationId"`
	PublicKey     string `yaml:"publicKey"`
	Token         string `yaml:"token"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8787,
			Bind: "loopback",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
