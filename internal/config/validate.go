package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}

	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Server.Bind != "" && !slices.Contains(validBinds, cfg.Server.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "server.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Server.Bind),
		})
	}

	if cfg.Server.TLS.Enabled {
		if cfg.Server.TLS.CertPath == "" {
			issues = append(issues, ValidationIssue{Path: "server.tls.certPath", Message: "required when TLS is enabled"})
		}
		if cfg.Server.TLS.KeyPath == "" {
			issues = append(issues, ValidationIssue{Path: "server.tls.keyPath", Message: "required when TLS is enabled"})
		}
	}

	if cfg.Discord.ApplicationID == "" {
		issues = append(issues, ValidationIssue{Path: "discord.applicationId", Message: "required"})
	}
	if cfg.Discord.Token == "" {
		issues = append(issues, ValidationIssue{Path: "discord.token", Message: "required"})
	}
	switch key, err := hex.DecodeString(cfg.Discord.PublicKey); {
	case cfg.Discord.PublicKey == "":
		issues = append(issues, ValidationIssue{Path: "discord.publicKey", Message: "required"})
	case err != nil:
		issues = append(issues, ValidationIssue{Path: "discord.publicKey", Message: "must be hex: " + err.Error()})
	case len(key) != ed25519.PublicKeySize:
		issues = append(issues, ValidationIssue{
			Path:    "discord.publicKey",
			Message: fmt.Sprintf("must decode to %d bytes, got %d", ed25519.PublicKeySize, len(key)),
		})
	}

	validLogLevels := []string{"silent", "error", "warn", "info", "debug"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
