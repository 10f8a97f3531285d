// Package config loads runtime configuration for the teamboard CLI.
//
// Sources are applied in this order, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. TEAMBOARD_CLIENT_* environment variables, after loading an optional .env.
//  3. A JSON or YAML file named by -c or -config.
//  4. Short command-line flags.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-l string   path of the local SQLite database
//	-t int      request timeout (seconds)
package config

import (
	"slices"
	"strings"
	"time"
)

// Config holds runtime settings for the teamboard CLI.
//
// AdminEmails and ProtectedAdminEmail must match the server's, since the
// session derives the administrator flag from them before asking the backend.
type Config struct {
	ServerEndpointAddr  string
	DatabasePath        string
	AdminEmails         []string
	ProtectedAdminEmail string
	RequestTimeout      time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "teamboard.db"
	c.AdminEmails = []string{"admin@teamboard.example"}
	c.ProtectedAdminEmail = "admin@teamboard.example"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// IsBuiltinAdmin reports whether email is one of the hardcoded administrators.
func (c *Config) IsBuiltinAdmin(email string) bool {
	email = normalize(email)
	return slices.ContainsFunc(c.AdminEmails, func(a string) bool {
		return normalize(a) == email
	})
}

// IsProtectedAdmin reports whether email can never be removed from the
// admin list.
func (c *Config) IsProtectedAdmin(email string) bool {
	return c.ProtectedAdminEmail != "" && normalize(email) == normalize(c.ProtectedAdminEmail)
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LoadConfig constructs a Config, applies defaults, then overlays the
// environment, an optional config file and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
