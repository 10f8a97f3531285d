package config

import (
	"github.com/dmitrijs2005/teamboard/internal/flagx"
	"github.com/dmitrijs2005/teamboard/internal/timex"
)

// FileConfig is the on-disk shape of the CLI configuration. The timeout
// accepts "10s" strings or integer nanoseconds.
type FileConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	AdminEmails         []string       `json:"admin_emails" yaml:"admin_emails"`
	ProtectedAdminEmail string         `json:"protected_admin_email" yaml:"protected_admin_email"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays c with the file named by -c/-config. Absent keys keep
// their previous values; a broken file panics.
func parseFile(c *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	f := &FileConfig{}
	if err := flagx.DecodeConfigFile(path, f); err != nil {
		panic(err)
	}

	if f.ServerEndpointAddr != "" {
		c.ServerEndpointAddr = f.ServerEndpointAddr
	}
	if f.DatabasePath != "" {
		c.DatabasePath = f.DatabasePath
	}
	if f.AdminEmails != nil {
		c.AdminEmails = f.AdminEmails
	}
	if f.ProtectedAdminEmail != "" {
		c.ProtectedAdminEmail = f.ProtectedAdminEmail
	}
	if f.RequestTimeout.Duration != 0 {
		c.RequestTimeout = f.RequestTimeout.Duration
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
}
