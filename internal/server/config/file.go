package config

import (
	"time"

	"github.com/dmitrijs2005/teamboard/internal/flagx"
	"github.com/dmitrijs2005/teamboard/internal/timex"
)

// FileConfig is the on-disk shape of the server configuration. Durations use
// timex.Duration so both "15m" strings and integer nanoseconds are accepted.
// Fields left out of the file keep their previous values.
type FileConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrOps              string         `json:"endpoint_addr_ops" yaml:"endpoint_addr_ops"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	ReauthWindow                 timex.Duration `json:"reauth_window" yaml:"reauth_window"`
	AdminEmails                  []string       `json:"admin_emails" yaml:"admin_emails"`
	ProtectedAdminEmail          string         `json:"protected_admin_email" yaml:"protected_admin_email"`
	S3RootUser                   string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	NATSURL                      string         `json:"nats_url" yaml:"nats_url"`
	RedisAddr                    string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword                string         `json:"redis_password" yaml:"redis_password"`
	AuthRateLimit                float64        `json:"auth_rate_limit" yaml:"auth_rate_limit"`
	AuthRateBurst                int            `json:"auth_rate_burst" yaml:"auth_rate_burst"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config, if any, and copies every
// non-zero field into c. An unreadable or malformed file panics.
func parseFile(c *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	f := &FileConfig{}
	if err := flagx.DecodeConfigFile(path, f); err != nil {
		panic(err)
	}

	setString(&c.EndpointAddrGRPC, f.EndpointAddrGRPC)
	setString(&c.EndpointAddrOps, f.EndpointAddrOps)
	setString(&c.DatabaseDSN, f.DatabaseDSN)
	setString(&c.SecretKey, f.SecretKey)
	setDuration(&c.AccessTokenValidityDuration, f.AccessTokenValidityDuration)
	setDuration(&c.RefreshTokenValidityDuration, f.RefreshTokenValidityDuration)
	setDuration(&c.ReauthWindow, f.ReauthWindow)
	if f.AdminEmails != nil {
		c.AdminEmails = f.AdminEmails
	}
	setString(&c.ProtectedAdminEmail, f.ProtectedAdminEmail)
	setString(&c.S3RootUser, f.S3RootUser)
	setString(&c.S3RootPassword, f.S3RootPassword)
	setString(&c.S3Bucket, f.S3Bucket)
	setString(&c.S3Region, f.S3Region)
	setString(&c.S3BaseEndpoint, f.S3BaseEndpoint)
	setString(&c.NATSURL, f.NATSURL)
	setString(&c.RedisAddr, f.RedisAddr)
	setString(&c.RedisPassword, f.RedisPassword)
	if f.AuthRateLimit != 0 {
		c.AuthRateLimit = f.AuthRateLimit
	}
	if f.AuthRateBurst != 0 {
		c.AuthRateBurst = f.AuthRateBurst
	}
	setString(&c.LogLevel, f.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
