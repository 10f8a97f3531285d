package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseFile_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("loads from json", func(t *testing.T) {
		path := writeTemp(t, "cfg.json", `{
			"endpoint_addr_grpc": "www.example:9000",
			"database_dsn": "postgres://db",
			"secret_key": "my_secret_key",
			"access_token_validity_duration": "1m",
			"reauth_window": "90s",
			"admin_emails": ["boss@team.io"],
			"nats_url": "nats://broker:4222",
			"auth_rate_burst": 9
		}`)
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 1*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 90*time.Second, cfg.ReauthWindow)
		assert.Equal(t, []string{"boss@team.io"}, cfg.AdminEmails)
		assert.Equal(t, "nats://broker:4222", cfg.NATSURL)
		assert.Equal(t, 9, cfg.AuthRateBurst)

		assert.Equal(t, ":9090", cfg.EndpointAddrOps, "absent keys keep defaults")
		assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenValidityDuration)
	})

	t.Run("loads from yaml", func(t *testing.T) {
		path := writeTemp(t, "cfg.yaml", "endpoint_addr_ops: \":9200\"\nredis_addr: redis:6379\nrefresh_token_validity_duration: 1h\n")
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, ":9200", cfg.EndpointAddrOps)
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
		assert.Equal(t, time.Hour, cfg.RefreshTokenValidityDuration)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrGRPC: "defaults:1234", SecretKey: "key"}
		parseFile(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := writeTemp(t, "bad.json", `{ this is not valid json`)
		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseFile(cfg) })
	})
}

func Test_parseEnv(t *testing.T) {
	t.Setenv("TEAMBOARD_GRPC_ADDR", ":6000")
	t.Setenv("TEAMBOARD_ADMIN_EMAILS", "x@team.io, y@team.io")
	t.Setenv("TEAMBOARD_REAUTH_WINDOW", "10m")
	t.Setenv("TEAMBOARD_AUTH_RATE_LIMIT", "0.5")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":6000", cfg.EndpointAddrGRPC)
	assert.Equal(t, []string{"x@team.io", "y@team.io"}, cfg.AdminEmails)
	assert.Equal(t, 10*time.Minute, cfg.ReauthWindow)
	assert.InDelta(t, 0.5, cfg.AuthRateLimit, 1e-9)
}

func Test_parseEnv_PanicsOnBadDuration(t *testing.T) {
	t.Setenv("TEAMBOARD_ACCESS_TOKEN_TTL", "forever")

	cfg := &Config{}
	require.Panics(t, func() { parseEnv(cfg) })
}
