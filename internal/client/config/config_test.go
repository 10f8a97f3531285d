package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, "teamboard.db", c.DatabasePath)
	assert.Equal(t, []string{"admin@teamboard.example"}, c.AdminEmails)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "feed"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestAdminHelpers(t *testing.T) {
	c := &Config{AdminEmails: []string{"Boss@Team.io"}, ProtectedAdminEmail: "boss@team.io"}

	assert.True(t, c.IsBuiltinAdmin(" boss@team.io"))
	assert.False(t, c.IsBuiltinAdmin("dev@team.io"))
	assert.True(t, c.IsProtectedAdmin("BOSS@team.io"))
	assert.False(t, (&Config{}).IsProtectedAdmin(""))
}

func Test_parseEnv(t *testing.T) {
	t.Setenv("TEAMBOARD_CLIENT_SERVER_ADDR", "board:50051")
	t.Setenv("TEAMBOARD_CLIENT_REQUEST_TIMEOUT", "3s")
	t.Setenv("TEAMBOARD_CLIENT_ADMIN_EMAILS", "a@team.io,b@team.io")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, "board:50051", c.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, c.RequestTimeout)
	assert.Equal(t, []string{"a@team.io", "b@team.io"}, c.AdminEmails)
}
