package config

import "github.com/dmitrijs2005/teamboard/internal/flagx"

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "TEAMBOARD_CLIENT_"

func parseEnv(c *Config) {
	if err := flagx.LoadDotEnv(".env"); err != nil {
		panic(err)
	}

	env := flagx.Env{Prefix: EnvPrefix}

	env.String("SERVER_ADDR", &c.ServerEndpointAddr)
	env.String("DATABASE_PATH", &c.DatabasePath)
	env.List("ADMIN_EMAILS", &c.AdminEmails)
	env.String("PROTECTED_ADMIN_EMAIL", &c.ProtectedAdminEmail)
	env.String("LOG_LEVEL", &c.LogLevel)

	if err := env.Duration("REQUEST_TIMEOUT", &c.RequestTimeout); err != nil {
		panic(err)
	}
}
