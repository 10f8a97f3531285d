package config

import "github.com/dmitrijs2005/teamboard/internal/flagx"

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "TEAMBOARD_"

// parseEnv overlays Config with TEAMBOARD_* variables, loading .env first.
// Malformed numeric or duration values panic, like malformed flags do.
func parseEnv(c *Config) {
	if err := flagx.LoadDotEnv(".env"); err != nil {
		panic(err)
	}

	env := flagx.Env{Prefix: EnvPrefix}

	env.String("GRPC_ADDR", &c.EndpointAddrGRPC)
	env.String("OPS_ADDR", &c.EndpointAddrOps)
	env.String("DATABASE_DSN", &c.DatabaseDSN)
	env.String("SECRET_KEY", &c.SecretKey)
	env.List("ADMIN_EMAILS", &c.AdminEmails)
	env.String("PROTECTED_ADMIN_EMAIL", &c.ProtectedAdminEmail)
	env.String("S3_ROOT_USER", &c.S3RootUser)
	env.String("S3_ROOT_PASSWORD", &c.S3RootPassword)
	env.String("S3_BUCKET", &c.S3Bucket)
	env.String("S3_REGION", &c.S3Region)
	env.String("S3_BASE_ENDPOINT", &c.S3BaseEndpoint)
	env.String("NATS_URL", &c.NATSURL)
	env.String("REDIS_ADDR", &c.RedisAddr)
	env.String("REDIS_PASSWORD", &c.RedisPassword)
	env.String("LOG_LEVEL", &c.LogLevel)

	for _, err := range []error{
		env.Duration("ACCESS_TOKEN_TTL", &c.AccessTokenValidityDuration),
		env.Duration("REFRESH_TOKEN_TTL", &c.RefreshTokenValidityDuration),
		env.Duration("REAUTH_WINDOW", &c.ReauthWindow),
		env.Float("AUTH_RATE_LIMIT", &c.AuthRateLimit),
		env.Int("AUTH_RATE_BURST", &c.AuthRateBurst),
	} {
		if err != nil {
			panic(err)
		}
	}
}
