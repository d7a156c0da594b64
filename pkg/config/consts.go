package config

// EnvPrefix scopes all envconfig lookups for the storefront services.
const EnvPrefix = "atino"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error text).
const (
	EnvAppEnv     = "ATINO_APP_ENV"
	EnvPort       = "ATINO_APP_PORT"
	EnvDBDSN      = "ATINO_DB_DSN"
	EnvDBHost     = "ATINO_DB_HOST"
	EnvDBUser     = "ATINO_DB_USER"
	EnvDBName     = "ATINO_DB_NAME"
	EnvRedisURL   = "ATINO_REDIS_URL"
	EnvJWTSecret  = "ATINO_JWT_SECRET"
	EnvJWTIssuer  = "ATINO_JWT_ISSUER"
	EnvJWTExpMins = "ATINO_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
