package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// envconfig tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv     = "BOXPORT_APP_ENV"
	EnvPort       = "BOXPORT_APP_PORT"
	EnvDBDSN      = "BOXPORT_DB_DSN"
	EnvDBHost     = "BOXPORT_DB_HOST"
	EnvDBUser     = "BOXPORT_DB_USER"
	EnvDBName     = "BOXPORT_DB_NAME"
	EnvRedisURL   = "BOXPORT_REDIS_URL"
	EnvJWTSecret  = "BOXPORT_JWT_SECRET"
	EnvJWTIssuer  = "BOXPORT_JWT_ISSUER"
	EnvJWTExpMins = "BOXPORT_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
