package config

// EnvPrefix scopes every environment variable consumed by the platform.
const EnvPrefix = "COUNTRYHARVEST"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "COUNTRYHARVEST_APP_ENV"
	EnvPort   = "COUNTRYHARVEST_APP_PORT"

	EnvDBDSN  = "COUNTRYHARVEST_DB_DSN"
	EnvDBHost = "COUNTRYHARVEST_DB_HOST"
	EnvDBUser = "COUNTRYHARVEST_DB_USER"
	EnvDBName = "COUNTRYHARVEST_DB_NAME"

	EnvRedisURL = "COUNTRYHARVEST_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
