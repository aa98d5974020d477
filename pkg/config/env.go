package config

// EnvPrefix is the envconfig prefix shared by every service binary.
const EnvPrefix = "droptide"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv  = "DROPTIDE_APP_ENV"
	EnvAppPort = "DROPTIDE_APP_PORT"

	EnvDBDSN  = "DROPTIDE_DB_DSN"
	EnvDBHost = "DROPTIDE_DB_HOST"
	EnvDBUser = "DROPTIDE_DB_USER"
	EnvDBName = "DROPTIDE_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
