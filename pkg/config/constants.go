package config

// EnvPrefix is passed to envconfig; variable names carry the full
// SHOPTOOLS_ prefix in their tags so the prefix itself stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SHOPTOOLS_DB_DSN"
	EnvDBHost = "SHOPTOOLS_DB_HOST"
	EnvDBUser = "SHOPTOOLS_DB_USER"
	EnvDBName = "SHOPTOOLS_DB_NAME"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
