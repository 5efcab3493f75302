package config

const (
	// EnvPrefix namespaces every environment variable the app reads.
	EnvPrefix = "SCHULBIB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SCHULBIB_DB_DSN"
	EnvDBHost = "SCHULBIB_DB_HOST"
	EnvDBUser = "SCHULBIB_DB_USER"
	EnvDBName = "SCHULBIB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
