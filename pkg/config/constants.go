package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "MOTORLEDGER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MOTORLEDGER_DB_DSN"
	EnvDBHost = "MOTORLEDGER_DB_HOST"
	EnvDBUser = "MOTORLEDGER_DB_USER"
	EnvDBName = "MOTORLEDGER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
