package config

const EnvPrefix = "PLANTOPS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ServiceKindAPI        = "api"
	ServiceKindCronWorker = "cron-worker"

	MinSection = 1
	MaxSection = 3
)

const (
	EnvAppEnv   = "PLANTOPS_APP_ENV"
	EnvPort     = "PLANTOPS_APP_PORT"
	EnvLogLevel = "PLANTOPS_LOG_LEVEL"

	EnvDBDSN    = "PLANTOPS_DB_DSN"
	EnvDBDriver = "PLANTOPS_DB_DRIVER"
	EnvDBHost   = "PLANTOPS_DB_HOST"
	EnvDBUser   = "PLANTOPS_DB_USER"
	EnvDBName   = "PLANTOPS_DB_NAME"

	EnvRedisURL = "PLANTOPS_REDIS_URL"

	EnvJWTSecret  = "PLANTOPS_JWT_SECRET"
	EnvJWTIssuer  = "PLANTOPS_JWT_ISSUER"
	EnvJWTExpMins = "PLANTOPS_JWT_EXPIRATION_MINUTES"

	EnvAccessRoleSections    = "PLANTOPS_ACCESS_ROLE_SECTIONS"
	EnvNotificationsTimeZone = "PLANTOPS_NOTIFICATIONS_TIME_ZONE"
	EnvCronRetentionDays     = "PLANTOPS_CRON_RETENTION_DAYS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
