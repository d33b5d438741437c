package config

// EnvPrefix namespaces all envconfig lookups.
const EnvPrefix = "FITSTORE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "FITSTORE_APP_ENV"
	EnvPort     = "FITSTORE_APP_PORT"
	EnvDBDSN    = "FITSTORE_DB_DSN"
	EnvDBHost   = "FITSTORE_DB_HOST"
	EnvDBUser   = "FITSTORE_DB_USER"
	EnvDBName   = "FITSTORE_DB_NAME"
	EnvRedisURL = "FITSTORE_REDIS_URL"

	EnvJWTSecret = "FITSTORE_JWT_SECRET"
	EnvJWTIssuer = "FITSTORE_JWT_ISSUER"

	EnvGCPProjectID      = "FITSTORE_GCP_PROJECT_ID"
	EnvGCSBucket         = "FITSTORE_GCS_BUCKET_NAME"
	EnvPubSubDomainTopic = "FITSTORE_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "FITSTORE_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
