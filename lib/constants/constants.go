package constants

// PARAMETER_PATH is the SSM prefix every console parameter lives under.
// Parameter names below are relative to it.
const PARAMETER_PATH = "/opsconsole"

const (
	ALLOWED_ORIGINS       = "ALLOWED_ORIGINS"
	STORE_DRIVER          = "STORE_DRIVER"
	DATABASE_RDS_ENDPOINT = "DATABASE_RDS_ENDPOINT"
	DATABASE_PORT         = "DATABASE_PORT"
	DATABASE_NAME         = "DATABASE_NAME"
	DATABASE_USERNAME     = "DATABASE_USERNAME"
	DATABASE_PASSWORD     = "DATABASE_PASSWORD"
	SSL_MODE              = "SSL_MODE"
	MONGO_URI             = "MONGO_URI"
	MONGO_DATABASE        = "MONGO_DATABASE"
	FILES_BUCKET          = "FILES_BUCKET"
	COGNITO_USER_POOL_ID  = "COGNITO_USER_POOL_ID"
	TOKEN_SECRET          = "TOKEN_SECRET"
	FETCH_CAP             = "FETCH_CAP"
	TIME_ZONE             = "TIME_ZONE"
	ORG_NAME              = "ORG_NAME"
	SEED_ADMIN_EMAIL      = "SEED_ADMIN_EMAIL"
	SEED_ADMIN_NAME       = "SEED_ADMIN_NAME"
	AWS_REGION            = "AWS_REGION"
)

const (
	DRIVER_NAME     = "postgres"
	STORE_POSTGRES  = "postgres"
	STORE_MONGO     = "mongo"
	STORE_MEMORY    = "memory"
	DEFAULT_REGION  = "us-east-2"
	LOCAL_ENDPOINT  = "http://docker.for.mac.host.internal:4566"
	DEFAULT_TZ      = "Asia/Kolkata"
	DEFAULT_ORG     = "piperocket"
	DEFAULT_MONGODB = "opsconsole"
)
