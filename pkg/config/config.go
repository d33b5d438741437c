package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Orders       OrdersConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FITSTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"FITSTORE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FITSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FITSTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FITSTORE_DB_DSN"`
	Driver string `envconfig:"FITSTORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FITSTORE_DB_HOST"`
	LegacyPort     int    `envconfig:"FITSTORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FITSTORE_DB_USER"`
	LegacyPassword string `envconfig:"FITSTORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"FITSTORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"FITSTORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FITSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FITSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FITSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FITSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FITSTORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FITSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"FITSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"FITSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FITSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FITSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FITSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FITSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FITSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FITSTORE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FITSTORE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FITSTORE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// OrdersConfig carries the entitlement constants applied at purchase time.
type OrdersConfig struct {
	MaxDownloads int `envconfig:"FITSTORE_ORDER_MAX_DOWNLOADS" default:"5"`
	ExpiryDays   int `envconfig:"FITSTORE_ORDER_EXPIRY_DAYS" default:"30"`
}

// ExpiryWindow returns the configured order lifetime.
func (o OrdersConfig) ExpiryWindow() time.Duration {
	if o.ExpiryDays <= 0 {
		return 0
	}
	return time.Duration(o.ExpiryDays) * 24 * time.Hour
}

type RateLimitConfig struct {
	DownloadWindow time.Duration `envconfig:"FITSTORE_RATE_LIMIT_DOWNLOAD_WINDOW" default:"1m"`
	DownloadLimit  int           `envconfig:"FITSTORE_RATE_LIMIT_DOWNLOAD_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FITSTORE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FITSTORE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FITSTORE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"FITSTORE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FITSTORE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"FITSTORE_GCS_BUCKET_NAME" required:"true"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"FITSTORE_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription string `envconfig:"FITSTORE_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FITSTORE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FITSTORE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FITSTORE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"FITSTORE_CRON_INTERVAL" default:"24h"`
	OutboxRetention time.Duration `envconfig:"FITSTORE_CRON_OUTBOX_RETENTION" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
