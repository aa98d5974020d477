package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Orders   OrdersConfig
	Cache    CacheConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	Outbox   OutboxConfig

	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"DROPTIDE_APP_ENV" required:"true"`
	Port         string `envconfig:"DROPTIDE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DROPTIDE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DROPTIDE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DROPTIDE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DROPTIDE_DB_DSN"`
	Driver string `envconfig:"DROPTIDE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DROPTIDE_DB_HOST"`
	Port     int    `envconfig:"DROPTIDE_DB_PORT" default:"5432"`
	User     string `envconfig:"DROPTIDE_DB_USER"`
	Password string `envconfig:"DROPTIDE_DB_PASSWORD"`
	Name     string `envconfig:"DROPTIDE_DB_NAME"`
	SSLMode  string `envconfig:"DROPTIDE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DROPTIDE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DROPTIDE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DROPTIDE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DROPTIDE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DROPTIDE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DROPTIDE_REDIS_ADDR"`
	Password     string        `envconfig:"DROPTIDE_REDIS_PASSWORD"`
	DB           int           `envconfig:"DROPTIDE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DROPTIDE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DROPTIDE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DROPTIDE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DROPTIDE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DROPTIDE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"DROPTIDE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"DROPTIDE_JWT_ISSUER" required:"true"`
}

// OrdersConfig tunes order-creation behavior.
type OrdersConfig struct {
	// DuplicateWindow is the period during which an identical submission
	// (same creator, phone and item fingerprint) returns the existing order
	// instead of creating a second one.
	DuplicateWindow time.Duration `envconfig:"DROPTIDE_ORDERS_DUPLICATE_WINDOW" default:"2m"`
	InvoiceSequence string        `envconfig:"DROPTIDE_ORDERS_INVOICE_SEQUENCE" default:"orders"`
}

type CacheConfig struct {
	SummaryTTL time.Duration `envconfig:"DROPTIDE_CACHE_SUMMARY_TTL" default:"30s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DROPTIDE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DROPTIDE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DROPTIDE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"DROPTIDE_PUBSUB_ORDERS_TOPIC" default:"dt-order-events"`
	OrdersSubscription string `envconfig:"DROPTIDE_PUBSUB_ORDERS_SUBSCRIPTION"`
	StockTopic         string `envconfig:"DROPTIDE_PUBSUB_STOCK_TOPIC" default:"dt-stock-events"`
	StockSubscription  string `envconfig:"DROPTIDE_PUBSUB_STOCK_SUBSCRIPTION"`
	PayoutTopic        string `envconfig:"DROPTIDE_PUBSUB_PAYOUT_TOPIC" default:"dt-payout-events"`
	PayoutSubscription string `envconfig:"DROPTIDE_PUBSUB_PAYOUT_SUBSCRIPTION"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DROPTIDE_AUTO_MIGRATE" default:"false"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DROPTIDE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DROPTIDE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DROPTIDE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
