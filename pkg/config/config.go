package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "AMGLOW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	OrdersDriverMongo = "mongo"
	OrdersDriverSQL   = "sql"
)

const (
	EnvAppEnv        = "AMGLOW_APP_ENV"
	EnvPort          = "AMGLOW_APP_PORT"
	EnvLogLevel      = "AMGLOW_LOG_LEVEL"
	EnvLogFormat     = "AMGLOW_LOG_FORMAT"
	EnvRedisURL      = "AMGLOW_REDIS_URL"
	EnvRedisAddr     = "AMGLOW_REDIS_ADDR"
	EnvMongoURI      = "AMGLOW_MONGO_URI"
	EnvMongoDatabase = "AMGLOW_MONGO_DATABASE"
	EnvDBDSN         = "AMGLOW_DB_DSN"
	EnvDBHost        = "AMGLOW_DB_HOST"
	EnvDBUser        = "AMGLOW_DB_USER"
	EnvDBName        = "AMGLOW_DB_NAME"
	EnvUseSQLite     = "AMGLOW_USE_SQLITE"
	EnvOrdersDriver  = "AMGLOW_ORDERS_DRIVER"
	EnvCartKey       = "AMGLOW_CART_STORAGE_KEY"
	EnvCartTTL       = "AMGLOW_CART_SNAPSHOT_TTL"
	EnvCORSOrigins   = "AMGLOW_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Mongo        MongoConfig
	FeatureFlags FeatureFlagsConfig
	Orders       OrdersConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	// The product catalog always lives in Mongo, whatever the orders driver.
	if strings.TrimSpace(c.Mongo.URI) == "" {
		return fmt.Errorf("%s is required", EnvMongoURI)
	}
	switch strings.ToLower(strings.TrimSpace(c.Orders.Driver)) {
	case OrdersDriverMongo:
		c.Orders.Driver = OrdersDriverMongo
		return nil
	case OrdersDriverSQL:
		c.Orders.Driver = OrdersDriverSQL
		if c.FeatureFlags.UseSQLite {
			return nil
		}
		return c.DB.ensureDSN()
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvOrdersDriver, OrdersDriverMongo, OrdersDriverSQL, c.Orders.Driver)
	}
}

type AppConfig struct {
	Env          string `envconfig:"AMGLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"AMGLOW_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AMGLOW_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"AMGLOW_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"AMGLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AMGLOW_DB_DSN"`
	Driver string `envconfig:"AMGLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AMGLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"AMGLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AMGLOW_DB_USER"`
	LegacyPassword string `envconfig:"AMGLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"AMGLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"AMGLOW_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"AMGLOW_SQLITE_PATH" default:"file:amglow.db?cache=shared"`

	MaxOpenConns    int           `envconfig:"AMGLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AMGLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AMGLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AMGLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AMGLOW_REDIS_URL"`
	Address      string        `envconfig:"AMGLOW_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"AMGLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"AMGLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AMGLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AMGLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AMGLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AMGLOW_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"AMGLOW_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type MongoConfig struct {
	URI                    string        `envconfig:"AMGLOW_MONGO_URI"`
	Database               string        `envconfig:"AMGLOW_MONGO_DATABASE" default:"amglow"`
	ProductsCollection     string        `envconfig:"AMGLOW_MONGO_PRODUCTS_COLLECTION" default:"products"`
	ConnectTimeout         time.Duration `envconfig:"AMGLOW_MONGO_CONNECT_TIMEOUT" default:"10s"`
	ServerSelectionTimeout time.Duration `envconfig:"AMGLOW_MONGO_SERVER_SELECTION_TIMEOUT" default:"5s"`
	MaxPoolSize            uint64        `envconfig:"AMGLOW_MONGO_MAX_POOL_SIZE" default:"100"`
	MinPoolSize            uint64        `envconfig:"AMGLOW_MONGO_MIN_POOL_SIZE" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AMGLOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AMGLOW_AUTO_MIGRATE" default:"false"`
}

type OrdersConfig struct {
	Driver     string `envconfig:"AMGLOW_ORDERS_DRIVER" default:"mongo"`
	Collection string `envconfig:"AMGLOW_ORDERS_COLLECTION" default:"orders"`
}

type CartConfig struct {
	StorageKey  string        `envconfig:"AMGLOW_CART_STORAGE_KEY" default:"amglow-cart"`
	SnapshotTTL time.Duration `envconfig:"AMGLOW_CART_SNAPSHOT_TTL" default:"720h"`
}

type CheckoutConfig struct {
	ConfirmationRoute string        `envconfig:"AMGLOW_CHECKOUT_CONFIRMATION_ROUTE" default:"/order-confirmation"`
	ProcessingTTL     time.Duration `envconfig:"AMGLOW_CHECKOUT_PROCESSING_TTL" default:"30s"`
	IdempotencyTTL    time.Duration `envconfig:"AMGLOW_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"AMGLOW_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
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
