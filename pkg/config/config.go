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
	DB       DBConfig
	Redis    RedisConfig
	Session  SessionConfig
	Shipping ShippingConfig
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
	Env          string   `envconfig:"SHOPTOOLS_APP_ENV" required:"true"`
	Port         string   `envconfig:"SHOPTOOLS_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"SHOPTOOLS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"SHOPTOOLS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"SHOPTOOLS_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPTOOLS_DB_DSN"`
	Driver string `envconfig:"SHOPTOOLS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SHOPTOOLS_DB_HOST"`
	Port     int    `envconfig:"SHOPTOOLS_DB_PORT" default:"5432"`
	User     string `envconfig:"SHOPTOOLS_DB_USER"`
	Password string `envconfig:"SHOPTOOLS_DB_PASSWORD"`
	Name     string `envconfig:"SHOPTOOLS_DB_NAME"`
	SSLMode  string `envconfig:"SHOPTOOLS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPTOOLS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPTOOLS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPTOOLS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPTOOLS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"SHOPTOOLS_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPTOOLS_REDIS_URL"`
	Address      string        `envconfig:"SHOPTOOLS_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPTOOLS_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPTOOLS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPTOOLS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPTOOLS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPTOOLS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPTOOLS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPTOOLS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig controls session cart persistence.
type SessionConfig struct {
	CartTTL time.Duration `envconfig:"SHOPTOOLS_SESSION_CART_TTL" default:"336h"`
}

// ShippingConfig feeds the reference flat-rate shipping module.
type ShippingConfig struct {
	BaseRate      string   `envconfig:"SHOPTOOLS_SHIPPING_BASE_RATE" default:"5.00"`
	PerItemRate   string   `envconfig:"SHOPTOOLS_SHIPPING_PER_ITEM_RATE" default:"0.00"`
	FreeThreshold string   `envconfig:"SHOPTOOLS_SHIPPING_FREE_THRESHOLD" default:""`
	Regions       []string `envconfig:"SHOPTOOLS_SHIPPING_REGIONS" default:"domestic,international"`
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
	for _, env := range componentDBEnvVars {
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
