package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/jewelry-miniapp/pkg/enums"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Catalog  CatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.Driver == enums.StorageDriverRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("%s or %s is required when storage driver is redis", EnvRedisURL, EnvRedisAddr)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"JEWELRY_APP_ENV" default:"dev"`
	Port         string `envconfig:"JEWELRY_APP_PORT" default:"8090"`
	LogLevel     string `envconfig:"JEWELRY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JEWELRY_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"JEWELRY_CORS_ORIGINS" default:"https://web.telegram.org,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the client at the storefront REST backend.
type APIConfig struct {
	BaseURL        string        `envconfig:"JEWELRY_API_URL" default:"http://localhost:8000/api"`
	Timeout        time.Duration `envconfig:"JEWELRY_API_TIMEOUT" default:"10s"`
	TelegramInit   string        `envconfig:"JEWELRY_TELEGRAM_INIT_DATA"`
	TelegramStrict bool          `envconfig:"JEWELRY_TELEGRAM_REQUIRE_INIT_DATA" default:"false"`
	// TelegramBotToken enables init data signature checks on the bridge when set.
	TelegramBotToken string `envconfig:"JEWELRY_TELEGRAM_BOT_TOKEN"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(a.BaseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute url, got %q", EnvAPIURL, a.BaseURL)
	}
	if a.TelegramStrict && strings.TrimSpace(a.TelegramInit) == "" {
		return fmt.Errorf("%s is required when %s is set", EnvTelegramInitData, EnvTelegramRequireInit)
	}
	return nil
}

type StorageConfig struct {
	Driver      enums.StorageDriver `envconfig:"JEWELRY_STORAGE_DRIVER" default:"sqlite"`
	SQLitePath  string              `envconfig:"JEWELRY_SQLITE_PATH" default:"jewelry-miniapp.db"`
	DSN         string              `envconfig:"JEWELRY_DB_DSN"`
	AutoMigrate bool                `envconfig:"JEWELRY_AUTO_MIGRATE" default:"true"`

	MaxOpenConns    int           `envconfig:"JEWELRY_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"JEWELRY_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"JEWELRY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JEWELRY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQL reports whether the driver is served by gorm.
func (s StorageConfig) IsSQL() bool {
	return s.Driver == enums.StorageDriverSQLite || s.Driver == enums.StorageDriverPostgres
}

func (s StorageConfig) validate() error {
	if !s.Driver.IsValid() {
		return fmt.Errorf("%s: unsupported driver %q", EnvStorageDriver, s.Driver)
	}
	if s.Driver == enums.StorageDriverPostgres && strings.TrimSpace(s.DSN) == "" {
		return fmt.Errorf("%s is required when storage driver is postgres", EnvDBDSN)
	}
	if s.Driver == enums.StorageDriverSQLite && strings.TrimSpace(s.SQLitePath) == "" {
		return fmt.Errorf("%s is required when storage driver is sqlite", EnvSQLitePath)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"JEWELRY_REDIS_URL"`
	Address      string        `envconfig:"JEWELRY_REDIS_ADDR"`
	Password     string        `envconfig:"JEWELRY_REDIS_PASSWORD"`
	DB           int           `envconfig:"JEWELRY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JEWELRY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JEWELRY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JEWELRY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JEWELRY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JEWELRY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type CartConfig struct {
	ReconcilePolicy enums.ReconcilePolicy `envconfig:"JEWELRY_CART_RECONCILE_POLICY" default:"sequence"`
	SyncTimeout     time.Duration         `envconfig:"JEWELRY_CART_SYNC_TIMEOUT" default:"15s"`
}

func (c CartConfig) validate() error {
	if !c.ReconcilePolicy.IsValid() {
		return fmt.Errorf("%s: unsupported policy %q", EnvCartReconcilePolicy, c.ReconcilePolicy)
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvCartSyncTimeout)
	}
	return nil
}

// CheckoutConfig carries the delivery pricing rules shown on the checkout page.
type CheckoutConfig struct {
	FreeDeliveryThreshold decimal.Decimal `envconfig:"JEWELRY_CHECKOUT_FREE_DELIVERY_FROM" default:"500000"`
	DeliveryFee           decimal.Decimal `envconfig:"JEWELRY_CHECKOUT_DELIVERY_FEE" default:"30000"`
	MinPhoneDigits        int             `envconfig:"JEWELRY_CHECKOUT_MIN_PHONE_DIGITS" default:"9"`
}

func (c CheckoutConfig) validate() error {
	if c.DeliveryFee.IsNegative() || c.FreeDeliveryThreshold.IsNegative() {
		return fmt.Errorf("checkout delivery amounts must be non-negative")
	}
	if c.MinPhoneDigits <= 0 {
		return fmt.Errorf("%s must be positive", EnvCheckoutMinPhoneDigits)
	}
	return nil
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"JEWELRY_CATALOG_CACHE_TTL" default:"5m"`
}
