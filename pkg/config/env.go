package config

const (
	EnvPrefix = "JEWELRY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "JEWELRY_APP_ENV"
	EnvPort                   = "JEWELRY_APP_PORT"
	EnvLogLevel               = "JEWELRY_LOG_LEVEL"
	EnvAPIURL                 = "JEWELRY_API_URL"
	EnvAPITimeout             = "JEWELRY_API_TIMEOUT"
	EnvTelegramInitData       = "JEWELRY_TELEGRAM_INIT_DATA"
	EnvTelegramRequireInit    = "JEWELRY_TELEGRAM_REQUIRE_INIT_DATA"
	EnvTelegramBotToken       = "JEWELRY_TELEGRAM_BOT_TOKEN"
	EnvCORSOrigins            = "JEWELRY_CORS_ORIGINS"
	EnvStorageDriver          = "JEWELRY_STORAGE_DRIVER"
	EnvSQLitePath             = "JEWELRY_SQLITE_PATH"
	EnvDBDSN                  = "JEWELRY_DB_DSN"
	EnvAutoMigrate            = "JEWELRY_AUTO_MIGRATE"
	EnvRedisURL               = "JEWELRY_REDIS_URL"
	EnvRedisAddr              = "JEWELRY_REDIS_ADDR"
	EnvCartReconcilePolicy    = "JEWELRY_CART_RECONCILE_POLICY"
	EnvCartSyncTimeout        = "JEWELRY_CART_SYNC_TIMEOUT"
	EnvCheckoutFreeFrom       = "JEWELRY_CHECKOUT_FREE_DELIVERY_FROM"
	EnvCheckoutDeliveryFee    = "JEWELRY_CHECKOUT_DELIVERY_FEE"
	EnvCheckoutMinPhoneDigits = "JEWELRY_CHECKOUT_MIN_PHONE_DIGITS"
	EnvCatalogCacheTTL        = "JEWELRY_CATALOG_CACHE_TTL"
)
