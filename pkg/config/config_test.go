package config

import (
	"os"
	"testing"
	"time"

	"github.com/angelmondragon/jewelry-miniapp/pkg/enums"
	"github.com/shopspring/decimal"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000/api" {
		t.Fatalf("unexpected default api url %q", cfg.API.BaseURL)
	}
	if cfg.Storage.Driver != enums.StorageDriverSQLite {
		t.Fatalf("expected sqlite default, got %q", cfg.Storage.Driver)
	}
	if cfg.Cart.ReconcilePolicy != enums.ReconcileSequence {
		t.Fatalf("expected sequence policy, got %q", cfg.Cart.ReconcilePolicy)
	}
	if !cfg.Checkout.DeliveryFee.Equal(mustDecimal(t, "30000")) {
		t.Fatalf("unexpected delivery fee %s", cfg.Checkout.DeliveryFee)
	}
	if !cfg.Checkout.FreeDeliveryThreshold.Equal(mustDecimal(t, "500000")) {
		t.Fatalf("unexpected free delivery threshold %s", cfg.Checkout.FreeDeliveryThreshold)
	}
	if cfg.Checkout.MinPhoneDigits != 9 {
		t.Fatalf("expected 9 phone digits, got %d", cfg.Checkout.MinPhoneDigits)
	}
	if cfg.Catalog.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected cache ttl %v", cfg.Catalog.CacheTTL)
	}
	if len(cfg.App.CORSOrigins) != 2 || cfg.App.CORSOrigins[0] != "https://web.telegram.org" {
		t.Fatalf("unexpected cors origins %v", cfg.App.CORSOrigins)
	}
	if cfg.API.TelegramBotToken != "" {
		t.Fatalf("expected no bot token by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvAPIURL, "https://shop.example.uz/api")
	t.Setenv(EnvStorageDriver, "redis")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/1")
	t.Setenv(EnvCartReconcilePolicy, "last_response")
	t.Setenv(EnvCartSyncTimeout, "3s")
	t.Setenv(EnvCORSOrigins, "https://shop.example.uz")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.App.IsProd() {
		t.Fatalf("expected prod env")
	}
	if cfg.Storage.Driver != enums.StorageDriverRedis || !cfg.Redis.Enabled() {
		t.Fatalf("expected redis storage, got %q", cfg.Storage.Driver)
	}
	if cfg.Cart.ReconcilePolicy != enums.ReconcileLastResponse {
		t.Fatalf("unexpected policy %q", cfg.Cart.ReconcilePolicy)
	}
	if cfg.Cart.SyncTimeout != 3*time.Second {
		t.Fatalf("unexpected sync timeout %v", cfg.Cart.SyncTimeout)
	}
	if len(cfg.App.CORSOrigins) != 1 || cfg.App.CORSOrigins[0] != "https://shop.example.uz" {
		t.Fatalf("unexpected cors origins %v", cfg.App.CORSOrigins)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"relative api url":      {EnvAPIURL: "/api"},
		"unknown driver":        {EnvStorageDriver: "etcd"},
		"postgres without dsn":  {EnvStorageDriver: "postgres"},
		"redis without address": {EnvStorageDriver: "redis"},
		"unknown policy":        {EnvCartReconcilePolicy: "merge"},
		"strict init data":      {EnvTelegramRequireInit: "true"},
		"zero phone digits":     {EnvCheckoutMinPhoneDigits: "0"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range vars {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvAppEnv, EnvPort, EnvLogLevel, EnvAPIURL, EnvAPITimeout, EnvTelegramInitData, EnvTelegramRequireInit,
		EnvStorageDriver, EnvSQLitePath, EnvDBDSN, EnvAutoMigrate, EnvRedisURL, EnvRedisAddr,
		EnvCartReconcilePolicy, EnvCartSyncTimeout, EnvCheckoutFreeFrom, EnvCheckoutDeliveryFee,
		EnvCheckoutMinPhoneDigits, EnvCatalogCacheTTL, EnvTelegramBotToken, EnvCORSOrigins,
	} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}
