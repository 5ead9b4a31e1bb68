package config_test

import (
	"testing"
	"time"

	"github.com/iho/bankledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.StorageDriver != config.StoragePostgres || cfg.Notifier != config.NotifierLog {
		t.Fatalf("unexpected driver defaults: storage=%s notifier=%s", cfg.StorageDriver, cfg.Notifier)
	}

	if cfg.LoanLimit != 3 || cfg.LockTimeout != 5*time.Second {
		t.Fatalf("unexpected ledger defaults: limit=%d lock=%s", cfg.LoanLimit, cfg.LockTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("NOTIFIER", "redis")
	t.Setenv("LOAN_LIMIT", "5")
	t.Setenv("LOCK_TIMEOUT", "250ms")
	t.Setenv("NOTIFY_WORKERS", "8")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.StorageDriver != config.StorageMemory || cfg.Notifier != config.NotifierRedis {
		t.Fatalf("expected driver overrides, got storage=%s notifier=%s", cfg.StorageDriver, cfg.Notifier)
	}

	if cfg.LoanLimit != 5 || cfg.LockTimeout != 250*time.Millisecond || cfg.NotifyWorkers != 8 {
		t.Fatalf("expected ledger overrides, got %+v", cfg)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			StorageDriver: config.StorageMemory,
			Notifier:      config.NotifierLog,
			LoanLimit:     3,
			LockTimeout:   time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{"valid", func(c *config.Config) {}, false},
		{"unknown storage", func(c *config.Config) { c.StorageDriver = "sqlite" }, true},
		{"unknown notifier", func(c *config.Config) { c.Notifier = "smtp" }, true},
		{"redis notifier without url", func(c *config.Config) { c.Notifier = config.NotifierRedis }, true},
		{"zero loan limit", func(c *config.Config) { c.LoanLimit = 0 }, true},
		{"zero lock timeout", func(c *config.Config) { c.LockTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
