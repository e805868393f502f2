package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearSyndicateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SYNDICATE_HTTP_ADDR", "SYNDICATE_ADMIN_TOKEN", "SYNDICATE_SEED", "SYNDICATE_ROSTER_PATH",
		"SYNDICATE_CAMPAIGN_DAY_EVERY", "SYNDICATE_DB_DIALECT", "SYNDICATE_DB_SQLITE_PATH",
		"SYNDICATE_DB_POSTGRES_DSN", "DATABASE_URL", "SYNDICATE_EXPORT_BUCKET", "SYNDICATE_EXPORT_ENDPOINT",
		"SYNDICATE_EXPORT_REGION", "SYNDICATE_EXPORT_ACCESS_KEY_ID", "SYNDICATE_EXPORT_SECRET_ACCESS_KEY",
		"SYNDICATE_EXPORT_PREFIX", "SYNDICATE_EXPORT_EVERY", "SYNDICATE_OTEL_ENDPOINT", "SYNDICATE_OTEL_ENABLED",
	} {
		// Setenv registers the restore; the variable itself must be absent.
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearSyndicateEnv(t)

	cfg, err := loadConfig(nil)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.AdminToken != "DEV" || cfg.Seed != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DB.SQLitePath != "tmp/syndicate.sqlite" || cfg.DB.Dialect != "" {
		t.Fatalf("unexpected db defaults: %+v", cfg.DB)
	}
	if cfg.Export.Region != "auto" || cfg.Export.Prefix != "saves" || cfg.Export.Enabled() {
		t.Fatalf("unexpected export defaults: %+v", cfg.Export)
	}
	if cfg.CampaignDayEvery != 0 || !cfg.OTel.Enabled {
		t.Fatalf("unexpected schedule/otel defaults: %+v", cfg)
	}
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	clearSyndicateEnv(t)
	t.Setenv("SYNDICATE_HTTP_ADDR", ":9090")
	t.Setenv("SYNDICATE_SEED", "12")
	t.Setenv("SYNDICATE_DB_DIALECT", "sqlite")
	t.Setenv("SYNDICATE_CAMPAIGN_DAY_EVERY", "90s")
	t.Setenv("SYNDICATE_EXPORT_BUCKET", "syndicate-saves")
	t.Setenv("SYNDICATE_OTEL_ENABLED", "false")

	cfg, err := loadConfig([]string{"-seed", "99"})
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.Seed != 99 {
		t.Fatalf("flag should override env seed, got %d", cfg.Seed)
	}
	if cfg.DB.Dialect != "sqlite" || cfg.CampaignDayEvery != 90*time.Second {
		t.Fatalf("unexpected parsed env: %+v", cfg)
	}
	if !cfg.Export.Enabled() || cfg.OTel.Enabled {
		t.Fatalf("unexpected export/otel: %+v %+v", cfg.Export, cfg.OTel)
	}

	cfg, err = loadConfig([]string{"-http-addr", "127.0.0.1:7000"})
	if err != nil || cfg.HTTPAddr != "127.0.0.1:7000" {
		t.Fatalf("http-addr flag: %q err=%v", cfg.HTTPAddr, err)
	}
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	clearSyndicateEnv(t)
	t.Setenv("SYNDICATE_SEED", "lots")
	if _, err := loadConfig(nil); err == nil {
		t.Fatalf("expected parse error for non-numeric seed")
	}

	clearSyndicateEnv(t)
	t.Setenv("SYNDICATE_EXPORT_EVERY", "-1m")
	if _, err := loadConfig(nil); err == nil {
		t.Fatalf("expected error for negative interval")
	}

	clearSyndicateEnv(t)
	if _, err := loadConfig([]string{"-unknown"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestDBConfigConnection(t *testing.T) {
	tests := []struct {
		cfg     DBConfig
		dialect DBDialect
		driver  string
		dsn     string
	}{
		{DBConfig{}, dialectMemory, "", ""},
		{DBConfig{Dialect: " Memory "}, dialectMemory, "", ""},
		{DBConfig{Dialect: "sqlite", SQLitePath: "data/x.sqlite"}, dialectSQLite, "sqlite", "data/x.sqlite"},
		{DBConfig{Dialect: "SQLITE"}, dialectSQLite, "sqlite", filepath.Join("tmp", "syndicate.sqlite")},
		{DBConfig{Dialect: "postgres", PostgresDSN: "postgres://a", DatabaseURL: "postgres://b"}, dialectPostgres, "pgx", "postgres://a"},
		{DBConfig{Dialect: "postgres", DatabaseURL: " postgres://b "}, dialectPostgres, "pgx", "postgres://b"},
	}
	for _, tc := range tests {
		conn, err := tc.cfg.connection()
		if err != nil {
			t.Fatalf("connection(%+v) error: %v", tc.cfg, err)
		}
		if conn.dialect != tc.dialect || conn.driver != tc.driver || conn.dsn != tc.dsn {
			t.Fatalf("connection(%+v) = %+v", tc.cfg, conn)
		}
	}

	if _, err := (DBConfig{Dialect: "postgres"}).connection(); err == nil {
		t.Fatalf("postgres without a DSN should fail")
	}
	if _, err := (DBConfig{Dialect: "mysql"}).connection(); err == nil {
		t.Fatalf("unknown dialect should fail")
	}
}
