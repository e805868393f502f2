package main

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr         string        `env:"SYNDICATE_HTTP_ADDR" envDefault:":8080"`
	AdminToken       string        `env:"SYNDICATE_ADMIN_TOKEN" envDefault:"DEV"`
	Seed             int64         `env:"SYNDICATE_SEED"`
	RosterPath       string        `env:"SYNDICATE_ROSTER_PATH"`
	CampaignDayEvery time.Duration `env:"SYNDICATE_CAMPAIGN_DAY_EVERY" envDefault:"0s"`

	DB     DBConfig
	Export ExportConfig
	OTel   OTelConfig
}

type DBConfig struct {
	Dialect     string `env:"SYNDICATE_DB_DIALECT"`
	SQLitePath  string `env:"SYNDICATE_DB_SQLITE_PATH" envDefault:"tmp/syndicate.sqlite"`
	PostgresDSN string `env:"SYNDICATE_DB_POSTGRES_DSN"`
	DatabaseURL string `env:"DATABASE_URL"`
}

type DBDialect string

const (
	dialectMemory   DBDialect = "memory"
	dialectSQLite   DBDialect = "sqlite"
	dialectPostgres DBDialect = "postgres"
)

type dbConnection struct {
	dialect DBDialect
	driver  string
	dsn     string
}

// connection picks the database/sql driver and DSN for the configured
// dialect. An empty dialect means memory, which has no driver.
func (c DBConfig) connection() (dbConnection, error) {
	raw := strings.ToLower(strings.TrimSpace(c.Dialect))
	switch DBDialect(raw) {
	case "", dialectMemory:
		return dbConnection{dialect: dialectMemory}, nil
	case dialectSQLite:
		dsn := strings.TrimSpace(c.SQLitePath)
		if dsn == "" {
			dsn = filepath.Join("tmp", "syndicate.sqlite")
		}
		return dbConnection{dialect: dialectSQLite, driver: "sqlite", dsn: dsn}, nil
	case dialectPostgres:
		dsn := cmp.Or(strings.TrimSpace(c.PostgresDSN), strings.TrimSpace(c.DatabaseURL))
		if dsn == "" {
			return dbConnection{}, errors.New("SYNDICATE_DB_DIALECT=postgres requires SYNDICATE_DB_POSTGRES_DSN or DATABASE_URL")
		}
		return dbConnection{dialect: dialectPostgres, driver: "pgx", dsn: dsn}, nil
	default:
		return dbConnection{}, fmt.Errorf("unsupported SYNDICATE_DB_DIALECT %q", raw)
	}
}

// ExportConfig points at an S3-compatible bucket (R2, S3, MinIO). An empty
// bucket disables exports.
type ExportConfig struct {
	Bucket          string        `env:"SYNDICATE_EXPORT_BUCKET"`
	Endpoint        string        `env:"SYNDICATE_EXPORT_ENDPOINT"`
	Region          string        `env:"SYNDICATE_EXPORT_REGION" envDefault:"auto"`
	AccessKeyID     string        `env:"SYNDICATE_EXPORT_ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"SYNDICATE_EXPORT_SECRET_ACCESS_KEY"`
	Prefix          string        `env:"SYNDICATE_EXPORT_PREFIX" envDefault:"saves"`
	Every           time.Duration `env:"SYNDICATE_EXPORT_EVERY" envDefault:"0s"`
}

func (c ExportConfig) Enabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

type OTelConfig struct {
	Endpoint string `env:"SYNDICATE_OTEL_ENDPOINT"`
	Enabled  bool   `env:"SYNDICATE_OTEL_ENABLED" envDefault:"true"`
}

// loadConfig reads .env (if present), then the environment, then flags.
// Flags win over the environment.
func loadConfig(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	flags := flag.NewFlagSet("syndicate", flag.ContinueOnError)
	flags.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0 picks one)")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.CampaignDayEvery < 0 || cfg.Export.Every < 0 {
		return Config{}, errors.New("schedule intervals must not be negative")
	}
	return cfg, nil
}
