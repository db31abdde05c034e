package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	redisclient "github.com/lgrosz/climb-catalog/internal/clients/redis"
	"github.com/lgrosz/climb-catalog/internal/data/db"
	"github.com/lgrosz/climb-catalog/internal/observability"
	"github.com/lgrosz/climb-catalog/internal/platform/envutil"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
	"github.com/lgrosz/climb-catalog/internal/platform/neo4jdb"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr    string
	DBDriver    string
	SQLitePath  string
	Postgres    db.PostgresConfig
	JWTSecret   string
	CORSOrigins []string
	Redis       redisclient.Config
	Neo4j       neo4jdb.Config
	Metrics     bool
	Otel        observability.OtelConfig
}

// fileConfig is the optional YAML overlay named by CLIMB_CONFIG_FILE.
// Secrets are env-only.
type fileConfig struct {
	HTTPAddr    string   `yaml:"http_addr"`
	DBDriver    string   `yaml:"db_driver"`
	SQLitePath  string   `yaml:"sqlite_path"`
	CORSOrigins []string `yaml:"cors_origins"`
	Postgres    struct {
		Host               string   `yaml:"host"`
		Port               string   `yaml:"port"`
		User               string   `yaml:"user"`
		Name               string   `yaml:"name"`
		SSLMode            string   `yaml:"sslmode"`
		ReplicaDSNs        []string `yaml:"replica_dsns"`
		MaxOpenConns       int      `yaml:"max_open_conns"`
		StatementTimeoutMS int      `yaml:"statement_timeout_ms"`
	} `yaml:"postgres"`
	Redis struct {
		Addr    string `yaml:"addr"`
		Channel string `yaml:"channel"`
	} `yaml:"redis"`
	Neo4j struct {
		URI      string `yaml:"uri"`
		User     string `yaml:"user"`
		Database string `yaml:"database"`
	} `yaml:"neo4j"`
	Otel struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		Endpoint    string  `yaml:"endpoint"`
		SampleRatio float64 `yaml:"sample_ratio"`
	} `yaml:"otel"`
}

func readFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	path = strings.TrimSpace(path)
	if path == "" {
		return fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

// LoadConfig resolves each key as env, then the YAML overlay, then the default.
func LoadConfig(log *logger.Logger) (Config, error) {
	fc, err := readFileConfig(os.Getenv("CLIMB_CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPAddr:   str("HTTP_ADDR", fc.HTTPAddr, ":8080"),
		DBDriver:   strings.ToLower(str("DB_DRIVER", fc.DBDriver, DriverPostgres)),
		SQLitePath: str("SQLITE_PATH", fc.SQLitePath, "climb-catalog.db"),
		Postgres: db.PostgresConfig{
			DSN:              envutil.String("POSTGRES_DSN", ""),
			Host:             str("POSTGRES_HOST", fc.Postgres.Host, "localhost"),
			Port:             str("POSTGRES_PORT", fc.Postgres.Port, "5432"),
			User:             str("POSTGRES_USER", fc.Postgres.User, "postgres"),
			Password:         envutil.String("POSTGRES_PASSWORD", ""),
			Name:             str("POSTGRES_NAME", fc.Postgres.Name, "climb_catalog"),
			SSLMode:          str("POSTGRES_SSLMODE", fc.Postgres.SSLMode, "disable"),
			ReplicaDSNs:      list("POSTGRES_REPLICA_DSNS", fc.Postgres.ReplicaDSNs),
			MaxOpenConns:     num("DB_MAX_OPEN_CONNS", fc.Postgres.MaxOpenConns, 20),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  30 * time.Minute,
			StatementTimeout: time.Duration(num("DB_STATEMENT_TIMEOUT_MS", fc.Postgres.StatementTimeoutMS, 15000)) * time.Millisecond,
			SlowThreshold:    envutil.Duration("DB_SLOW_QUERY_MS", 200*time.Millisecond),
		},
		JWTSecret:   envutil.String("AUTH_JWT_SECRET", ""),
		CORSOrigins: list("CORS_ORIGINS", fc.CORSOrigins),
		Redis: redisclient.Config{
			Addr:     str("REDIS_ADDR", fc.Redis.Addr, ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  str("REDIS_CHANNEL", fc.Redis.Channel, "climb-catalog.changes"),
		},
		Neo4j: neo4jdb.Config{
			URI:      str("NEO4J_URI", fc.Neo4j.URI, ""),
			User:     str("NEO4J_USER", fc.Neo4j.User, "neo4j"),
			Password: envutil.String("NEO4J_PASSWORD", ""),
			Database: str("NEO4J_DATABASE", fc.Neo4j.Database, ""),
			Timeout:  envutil.Duration("NEO4J_TIMEOUT_MS", 10*time.Second),
			MaxPool:  envutil.Int("NEO4J_MAX_POOL", 50),
		},
		Metrics: observability.Enabled(),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", fc.Otel.Enabled),
			ServiceName: str("OTEL_SERVICE_NAME", fc.Otel.ServiceName, "climb-catalog"),
			Environment: envutil.String("OTEL_ENVIRONMENT", ""),
			Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
			Endpoint:    str("OTEL_EXPORTER_OTLP_ENDPOINT", fc.Otel.Endpoint, ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			SampleRatio: ratio("OTEL_TRACES_SAMPLER_ARG", fc.Otel.SampleRatio),
		},
	}

	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if log != nil {
		log.Info("config loaded",
			"db_driver", cfg.DBDriver,
			"http_addr", cfg.HTTPAddr,
			"replicas", len(cfg.Postgres.ReplicaDSNs),
			"auth", cfg.JWTSecret != "",
			"redis", cfg.Redis.Addr != "",
			"neo4j", cfg.Neo4j.URI != "",
			"metrics", cfg.Metrics,
			"otel", cfg.Otel.Enabled,
		)
	}
	return cfg, nil
}

func str(name, file, def string) string {
	if envutil.IsSet(name) {
		return envutil.String(name, def)
	}
	if v := strings.TrimSpace(file); v != "" {
		return v
	}
	return def
}

func num(name string, file, def int) int {
	if envutil.IsSet(name) {
		return envutil.Int(name, def)
	}
	if file > 0 {
		return file
	}
	return def
}

func list(name string, file []string) []string {
	if envutil.IsSet(name) {
		return envutil.List(name)
	}
	return file
}

func ratio(name string, file float64) float64 {
	if envutil.IsSet(name) {
		if v, err := strconv.ParseFloat(envutil.String(name, ""), 64); err == nil {
			return v
		}
	}
	if file > 0 {
		return file
	}
	return 1
}
