package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

type PostgresConfig struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// ReplicaDSNs receive reads issued with dbresolver.Read.
	ReplicaDSNs []string

	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	StatementTimeout time.Duration
	SlowThreshold    time.Duration
}

func (c PostgresConfig) dsn() string {
	dsn := strings.TrimSpace(c.DSN)
	if dsn == "" {
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			url.QueryEscape(c.User),
			url.QueryEscape(c.Password),
			c.Host,
			c.Port,
			c.Name,
			sslMode,
		)
	}
	return withStatementTimeout(dsn, c.StatementTimeout)
}

func withStatementTimeout(dsn string, timeout time.Duration) string {
	if timeout <= 0 || strings.Contains(dsn, "statement_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.Contains(dsn, "://") {
		return fmt.Sprintf("%s statement_timeout=%d", dsn, timeout.Milliseconds())
	}
	return fmt.Sprintf("%s%sstatement_timeout=%d", dsn, sep, timeout.Milliseconds())
}

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(logg *logger.Logger, cfg PostgresConfig) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")

	db, err := gorm.Open(postgres.Open(cfg.dsn()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   NewGormLogger(logg, cfg.SlowThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if len(cfg.ReplicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.ReplicaDSNs))
		for _, dsn := range cfg.ReplicaDSNs {
			replicas = append(replicas, postgres.Open(withStatementTimeout(dsn, cfg.StatementTimeout)))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas:          replicas,
			Policy:            dbresolver.StrictRoundRobinPolicy(),
			TraceResolverMode: true,
		})); err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
		serviceLog.Info("Registered postgres read replicas", "count", len(replicas))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) Migrate(ctx context.Context) error {
	s.log.Info("Migrating postgres schema...")
	if err := Migrate(ctx, s.db); err != nil {
		s.log.Error("Failed to migrate postgres schema", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) Close() error { return closeGorm(s.db) }
