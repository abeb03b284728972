package db

import (
	"fmt"
	"os"
	"strings"
	"time"

	"app/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect はPostgresへ接続し、コネクションプールを設定して返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn(cfg)), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gdb, nil
}

// DATABASE_URLが最優先。無ければPOSTGRES_*から組み立てる。
func dsn(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}

	params := []struct{ key, env, def string }{
		{"host", "POSTGRES_HOST", "localhost"},
		{"port", "POSTGRES_PORT", "5432"},
		{"user", "POSTGRES_USER", "postgres"},
		{"password", "POSTGRES_PASSWORD", "postgres"},
		{"dbname", "POSTGRES_DB", "app"},
		{"sslmode", "POSTGRES_SSLMODE", "disable"},
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		v := os.Getenv(p.env)
		if v == "" {
			v = p.def
		}
		parts = append(parts, fmt.Sprintf("%s=%s", p.key, v))
	}
	return strings.Join(parts, " ")
}
