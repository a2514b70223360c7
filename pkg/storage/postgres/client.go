// Package postgres provides the PostgreSQL storage backend.
package postgres

import (
	"context"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/dayflow/dayflow-go/pkg/storage/sqlstore"
)

// Client implements storage.Store using PostgreSQL.
type Client struct {
	*sqlstore.Store
}

// Config contains PostgreSQL configuration.
type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	TablePrefix string
}

// DSN returns the lib/pq connection string for cfg.
func (cfg *Config) DSN() string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)
}

// NewClient creates a new PostgreSQL store.
func NewClient(cfg *Config) (*Client, error) {
	store, err := sqlstore.Open(context.Background(), sqlstore.Postgres, cfg.DSN(), cfg.TablePrefix)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}
	return &Client{Store: store}, nil
}
