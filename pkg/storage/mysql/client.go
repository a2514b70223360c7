// Package mysql provides the MySQL storage backend.
// OceanBase in MySQL mode is served by the same backend.
package mysql

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dayflow/dayflow-go/pkg/storage/sqlstore"
)

// Client implements storage.Store using MySQL.
type Client struct {
	*sqlstore.Store
}

// Config contains MySQL configuration.
type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	TablePrefix string
}

// DSN returns the go-sql-driver/mysql connection string for cfg.
func (cfg *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
}

// NewClient creates a new MySQL store.
func NewClient(cfg *Config) (*Client, error) {
	store, err := sqlstore.Open(context.Background(), sqlstore.MySQL, cfg.DSN(), cfg.TablePrefix)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}
	return &Client{Store: store}, nil
}
