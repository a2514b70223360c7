// Package sqlite provides the SQLite storage backend.
//
// SQLite is a lightweight, file-based database suitable for local runs.
// Metadata is stored as JSON text.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dayflow/dayflow-go/pkg/storage/sqlstore"
)

// Client implements storage.Store using SQLite as the backend.
type Client struct {
	*sqlstore.Store
}

// Config contains configuration for creating a SQLite store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// TablePrefix is prepended to table names (sqlstore.DefaultTablePrefix if empty).
	TablePrefix string
}

// NewClient creates a new SQLite store.
//
// Parameters:
//   - cfg: Configuration containing database path and table prefix
//
// Returns:
//   - *Client: The SQLite client instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	// Create parent directory if it doesn't exist
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	store, err := sqlstore.Open(context.Background(), sqlstore.SQLite,
		cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL", cfg.TablePrefix)
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	return &Client{Store: store}, nil
}
