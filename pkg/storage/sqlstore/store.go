// Package sqlstore implements storage.Store on top of database/sql.
//
// The SQLite, PostgreSQL and MySQL backends share this implementation and
// differ only by Dialect. Rows are keyed by snowflake IDs; saving a unit's
// observations or cards replaces its previous rows in one transaction.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/snowflake"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/llm"
	"github.com/dayflow/dayflow-go/pkg/storage"
)

// DefaultTablePrefix prefixes every table name.
const DefaultTablePrefix = "dayflow_"

// Store implements storage.Store using a SQL database.
type Store struct {
	// db is the database connection.
	db *sql.DB

	// dialect selects placeholders and DDL.
	dialect Dialect

	// prefix is prepended to table names.
	prefix string

	// node generates row IDs.
	node *snowflake.Node
}

var _ storage.Store = (*Store)(nil)

// New creates a Store on an open database and initializes its tables.
//
// Parameters:
//   - ctx: Context for schema creation
//   - db: Open database handle (owned by the Store afterwards)
//   - dialect: SQL dialect of db
//   - prefix: Table name prefix (DefaultTablePrefix if empty)
func New(ctx context.Context, db *sql.DB, dialect Dialect, prefix string) (*Store, error) {
	if prefix == "" {
		prefix = DefaultTablePrefix
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: create snowflake node: %w", err)
	}

	s := &Store{
		db:      db,
		dialect: dialect,
		prefix:  prefix,
		node:    node,
	}
	if err := s.initTables(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Open opens dsn with the dialect's driver, checks the connection and
// creates the Store.
func Open(ctx context.Context, dialect Dialect, dsn, prefix string) (*Store, error) {
	db, err := sql.Open(dialect.Name, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dialect.Name, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: ping %s: %w", dialect.Name, err)
	}

	s, err := New(ctx, db, dialect, prefix)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// initTables creates the tables and indexes if they do not exist.
func (s *Store) initTables(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema(s.prefix) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initTables: %w", err)
		}
	}
	return nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveObservations replaces the observations stored for unit.
func (s *Store) SaveObservations(ctx context.Context, unit string, observations []activity.Observation) error {
	table := observationsTable(s.prefix)
	insert := s.dialect.Rebind(fmt.Sprintf(`
		INSERT INTO %s (id, unit, seq, start_ts, end_ts, observation, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, table))

	return s.replace(ctx, table, unit, func(tx *sql.Tx) error {
		for i, obs := range observations {
			metadata, err := json.Marshal(obs.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata: %w", err)
			}
			if _, err := tx.ExecContext(ctx, insert,
				s.node.Generate().Int64(), unit, i, obs.StartTS, obs.EndTS, obs.Observation, string(metadata),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadObservations returns the observations stored for unit.
func (s *Store) LoadObservations(ctx context.Context, unit string) ([]activity.Observation, error) {
	query := s.dialect.Rebind(fmt.Sprintf(`
		SELECT start_ts, end_ts, observation, metadata
		FROM %s
		WHERE unit = ?
		ORDER BY seq`, observationsTable(s.prefix)))

	rows, err := s.db.QueryContext(ctx, query, unit)
	if err != nil {
		return nil, fmt.Errorf("LoadObservations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var observations []activity.Observation
	for rows.Next() {
		var obs activity.Observation
		var metadata sql.NullString
		if err := rows.Scan(&obs.StartTS, &obs.EndTS, &obs.Observation, &metadata); err != nil {
			return nil, fmt.Errorf("LoadObservations: %w", err)
		}
		if metadata.Valid && metadata.String != "" && metadata.String != "null" {
			if err := json.Unmarshal([]byte(metadata.String), &obs.Metadata); err != nil {
				return nil, fmt.Errorf("LoadObservations: metadata: %w", err)
			}
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadObservations: %w", err)
	}

	if len(observations) == 0 {
		return nil, storage.ErrNotFound
	}
	return observations, nil
}

// SaveCards replaces the cards stored for unit.
func (s *Store) SaveCards(ctx context.Context, unit string, cards []activity.Card) error {
	table := cardsTable(s.prefix)
	insert := s.dialect.Rebind(fmt.Sprintf(`
		INSERT INTO %s (id, unit, seq, start_time, end_time, category, title, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table))

	return s.replace(ctx, table, unit, func(tx *sql.Tx) error {
		for i, card := range cards {
			if _, err := tx.ExecContext(ctx, insert,
				s.node.Generate().Int64(), unit, i, card.StartTime, card.EndTime, card.Category, card.Title, card.Summary,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadCards returns the cards stored for unit.
func (s *Store) LoadCards(ctx context.Context, unit string) ([]activity.Card, error) {
	query := s.dialect.Rebind(fmt.Sprintf(`
		SELECT start_time, end_time, category, title, summary
		FROM %s
		WHERE unit = ?
		ORDER BY seq`, cardsTable(s.prefix)))

	rows, err := s.db.QueryContext(ctx, query, unit)
	if err != nil {
		return nil, fmt.Errorf("LoadCards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []activity.Card
	for rows.Next() {
		var card activity.Card
		if err := rows.Scan(&card.StartTime, &card.EndTime, &card.Category, &card.Title, &card.Summary); err != nil {
			return nil, fmt.Errorf("LoadCards: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadCards: %w", err)
	}

	if len(cards) == 0 {
		return nil, storage.ErrNotFound
	}
	return cards, nil
}

// SaveCalls replaces the call log of unit.
func (s *Store) SaveCalls(ctx context.Context, unit string, calls []llm.CallRecord) error {
	table := callsTable(s.prefix)
	insert := s.dialect.Rebind(fmt.Sprintf(`
		INSERT INTO %s (id, unit, called_at, latency, input, output, model, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table))

	return s.replace(ctx, table, unit, func(tx *sql.Tx) error {
		for _, call := range calls {
			if _, err := tx.ExecContext(ctx, insert,
				s.node.Generate().Int64(), unit, call.Timestamp.UTC(), call.Latency, call.Input, call.Output, call.Model, call.Error,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadCalls returns the call log of unit, oldest first.
func (s *Store) LoadCalls(ctx context.Context, unit string) ([]llm.CallRecord, error) {
	query := s.dialect.Rebind(fmt.Sprintf(`
		SELECT called_at, latency, input, output, model, error
		FROM %s
		WHERE unit = ?
		ORDER BY id`, callsTable(s.prefix)))

	rows, err := s.db.QueryContext(ctx, query, unit)
	if err != nil {
		return nil, fmt.Errorf("LoadCalls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	calls := []llm.CallRecord{}
	for rows.Next() {
		var call llm.CallRecord
		var input, output, model, callErr sql.NullString
		if err := rows.Scan(&call.Timestamp, &call.Latency, &input, &output, &model, &callErr); err != nil {
			return nil, fmt.Errorf("LoadCalls: %w", err)
		}
		call.Input = input.String
		call.Output = output.String
		call.Model = model.String
		call.Error = callErr.String
		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadCalls: %w", err)
	}
	return calls, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// replace deletes the rows of unit in table and runs insert in the same transaction.
func (s *Store) replace(ctx context.Context, table, unit string, insert func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	del := s.dialect.Rebind(fmt.Sprintf("DELETE FROM %s WHERE unit = ?", table))
	if _, err := tx.ExecContext(ctx, del, unit); err != nil {
		return fmt.Errorf("replace %s: %w", table, err)
	}

	if err := insert(tx); err != nil {
		return fmt.Errorf("replace %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace %s: %w", table, err)
	}
	return nil
}
