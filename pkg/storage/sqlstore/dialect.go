package sqlstore

import (
	"fmt"
	"strings"
)

// Dialect describes the SQL differences between backends.
type Dialect struct {
	// Name is the database/sql driver name.
	Name string

	// Numbered selects $1, $2, ... placeholders instead of ?.
	Numbered bool

	// Schema returns the DDL statements creating the tables for prefix.
	Schema func(prefix string) []string
}

// Rebind rewrites ? placeholders into the dialect's placeholder style.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Table names for prefix.
func observationsTable(prefix string) string { return prefix + "observations" }
func cardsTable(prefix string) string        { return prefix + "cards" }
func callsTable(prefix string) string        { return prefix + "llm_calls" }

// SQLite is the dialect of github.com/mattn/go-sqlite3.
var SQLite = Dialect{
	Name: "sqlite3",
	Schema: func(prefix string) []string {
		return []string{
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id INTEGER PRIMARY KEY,
					unit TEXT NOT NULL,
					seq INTEGER NOT NULL,
					start_ts INTEGER NOT NULL,
					end_ts INTEGER NOT NULL,
					observation TEXT NOT NULL,
					metadata TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`, observationsTable(prefix)),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_unit ON %s(unit, seq)`,
				observationsTable(prefix), observationsTable(prefix)),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id INTEGER PRIMARY KEY,
					unit TEXT NOT NULL,
					seq INTEGER NOT NULL,
					start_time TEXT NOT NULL,
					end_time TEXT NOT NULL,
					category TEXT NOT NULL,
					title TEXT NOT NULL,
					summary TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`, cardsTable(prefix)),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_unit ON %s(unit, seq)`,
				cardsTable(prefix), cardsTable(prefix)),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id INTEGER PRIMARY KEY,
					unit TEXT NOT NULL,
					called_at DATETIME NOT NULL,
					latency REAL NOT NULL,
					input TEXT,
					output TEXT,
					model TEXT,
					error TEXT
				)`, callsTable(prefix)),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_unit ON %s(unit, id)`,
				callsTable(prefix), callsTable(prefix)),
		}
	},
}

// Postgres is the dialect of github.com/lib/pq.
var Postgres = Dialect{
	Name:     "postgres",
	Numbered: true,
	Schema: func(prefix string) []string {
		return []string{
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id BIGINT PRIMARY KEY,
					unit VARCHAR(255) NOT NULL,
					seq INTEGER NOT NULL,
					start_ts BIGINT NOT NULL,
					end_ts BIGINT NOT NULL,
					observation TEXT NOT NULL,
					metadata JSONB,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				)`, observationsTable(prefix)),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_unit ON %s(unit, seq)`,
				observationsTable(prefix), observationsTable(prefix)),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id BIGINT PRIMARY KEY,
					unit VARCHAR(255) NOT NULL,
					seq INTEGER NOT NULL,
					start_time VARCHAR(32) NOT NULL,
					end_time VARCHAR(32) NOT NULL,
					category VARCHAR(64) NOT NULL,
					title TEXT NOT NULL,
					summary TEXT NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				)`, cardsTable(prefix)),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_unit ON %s(unit, seq)`,
				cardsTable(prefix), cardsTable(prefix)),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id BIGINT PRIMARY KEY,
					unit VARCHAR(255) NOT NULL,
					called_at TIMESTAMPTZ NOT NULL,
					latency DOUBLE PRECISION NOT NULL,
					input TEXT,
					output TEXT,
					model VARCHAR(255),
					error TEXT
				)`, callsTable(prefix)),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_unit ON %s(unit, id)`,
				callsTable(prefix), callsTable(prefix)),
		}
	},
}

// MySQL is the dialect of github.com/go-sql-driver/mysql, also used for OceanBase.
var MySQL = Dialect{
	Name: "mysql",
	Schema: func(prefix string) []string {
		return []string{
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id BIGINT PRIMARY KEY,
					unit VARCHAR(255) NOT NULL,
					seq INT NOT NULL,
					start_ts BIGINT NOT NULL,
					end_ts BIGINT NOT NULL,
					observation LONGTEXT NOT NULL,
					metadata JSON,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					INDEX idx_unit (unit, seq)
				)`, observationsTable(prefix)),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id BIGINT PRIMARY KEY,
					unit VARCHAR(255) NOT NULL,
					seq INT NOT NULL,
					start_time VARCHAR(32) NOT NULL,
					end_time VARCHAR(32) NOT NULL,
					category VARCHAR(64) NOT NULL,
					title TEXT NOT NULL,
					summary LONGTEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					INDEX idx_unit (unit, seq)
				)`, cardsTable(prefix)),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id BIGINT PRIMARY KEY,
					unit VARCHAR(255) NOT NULL,
					called_at DATETIME(6) NOT NULL,
					latency DOUBLE NOT NULL,
					input LONGTEXT,
					output LONGTEXT,
					model VARCHAR(255),
					error TEXT,
					INDEX idx_unit (unit, id)
				)`, callsTable(prefix)),
		}
	},
}
