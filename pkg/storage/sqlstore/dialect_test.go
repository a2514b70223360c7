package sqlstore_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayflow/dayflow-go/pkg/storage/sqlstore"
)

func TestRebind(t *testing.T) {
	query := "INSERT INTO t (a, b, c) VALUES (?, ?, ?)"

	assert.Equal(t, query, sqlstore.SQLite.Rebind(query))
	assert.Equal(t, query, sqlstore.MySQL.Rebind(query))
	assert.Equal(t, "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)", sqlstore.Postgres.Rebind(query))
}

func TestSchemaUsesPrefix(t *testing.T) {
	for _, dialect := range []sqlstore.Dialect{sqlstore.SQLite, sqlstore.Postgres, sqlstore.MySQL} {
		t.Run(dialect.Name, func(t *testing.T) {
			statements := dialect.Schema("test_")
			assert.NotEmpty(t, statements)

			joined := strings.Join(statements, "\n")
			assert.Contains(t, joined, "test_observations")
			assert.Contains(t, joined, "test_cards")
			assert.Contains(t, joined, "test_llm_calls")
		})
	}
}
