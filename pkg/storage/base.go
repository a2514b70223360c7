// Package storage provides the persistence interface for pipeline output.
//
// A Store keeps, per unit of work (one source video), the merged
// observation list, the final activity cards and the inference call log.
// A stored observation list is the pipeline's cache: loading it is
// equivalent to recomputing it.
package storage

import (
	"context"
	"errors"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/llm"
)

// ErrNotFound is returned when nothing is stored for a unit.
var ErrNotFound = errors.New("storage: not found")

// Store defines the interface for persistence backends.
//
// All implementations (file, SQLite, PostgreSQL, MySQL) must implement this interface.
type Store interface {
	// SaveObservations replaces the observation list stored for unit.
	SaveObservations(ctx context.Context, unit string, observations []activity.Observation) error

	// LoadObservations returns the observation list stored for unit in the
	// order it was saved, or ErrNotFound.
	LoadObservations(ctx context.Context, unit string) ([]activity.Observation, error)

	// SaveCards replaces the cards stored for unit.
	SaveCards(ctx context.Context, unit string, cards []activity.Card) error

	// LoadCards returns the cards stored for unit in timeline order, or ErrNotFound.
	LoadCards(ctx context.Context, unit string) ([]activity.Card, error)

	// SaveCalls replaces the call log of unit with the calls of its
	// latest run.
	SaveCalls(ctx context.Context, unit string, calls []llm.CallRecord) error

	// LoadCalls returns the call log of unit, oldest first.
	LoadCalls(ctx context.Context, unit string) ([]llm.CallRecord, error)

	// Close closes the store and releases resources.
	Close() error
}
