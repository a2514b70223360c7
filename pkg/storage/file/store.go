// Package file provides a flat-file JSON storage backend.
//
// Each unit gets a directory under the root holding observations.json,
// activity_cards.json and llm_calls.json.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/llm"
	"github.com/dayflow/dayflow-go/pkg/storage"
)

// File names within a unit directory.
const (
	ObservationsFile = "observations.json"
	CardsFile        = "activity_cards.json"
	CallsFile        = "llm_calls.json"
)

// Store implements storage.Store with JSON files.
type Store struct {
	root string

	mu sync.Mutex
}

var _ storage.Store = (*Store)(nil)

// Config contains configuration for the file store.
type Config struct {
	// Dir is the root directory. It is created if missing.
	Dir string
}

// NewStore creates a file store rooted at cfg.Dir.
func NewStore(cfg *Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("file store: directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create %s: %w", cfg.Dir, err)
	}
	return &Store{root: cfg.Dir}, nil
}

// UnitDir returns the directory holding the files of unit.
func (s *Store) UnitDir(unit string) string {
	unit = strings.ReplaceAll(unit, string(filepath.Separator), "_")
	return filepath.Join(s.root, unit)
}

// SaveObservations replaces the observations stored for unit.
func (s *Store) SaveObservations(_ context.Context, unit string, observations []activity.Observation) error {
	if observations == nil {
		observations = []activity.Observation{}
	}
	return s.write(unit, ObservationsFile, observations)
}

// LoadObservations returns the observations stored for unit.
func (s *Store) LoadObservations(_ context.Context, unit string) ([]activity.Observation, error) {
	var observations []activity.Observation
	if err := s.read(unit, ObservationsFile, &observations); err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, storage.ErrNotFound
	}
	return observations, nil
}

// SaveCards replaces the cards stored for unit.
func (s *Store) SaveCards(_ context.Context, unit string, cards []activity.Card) error {
	if cards == nil {
		cards = []activity.Card{}
	}
	return s.write(unit, CardsFile, cards)
}

// LoadCards returns the cards stored for unit.
func (s *Store) LoadCards(_ context.Context, unit string) ([]activity.Card, error) {
	var cards []activity.Card
	if err := s.read(unit, CardsFile, &cards); err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, storage.ErrNotFound
	}
	return cards, nil
}

// SaveCalls replaces the call log of unit.
func (s *Store) SaveCalls(_ context.Context, unit string, calls []llm.CallRecord) error {
	if calls == nil {
		calls = []llm.CallRecord{}
	}
	return s.write(unit, CallsFile, calls)
}

// LoadCalls returns the call log of unit.
func (s *Store) LoadCalls(_ context.Context, unit string) ([]llm.CallRecord, error) {
	calls := []llm.CallRecord{}
	if err := s.read(unit, CallsFile, &calls); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	return calls, nil
}

// Close is a no-op; the file store holds no open resources.
func (s *Store) Close() error {
	return nil
}

func (s *Store) write(unit, name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(unit, name, v)
}

func (s *Store) writeLocked(unit, name string, v interface{}) error {
	dir := s.UnitDir(unit)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("file store: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: marshal %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("file store: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("file store: write %s: %w", path, err)
	}
	return nil
}

func (s *Store) read(unit, name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(unit, name, v)
}

func (s *Store) readLocked(unit, name string, v interface{}) error {
	path := filepath.Join(s.UnitDir(unit), name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("file store: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("file store: decode %s: %w", path, err)
	}
	return nil
}
