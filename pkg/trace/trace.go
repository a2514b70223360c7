// Package trace records intermediate pipeline artifacts (raw prompts and
// model responses) through an explicit sink passed to each component.
package trace

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Sink receives named artifacts for the unit of work carried by ctx.
//
// Implementations must be safe for concurrent use. Recording never fails the
// caller; sinks report their own errors.
type Sink interface {
	Record(ctx context.Context, name, body string)
}

type unitKey struct{}

// DefaultUnit is used when ctx carries no unit.
const DefaultUnit = "default"

// WithUnit returns a context whose artifacts are filed under unit.
func WithUnit(ctx context.Context, unit string) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// Unit returns the unit carried by ctx, or DefaultUnit.
func Unit(ctx context.Context) string {
	if unit, ok := ctx.Value(unitKey{}).(string); ok && unit != "" {
		return unit
	}
	return DefaultUnit
}

// Nop discards every artifact.
type Nop struct{}

// Record implements Sink.
func (Nop) Record(context.Context, string, string) {}

// Memory keeps artifacts in memory, keyed by unit and name.
type Memory struct {
	mu      sync.Mutex
	records map[string]map[string][]string
}

// NewMemory creates an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]map[string][]string)}
}

// Record implements Sink.
func (m *Memory) Record(ctx context.Context, name, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	unit := Unit(ctx)
	if m.records[unit] == nil {
		m.records[unit] = make(map[string][]string)
	}
	m.records[unit][name] = append(m.records[unit][name], body)
}

// Get returns every body recorded under unit and name, oldest first.
func (m *Memory) Get(unit, name string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	bodies := m.records[unit][name]
	out := make([]string, len(bodies))
	copy(out, bodies)
	return out
}

// Names returns the artifact names recorded under unit, sorted.
func (m *Memory) Names(unit string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.records[unit]))
	for name := range m.records[unit] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dir writes artifacts to files under <Root>/<unit>/<name>.
// Text artifacts are appended to; JSON documents (names ending in .json)
// are replaced so each stays a single valid document.
type Dir struct {
	Root string

	mu sync.Mutex
}

// NewDir creates a Dir sink rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Record implements Sink.
func (d *Dir) Record(ctx context.Context, name, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir := filepath.Join(d.Root, sanitize(Unit(ctx)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("trace: failed to create %s: %v", dir, err)
		return
	}

	path := filepath.Join(dir, sanitize(name))
	flag := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if strings.HasSuffix(name, ".json") {
		flag = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		log.Printf("trace: failed to open %s: %v", path, err)
		return
	}
	defer func() { _ = f.Close() }()

	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	if _, err := f.WriteString(body); err != nil {
		log.Printf("trace: failed to write %s: %v", path, err)
	}
}

func sanitize(name string) string {
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" {
		return DefaultUnit
	}
	return name
}
