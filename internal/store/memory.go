package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryBackend keeps partitions in process. It can simulate unreachable
// tables and slow calls, and it records which tables each call touched.
type MemoryBackend struct {
	mu          sync.RWMutex
	tables      map[string]map[string][]byte
	unavailable map[string]bool
	delay       time.Duration
	touched     []string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tables:      map[string]map[string][]byte{},
		unavailable: map[string]bool{},
	}
}

func (m *MemoryBackend) Name() string {
	return "memory"
}

func (m *MemoryBackend) Ping(context.Context) error {
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}

func (m *MemoryBackend) SetUnavailable(table string, down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable[table] = down
}

// SetDelay makes every data and catalog call wait d or until its context
// ends.
func (m *MemoryBackend) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Touched returns the distinct tables data calls have read or written since
// the last ResetTouched, sorted.
func (m *MemoryBackend) Touched() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]struct{}{}
	out := make([]string, 0, len(m.touched))
	for _, t := range m.touched {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (m *MemoryBackend) ResetTouched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = nil
}

func (m *MemoryBackend) enter(ctx context.Context, tables ...string) error {
	m.mu.Lock()
	m.touched = append(m.touched, tables...)
	delay := m.delay
	var down string
	for _, t := range tables {
		if m.unavailable[t] {
			down = t
			break
		}
	}
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if down != "" {
		return fmt.Errorf("%w: %s", ErrUnavailable, down)
	}
	return ctx.Err()
}

func (m *MemoryBackend) EnsureTable(ctx context.Context, table string) error {
	if err := m.enter(ctx, table); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[table]; !ok {
		m.tables[table] = map[string][]byte{}
	}
	return nil
}

func (m *MemoryBackend) Tables(ctx context.Context, prefix string) ([]string, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.tables))
	for name := range m.tables {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryBackend) Upsert(ctx context.Context, table, id string, doc []byte) (bool, error) {
	if err := m.enter(ctx, table); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		t = map[string][]byte{}
		m.tables[table] = t
	}
	_, exists := t[id]
	t[id] = cloneBytes(doc)
	return !exists, nil
}

func (m *MemoryBackend) Get(ctx context.Context, table, id string) ([]byte, error) {
	if err := m.enter(ctx, table); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.tables[table][id]
	if !ok {
		return nil, ErrNoDocument
	}
	return cloneBytes(doc), nil
}

func (m *MemoryBackend) Delete(ctx context.Context, table, id string) (bool, error) {
	if err := m.enter(ctx, table); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		return false, nil
	}
	if _, ok := t[id]; !ok {
		return false, nil
	}
	delete(t, id)
	return true, nil
}

func (m *MemoryBackend) Scan(ctx context.Context, table string) ([][]byte, error) {
	if err := m.enter(ctx, table); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t := m.tables[table]
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneBytes(t[id]))
	}
	return out, nil
}

func (m *MemoryBackend) Count(ctx context.Context, table string) (int64, error) {
	if err := m.enter(ctx, table); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.tables[table])), nil
}

func (m *MemoryBackend) Move(ctx context.Context, from, to, id string, doc []byte) error {
	if err := m.enter(ctx, from, to); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	dst, ok := m.tables[to]
	if !ok {
		dst = map[string][]byte{}
		m.tables[to] = dst
	}
	dst[id] = cloneBytes(doc)
	if src, ok := m.tables[from]; ok {
		delete(src, id)
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
