// Package store provides an in-memory Store implementation for tests and
// development.
package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rodrigogonn/debtors/ledger"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu  sync.RWMutex
	doc []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

// Load returns a deep copy of the held document, empty if nothing was
// saved yet.
func (m *Memory) Load(_ context.Context) (*ledger.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := &ledger.State{}
	if len(m.doc) > 0 {
		if err := json.Unmarshal(m.doc, st); err != nil {
			// Mirrors the file store: corrupt state is replaced, not fatal.
			st = &ledger.State{}
		}
	}
	ledger.NormalizeState(st)
	return st, nil
}

// Save keeps a deep copy so later mutations of st don't leak in.
func (m *Memory) Save(_ context.Context, st *ledger.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = data
	return nil
}
