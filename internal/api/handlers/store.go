package handlers

import (
	"context"
	"sync"

	"github.com/wonny/prebloom/internal/contracts"
)

// ResultStore holds the most recent scan result for the read API
// It is registered as a scan sink so every finished run replaces the previous one.
type ResultStore struct {
	mu     sync.RWMutex
	latest *contracts.ScanResult
}

// NewResultStore creates an empty store
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Name implements scan.Sink
func (s *ResultStore) Name() string {
	return "api"
}

// Write implements scan.Sink
func (s *ResultStore) Write(_ context.Context, result *contracts.ScanResult) error {
	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()
	return nil
}

// Latest returns the last stored result (nil before the first scan)
func (s *ResultStore) Latest() *contracts.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
