package memory

import (
	"context"
	"sort"
	"sync"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/storage"
)

type signalKey struct {
	runID string
	seq   int
}

// SignalStore is an in-memory implementation of storage.SignalStore.
type SignalStore struct {
	mu   sync.RWMutex
	data map[signalKey]*domain.TradeSignal
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{
		data: make(map[signalKey]*domain.TradeSignal),
	}
}

// Insert adds a new signal. Returns ErrDuplicateKey if (run_id, seq) exists.
func (s *SignalStore) Insert(_ context.Context, sig *domain.TradeSignal) error {
	if sig == nil || sig.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := signalKey{sig.RunID, sig.Seq}
	if _, exists := s.data[k]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *sig
	s.data[k] = &copy
	return nil
}

// InsertBulk adds multiple signals atomically. Fails entire batch on any duplicate.
func (s *SignalStore) InsertBulk(_ context.Context, signals []*domain.TradeSignal) error {
	if len(signals) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[signalKey]struct{}, len(signals))
	for _, sig := range signals {
		if sig == nil || sig.RunID == "" {
			return storage.ErrInvalidInput
		}
		k := signalKey{sig.RunID, sig.Seq}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, sig := range signals {
		copy := *sig
		s.data[signalKey{sig.RunID, sig.Seq}] = &copy
	}

	return nil
}

// GetByRunID retrieves all signals of a run, ordered by seq ASC.
func (s *SignalStore) GetByRunID(_ context.Context, runID string) ([]*domain.TradeSignal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeSignal
	for _, sig := range s.data {
		if sig.RunID == runID {
			copy := *sig
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})

	return result, nil
}

var _ storage.SignalStore = (*SignalStore)(nil)
