// Package memory holds process-local stores used when Redis is not
// configured.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/motlupets/storefront/internal/core/domain"
)

// ReservationStore is a mutex-guarded map of reservations. Entries are lost
// on restart.
type ReservationStore struct {
	mu      sync.Mutex
	entries map[string]domain.Reservation
}

func NewReservationStore() *ReservationStore {
	return &ReservationStore{entries: make(map[string]domain.Reservation)}
}

func (s *ReservationStore) Get(_ context.Context, gatewayOrderID string) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.entries[gatewayOrderID]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return clone(r), nil
}

func (s *ReservationStore) Put(_ context.Context, r domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[r.GatewayOrderID] = clone(r)
	return nil
}

func (s *ReservationStore) Consume(_ context.Context, gatewayOrderID string) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.entries[gatewayOrderID]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	delete(s.entries, gatewayOrderID)
	return r, nil
}

// Sweep drops reservations created before cutoff and returns how many were
// removed.
func (s *ReservationStore) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, r := range s.entries {
		if r.CreatedAt.Before(cutoff) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

func (s *ReservationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func clone(r domain.Reservation) domain.Reservation {
	r.Items = slices.Clone(r.Items)
	return r
}
