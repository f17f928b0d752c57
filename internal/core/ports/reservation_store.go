package ports

import (
	"context"

	"github.com/motlupets/storefront/internal/core/domain"
)

// ReservationStore holds pending order drafts keyed by gateway order id.
// Entries never expire on their own.
type ReservationStore interface {
	Get(ctx context.Context, gatewayOrderID string) (domain.Reservation, error)
	Put(ctx context.Context, r domain.Reservation) error
	// Consume removes and returns the reservation in one atomic step. Of
	// any number of concurrent callers at most one succeeds; the rest get
	// domain.ErrReservationNotFound.
	Consume(ctx context.Context, gatewayOrderID string) (domain.Reservation, error)
}
