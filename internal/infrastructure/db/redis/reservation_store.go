package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/motlupets/storefront/internal/core/domain"
)

// ReservationStore keeps reservations as JSON strings.
// Key format: storefront:reservation:<gateway_order_id>
type ReservationStore struct {
	client *redis.Client
}

func NewReservationStore(client *redis.Client) *ReservationStore {
	return &ReservationStore{client: client}
}

func (s *ReservationStore) Get(ctx context.Context, gatewayOrderID string) (domain.Reservation, error) {
	raw, err := s.client.Get(ctx, reservationKey(gatewayOrderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	return decodeReservation(raw)
}

// Put stores r without a TTL. A reservation lives until it is consumed or
// swept.
func (s *ReservationStore) Put(ctx context.Context, r domain.Reservation) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode reservation: %w", err)
	}
	if err := s.client.Set(ctx, reservationKey(r.GatewayOrderID), raw, 0).Err(); err != nil {
		return fmt.Errorf("put reservation: %w", err)
	}
	return nil
}

// Consume uses GETDEL so only one caller ever sees the value.
func (s *ReservationStore) Consume(ctx context.Context, gatewayOrderID string) (domain.Reservation, error) {
	raw, err := s.client.GetDel(ctx, reservationKey(gatewayOrderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("consume reservation: %w", err)
	}
	return decodeReservation(raw)
}

func decodeReservation(raw []byte) (domain.Reservation, error) {
	var r domain.Reservation
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.Reservation{}, fmt.Errorf("decode reservation: %w", err)
	}
	return r, nil
}

func reservationKey(gatewayOrderID string) string {
	return key("reservation", gatewayOrderID)
}
