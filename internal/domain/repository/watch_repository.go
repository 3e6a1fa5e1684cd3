package repository

import (
	"context"
	"time"

	"farewatch-service/internal/domain/entity"
)

// WatchRepository defines the interface for watched flight operations
type WatchRepository interface {
	Insert(ctx context.Context, watch *entity.WatchedFlight) error
	ListByUser(ctx context.Context, userID string) ([]entity.WatchedFlight, error)
	DeleteByUser(ctx context.Context, userID string) error

	// ListEligible returns every watch departing on or after the
	// given date, joined with the owner's email, in insertion order.
	ListEligible(ctx context.Context, from time.Time) ([]entity.WatchWithOwner, error)

	// UpdatePrice conditionally sets the stored price for one watch.
	// A watch deleted since it was listed is a no-op, not an error.
	UpdatePrice(ctx context.Context, id string, newPrice float64) error
}
