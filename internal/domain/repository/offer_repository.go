package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
)

// OfferSearcher defines the interface for the flight offer provider
type OfferSearcher interface {
	// Search returns up to query.MaxResults offers ranked by the
	// provider, best first. An empty slice means no flights were
	// found; that is not an error.
	Search(ctx context.Context, query entity.OfferQuery) ([]entity.FlightOffer, error)
}
