// internal/domain/entity/price_event.go
package entity

import (
	"time"
)

// PriceDropEvent records one detected price drop for a watched
// flight. Events are an append-only audit trail; the watch itself
// only keeps the latest price.
type PriceDropEvent struct {
	ID            string    `bson:"_id,omitempty"`
	WatchID       string    `bson:"watchId"`
	UserID        string    `bson:"userId"`
	Origin        string    `bson:"origin"`
	Destination   string    `bson:"destination"`
	DepartureDate time.Time `bson:"departureDate"`
	OldPrice      float64   `bson:"oldPrice"`
	NewPrice      float64   `bson:"newPrice"`
	ReductionPct  float64   `bson:"reductionPct"`
	CurrencyCode  string    `bson:"currencyCode"`
	Notified      bool      `bson:"notified"`
	CreatedAt     time.Time `bson:"createdAt"`
}
