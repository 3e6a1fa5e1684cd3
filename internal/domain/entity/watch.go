// internal/domain/entity/watch.go
package entity

import (
	"time"
)

// WatchedFlight is a cart line item under ongoing price monitoring.
// Price always holds the most recently observed total for this
// route/date/party combination.
type WatchedFlight struct {
	ID            string
	UserID        string
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	Adults        int
	CurrencyCode  string
	Airline       string
	FlightNumber  string
	Price         float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// WatchWithOwner pairs a watched flight with its owner's
// notification address for the price check job.
type WatchWithOwner struct {
	Watch      WatchedFlight
	OwnerEmail string
}
