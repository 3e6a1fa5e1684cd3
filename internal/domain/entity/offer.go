// internal/domain/entity/offer.go
package entity

import (
	"time"
)

// OfferQuery describes a flight offer search request.
type OfferQuery struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	Adults        int
	CurrencyCode  string
	MaxResults    int
}

// FlightOffer is a point-in-time priced offer returned by the
// search provider. Departure and arrival times are local to the
// respective airports, as the provider reports them.
type FlightOffer struct {
	Airline          string
	FlightNumber     string
	DepartureAirport string
	DepartureTime    time.Time
	ArrivalAirport   string
	ArrivalTime      time.Time
	Duration         string
	TotalPrice       float64
	Currency         string
}
