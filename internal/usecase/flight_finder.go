package usecase

import (
	"context"
	"fmt"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
)

const searchMaxResults = 10

// SearchInput is a validated stateless flight search request.
type SearchInput struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	Adults        int
	CurrencyCode  string
}

// AirportTime is one endpoint of a flight in a search response.
type AirportTime struct {
	Airport string `json:"airport"`
	Time    string `json:"time"`
	Local   string `json:"timeLocal"`
}

// OfferView is the JSON shape of one offer in a search response.
type OfferView struct {
	Airline      string      `json:"airline"`
	FlightNumber string      `json:"flightNumber"`
	Departure    AirportTime `json:"departure"`
	Arrival      AirportTime `json:"arrival"`
	Duration     string      `json:"duration"`
	Price        PriceView   `json:"price"`
}

// PriceView is the price part of an offer view.
type PriceView struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// FlightFinder is the stateless search passthrough to the offer
// provider.
type FlightFinder struct {
	offers repository.OfferSearcher
	logger logger.Logger
}

// NewFlightFinder creates a new flight finder
func NewFlightFinder(offers repository.OfferSearcher, logger logger.Logger) *FlightFinder {
	return &FlightFinder{
		offers: offers,
		logger: logger,
	}
}

// Search returns up to ten offers for the route, shaped for the API.
func (f *FlightFinder) Search(ctx context.Context, input SearchInput) ([]OfferView, error) {
	offers, err := f.offers.Search(ctx, entity.OfferQuery{
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureDate: input.DepartureDate,
		Adults:        input.Adults,
		CurrencyCode:  input.CurrencyCode,
		MaxResults:    searchMaxResults,
	})
	if err != nil {
		return nil, err
	}

	views := make([]OfferView, 0, len(offers))
	for _, offer := range offers {
		views = append(views, OfferView{
			Airline:      offer.Airline,
			FlightNumber: offer.FlightNumber,
			Departure: AirportTime{
				Airport: offer.DepartureAirport,
				Time:    formatSegmentTime(offer.DepartureTime),
				Local:   formatSegmentLocal(offer.DepartureTime),
			},
			Arrival: AirportTime{
				Airport: offer.ArrivalAirport,
				Time:    formatSegmentTime(offer.ArrivalTime),
				Local:   formatSegmentLocal(offer.ArrivalTime),
			},
			Duration: offer.Duration,
			Price: PriceView{
				Total:    fmt.Sprintf("%.2f", offer.TotalPrice),
				Currency: offer.Currency,
			},
		})
	}
	return views, nil
}

func formatSegmentTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}

func formatSegmentLocal(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
