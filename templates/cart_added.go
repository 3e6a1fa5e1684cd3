package templates

import (
	"fmt"

	"farewatch-service/internal/domain/entity"
)

// CartAddedParams holds the fields rendered into a cart confirmation
type CartAddedParams struct {
	To            string
	Origin        string
	Destination   string
	Airline       string
	FlightNumber  string
	DepartureTime string
	ArrivalTime   string
	Price         float64
	CurrencyCode  string
	Adults        int
}

// CartAdded builds the cart confirmation notification
func CartAdded(p CartAddedParams) *entity.Notification {
	subject := fmt.Sprintf("Flight Added to Cart: %s to %s", p.Origin, p.Destination)

	body := fmt.Sprintf(
		"Your flight from %s to %s has been added to your cart.\n\n"+
			"Details:\n- Flight: %s%s\n- Departure: %s\n- Arrival: %s\n- Price: %s %s\n- Passengers: %d\n\n"+
			"Book now to confirm your trip!",
		p.Origin, p.Destination,
		p.Airline, p.FlightNumber,
		p.DepartureTime, p.ArrivalTime,
		formatPrice(p.Price), p.CurrencyCode,
		p.Adults,
	)

	return &entity.Notification{
		Type:    entity.CartConfirmation,
		To:      p.To,
		Subject: subject,
		Body:    body,
	}
}
