package templates

import (
	"fmt"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/pkg/utils"
)

// PriceDropParams holds the fields rendered into a price drop alert
type PriceDropParams struct {
	To            string
	Origin        string
	Destination   string
	DepartureDate string
	OldPrice      float64
	NewPrice      float64
	ReductionPct  float64
	CurrencyCode  string
}

// PriceDrop builds the price drop alert notification
func PriceDrop(p PriceDropParams) *entity.Notification {
	subject := fmt.Sprintf("Flight Price Drop Alert: %s to %s", p.Origin, p.Destination)

	body := fmt.Sprintf(
		"Good news! The price for your flight from %s to %s on %s has dropped by %.2f%%.\n\n"+
			"New Price: %s %s\nOld Price: %s %s\n\nBook now to save!",
		p.Origin, p.Destination, p.DepartureDate, p.ReductionPct,
		formatPrice(p.NewPrice), p.CurrencyCode,
		formatPrice(p.OldPrice), p.CurrencyCode,
	)

	return &entity.Notification{
		Type:    entity.PriceDropAlert,
		To:      p.To,
		Subject: subject,
		Body:    body,
	}
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%.2f", utils.Round2(v))
}
