// internal/interface/amadeus/client.go
package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/utils"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenPath  = "/v1/security/oauth2/token"
	searchPath = "/v2/shopping/flight-offers"

	// Calicut only settles results for a fixed set of carriers.
	ccjOrigin          = "CCJ"
	ccjIncludedCarrier = "6E,AI,QR"

	segmentTimeLayout = "2006-01-02T15:04:05"
)

// ProviderError carries the provider-supplied failure detail so
// callers can log or surface it.
type ProviderError struct {
	Status      int
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d, code %s): %s", e.Status, e.Code, e.Description)
}

// Client searches flight offers against an Amadeus-style API,
// authenticating with the client credentials flow.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new flight offer search client. Every request
// is bounded by the given timeout; a timed-out call surfaces as an
// ordinary error that callers treat like any provider failure.
func NewClient(ctx context.Context, apiKey, apiSecret, baseURL string, timeout time.Duration, logger logger.Logger) *Client {
	cc := clientcredentials.Config{
		ClientID:     apiKey,
		ClientSecret: apiSecret,
		TokenURL:     strings.TrimRight(baseURL, "/") + tokenPath,
	}

	httpClient := cc.Client(ctx)
	httpClient.Timeout = timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// offersResponse mirrors the provider's wire format
type offersResponse struct {
	Data []struct {
		Itineraries []struct {
			Duration string `json:"duration"`
			Segments []struct {
				Departure struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
				CarrierCode string `json:"carrierCode"`
				Number      string `json:"number"`
			} `json:"segments"`
		} `json:"itineraries"`
		Price struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"price"`
	} `json:"data"`
	Errors []struct {
		Status json.Number `json:"status"`
		Code   json.Number `json:"code"`
		Title  string      `json:"title"`
		Detail string      `json:"detail"`
	} `json:"errors"`
}

// Search returns up to query.MaxResults offers, best ranked first.
// An empty result is not an error.
func (c *Client) Search(ctx context.Context, query entity.OfferQuery) ([]entity.FlightOffer, error) {
	params := url.Values{}
	params.Set("originLocationCode", query.Origin)
	params.Set("destinationLocationCode", query.Destination)
	params.Set("departureDate", query.DepartureDate.Format(utils.DATE_LAYOUT))
	if query.ReturnDate != nil {
		params.Set("returnDate", query.ReturnDate.Format(utils.DATE_LAYOUT))
	}
	params.Set("adults", strconv.Itoa(query.Adults))
	params.Set("currencyCode", query.CurrencyCode)
	params.Set("max", strconv.Itoa(query.MaxResults))
	if query.Origin == ccjOrigin {
		params.Set("includedAirlineCodes", ccjIncludedCarrier)
	}

	reqURL := c.baseURL + searchPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch offers: %w", err)
	}
	defer resp.Body.Close()

	var body offersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode offers response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || len(body.Errors) > 0 {
		return nil, c.providerError(resp.StatusCode, &body)
	}

	offers := make([]entity.FlightOffer, 0, len(body.Data))
	for _, item := range body.Data {
		if len(item.Itineraries) == 0 || len(item.Itineraries[0].Segments) == 0 {
			continue
		}

		itinerary := item.Itineraries[0]
		segment := itinerary.Segments[0]

		total, err := strconv.ParseFloat(item.Price.Total, 64)
		if err != nil {
			c.logger.Warn("Skipping offer with unparsable price",
				"total", item.Price.Total,
				"origin", query.Origin,
				"destination", query.Destination)
			continue
		}

		departAt, _ := time.Parse(segmentTimeLayout, segment.Departure.At)
		arriveAt, _ := time.Parse(segmentTimeLayout, segment.Arrival.At)

		offers = append(offers, entity.FlightOffer{
			Airline:          segment.CarrierCode,
			FlightNumber:     segment.Number,
			DepartureAirport: segment.Departure.IataCode,
			DepartureTime:    departAt,
			ArrivalAirport:   segment.Arrival.IataCode,
			ArrivalTime:      arriveAt,
			Duration:         itinerary.Duration,
			TotalPrice:       total,
			Currency:         item.Price.Currency,
		})
	}

	return offers, nil
}

func (c *Client) providerError(httpStatus int, body *offersResponse) error {
	perr := &ProviderError{
		Status:      httpStatus,
		Code:        "UNKNOWN",
		Description: "Failed to fetch flight offers",
	}
	if len(body.Errors) > 0 {
		first := body.Errors[0]
		if first.Code != "" {
			perr.Code = first.Code.String()
		}
		if first.Detail != "" {
			perr.Description = first.Detail
		} else if first.Title != "" {
			perr.Description = first.Title
		}
		if status, err := first.Status.Int64(); err == nil && status != 0 {
			perr.Status = int(status)
		}
	}
	return perr
}

var _ repository.OfferSearcher = (*Client)(nil)
