package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/interface/amadeus"
	"farewatch-service/internal/usecase"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// Handler serves the cart and flight search endpoints
type Handler struct {
	cart   *usecase.CartService
	finder *usecase.FlightFinder
	logger logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(cart *usecase.CartService, finder *usecase.FlightFinder, logger logger.Logger) *Handler {
	return &Handler{
		cart:   cart,
		finder: finder,
		logger: logger,
	}
}

type registerRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// HandleRegister finds or creates a user by email and echoes the
// current cart.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !utils.IsEmail(req.Email) {
		respondError(w, http.StatusBadRequest, "Valid email is required")
		return
	}

	user, created, err := h.cart.Register(r.Context(), req.Email, req.Phone)
	if err != nil {
		h.logger.Error("Failed to process user", "error", err, "email", req.Email)
		respondError(w, http.StatusInternalServerError, "Failed to process user")
		return
	}

	cart, err := h.cart.ListCart(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("Failed to fetch cart", "error", err, "userId", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	message := "Logged in with email: " + user.Email
	if created {
		message = "Registered with email: " + user.Email
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"userId":  user.ID,
		"message": message,
		"cart":    toWatchViews(cart),
	})
}

type addToCartRequest struct {
	UserID        string `json:"userId"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate"`
	Adults        int    `json:"adults"`
	CurrencyCode  string `json:"currencyCode"`
}

// HandleAddToCart quotes the route and stores it as a watched
// flight at the quoted price.
func (h *Handler) HandleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == "" || req.Origin == "" || req.Destination == "" || req.DepartureDate == "" {
		respondError(w, http.StatusBadRequest,
			"Missing required fields: userId, origin, destination, departureDate")
		return
	}
	if !utils.IsIATACode(req.Origin) || !utils.IsIATACode(req.Destination) {
		respondError(w, http.StatusBadRequest,
			"Invalid origin or destination. Use 3-letter IATA airport codes (e.g., CCJ for Calicut).")
		return
	}

	departureDate, err := utils.ParseDate(req.DepartureDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid departureDate. Use YYYY-MM-DD.")
		return
	}

	var returnDate *time.Time
	if req.ReturnDate != "" {
		parsed, err := utils.ParseDate(req.ReturnDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid returnDate. Use YYYY-MM-DD.")
			return
		}
		returnDate = &parsed
	}

	input := usecase.AddToCartInput{
		UserID:        req.UserID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: departureDate,
		ReturnDate:    returnDate,
		Adults:        req.Adults,
		CurrencyCode:  req.CurrencyCode,
	}
	if input.Adults <= 0 {
		input.Adults = 1
	}
	if input.CurrencyCode == "" {
		input.CurrencyCode = "INR"
	}

	if _, err := h.cart.AddToCart(r.Context(), input); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, usecase.ErrNoOffers):
			respondError(w, http.StatusNotFound, "No flights found for the specified route")
		default:
			h.logger.Error("Failed to add flight to cart", "error", err, "userId", req.UserID)
			h.respondProviderError(w, err, "Failed to add flight to cart")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Flight added to cart",
	})
}

// HandleGetCart returns the user's watch list.
func (h *Handler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	cart, err := h.cart.ListCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to fetch cart", "error", err, "userId", userID)
		respondError(w, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    toWatchViews(cart),
	})
}

type clearCartRequest struct {
	UserID string `json:"userId"`
}

// HandleClearCart deletes all the user's watched flights.
func (h *Handler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	var req clearCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "Missing required field: userId")
		return
	}

	if err := h.cart.ClearCart(r.Context(), req.UserID); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("Failed to clear cart", "error", err, "userId", req.UserID)
		respondError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Cart cleared",
	})
}

// HandleSearchFlights is the stateless search passthrough.
func (h *Handler) HandleSearchFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := q.Get("origin")
	destination := q.Get("destination")
	departureDateRaw := q.Get("departureDate")

	if origin == "" || destination == "" || departureDateRaw == "" {
		respondError(w, http.StatusBadRequest,
			"Missing required parameters: origin, destination, departureDate")
		return
	}
	if !utils.IsIATACode(origin) || !utils.IsIATACode(destination) {
		respondError(w, http.StatusBadRequest,
			"Invalid origin or destination. Use 3-letter IATA airport codes (e.g., CCJ for Calicut).")
		return
	}

	departureDate, err := utils.ParseDate(departureDateRaw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid departureDate. Use YYYY-MM-DD.")
		return
	}

	input := usecase.SearchInput{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: departureDate,
		Adults:        utils.ParseInt(q.Get("adults"), 1),
		CurrencyCode:  q.Get("currencyCode"),
	}
	if input.CurrencyCode == "" {
		input.CurrencyCode = "INR"
	}

	offers, err := h.finder.Search(r.Context(), input)
	if err != nil {
		h.logger.Error("Failed to fetch flights", "error", err,
			"origin", origin, "destination", destination)
		h.respondProviderError(w, err, "Failed to fetch flight details")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    offers,
	})
}

// respondProviderError surfaces the provider's code and description
// when the failure carries them.
func (h *Handler) respondProviderError(w http.ResponseWriter, err error, message string) {
	body := errorBody{Error: message, Code: "UNKNOWN"}
	var perr *amadeus.ProviderError
	if errors.As(err, &perr) {
		body.Code = perr.Code
		body.Details = perr.Description
	}
	respondJSON(w, http.StatusInternalServerError, body)
}

// watchView is the JSON shape of one cart line item
type watchView struct {
	ID            string  `json:"id"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departureDate"`
	ReturnDate    string  `json:"returnDate,omitempty"`
	Adults        int     `json:"adults"`
	CurrencyCode  string  `json:"currencyCode"`
	Airline       string  `json:"airline"`
	FlightNumber  string  `json:"flightNumber"`
	Price         float64 `json:"price"`
}

func toWatchViews(watches []entity.WatchedFlight) []watchView {
	views := make([]watchView, 0, len(watches))
	for _, watch := range watches {
		view := watchView{
			ID:            watch.ID,
			Origin:        watch.Origin,
			Destination:   watch.Destination,
			DepartureDate: watch.DepartureDate.Format(utils.DATE_LAYOUT),
			Adults:        watch.Adults,
			CurrencyCode:  watch.CurrencyCode,
			Airline:       watch.Airline,
			FlightNumber:  watch.FlightNumber,
			Price:         watch.Price,
		}
		if watch.ReturnDate != nil {
			view.ReturnDate = watch.ReturnDate.Format(utils.DATE_LAYOUT)
		}
		views = append(views, view)
	}
	return views
}
