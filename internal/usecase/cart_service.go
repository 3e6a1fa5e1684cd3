package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
	"farewatch-service/templates"

	"github.com/google/uuid"
)

// Sentinel errors surfaced to the HTTP layer.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrNoOffers     = errors.New("no flights found for the specified route")
)

// AddToCartInput is the validated request to watch a flight.
type AddToCartInput struct {
	UserID        string
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	Adults        int
	CurrencyCode  string
}

// CartService owns registration and the cart of watched flights.
type CartService struct {
	users    repository.UserRepository
	watches  repository.WatchRepository
	offers   repository.OfferSearcher
	notifier repository.Notifier
	logger   logger.Logger
	loc      *time.Location
}

// NewCartService creates a new cart service
func NewCartService(
	users repository.UserRepository,
	watches repository.WatchRepository,
	offers repository.OfferSearcher,
	notifier repository.Notifier,
	logger logger.Logger,
	loc *time.Location,
) *CartService {
	return &CartService{
		users:    users,
		watches:  watches,
		offers:   offers,
		notifier: notifier,
		logger:   logger,
		loc:      loc,
	}
}

// Register finds or creates a user by email. The second return
// value reports whether a new user was created.
func (s *CartService) Register(ctx context.Context, email, phone string) (*entity.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	user := &entity.User{
		ID:    uuid.NewString(),
		Email: email,
		Phone: phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", "userId", user.ID, "email", user.Email)
	return user, true, nil
}

// AddToCart fetches the best current offer for the route and stores
// it as a watched flight at the quoted price, then mails the owner a
// confirmation. A mail failure is logged but does not undo the add.
func (s *CartService) AddToCart(ctx context.Context, input AddToCartInput) (*entity.WatchedFlight, error) {
	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	offers, err := s.offers.Search(ctx, entity.OfferQuery{
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureDate: input.DepartureDate,
		ReturnDate:    input.ReturnDate,
		Adults:        input.Adults,
		CurrencyCode:  input.CurrencyCode,
		MaxResults:    1,
	})
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, ErrNoOffers
	}

	offer := offers[0]
	watch := &entity.WatchedFlight{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureDate: input.DepartureDate,
		ReturnDate:    input.ReturnDate,
		Adults:        input.Adults,
		CurrencyCode:  input.CurrencyCode,
		Airline:       offer.Airline,
		FlightNumber:  offer.FlightNumber,
		Price:         offer.TotalPrice,
	}

	if err := s.watches.Insert(ctx, watch); err != nil {
		return nil, fmt.Errorf("failed to insert watch: %w", err)
	}

	notification := templates.CartAdded(templates.CartAddedParams{
		To:            user.Email,
		Origin:        input.Origin,
		Destination:   input.Destination,
		Airline:       offer.Airline,
		FlightNumber:  offer.FlightNumber,
		DepartureTime: s.localTime(offer.DepartureTime),
		ArrivalTime:   s.localTime(offer.ArrivalTime),
		Price:         offer.TotalPrice,
		CurrencyCode:  input.CurrencyCode,
		Adults:        input.Adults,
	})
	if err := s.notifier.Send(ctx, notification); err != nil {
		s.logger.Warn("Failed to send cart confirmation",
			"error", err,
			"to", user.Email,
			"watchId", watch.ID)
	}

	s.logger.Info("Flight added to cart",
		"watchId", watch.ID,
		"userId", user.ID,
		"route", input.Origin+"-"+input.Destination,
		"price", offer.TotalPrice)

	return watch, nil
}

// ListCart returns the user's watched flights.
func (s *CartService) ListCart(ctx context.Context, userID string) ([]entity.WatchedFlight, error) {
	return s.watches.ListByUser(ctx, userID)
}

// ClearCart deletes all the user's watched flights.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	return s.watches.DeleteByUser(ctx, userID)
}

func (s *CartService) localTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05") + " (" + s.loc.String() + ")"
}
