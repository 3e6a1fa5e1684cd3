package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"

	"gotest.tools/v3/assert"
)

// fakeUserRepo is an in-memory user store.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newTestCartService(users *fakeUserRepo, watches *fakeWatchRepo, offers *fakeOffers, notifier *fakeNotifier) *CartService {
	return NewCartService(users, watches, offers, notifier, logger.NewNop(), time.UTC)
}

func TestRegisterCreatesUser(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestCartService(users, &fakeWatchRepo{}, &fakeOffers{}, &fakeNotifier{})

	user, created, err := svc.Register(context.Background(), "visitor@example.com", "+911234567890")
	assert.NilError(t, err)
	assert.Assert(t, created)
	assert.Assert(t, user.ID != "")
	assert.Equal(t, user.Email, "visitor@example.com")
}

func TestRegisterFindsExistingUser(t *testing.T) {
	existing := &entity.User{ID: "u1", Email: "visitor@example.com"}
	users := newFakeUserRepo(existing)
	svc := newTestCartService(users, &fakeWatchRepo{}, &fakeOffers{}, &fakeNotifier{})

	user, created, err := svc.Register(context.Background(), "visitor@example.com", "")
	assert.NilError(t, err)
	assert.Assert(t, !created)
	assert.Equal(t, user.ID, "u1")
}

func TestAddToCartStoresQuotedOffer(t *testing.T) {
	users := newFakeUserRepo(&entity.User{ID: "u1", Email: "visitor@example.com"})
	watches := &fakeWatchRepo{}
	offers := &fakeOffers{results: map[string][]entity.FlightOffer{
		"COK-BOM": {{
			Airline:      "AI",
			FlightNumber: "505",
			TotalPrice:   6150.50,
			Currency:     "INR",
		}},
	}}
	notifier := &fakeNotifier{}
	svc := newTestCartService(users, watches, offers, notifier)

	watch, err := svc.AddToCart(context.Background(), AddToCartInput{
		UserID:        "u1",
		Origin:        "COK",
		Destination:   "BOM",
		DepartureDate: tomorrow(),
		Adults:        2,
		CurrencyCode:  "INR",
	})
	assert.NilError(t, err)
	assert.Equal(t, watch.Airline, "AI")
	assert.Equal(t, watch.FlightNumber, "505")
	assert.Equal(t, watch.Price, 6150.50)

	stored, err := svc.ListCart(context.Background(), "u1")
	assert.NilError(t, err)
	assert.Equal(t, len(stored), 1)

	assert.Equal(t, notifier.count(), 1)
	sent := notifier.sent[0]
	assert.Equal(t, sent.Type, entity.CartConfirmation)
	assert.Equal(t, sent.To, "visitor@example.com")
	assert.Assert(t, strings.Contains(sent.Body, "AI505"))
	assert.Assert(t, strings.Contains(sent.Body, "Passengers: 2"))
}

func TestAddToCartUnknownUser(t *testing.T) {
	svc := newTestCartService(newFakeUserRepo(), &fakeWatchRepo{}, &fakeOffers{}, &fakeNotifier{})

	_, err := svc.AddToCart(context.Background(), AddToCartInput{
		UserID:        "missing",
		Origin:        "COK",
		Destination:   "BOM",
		DepartureDate: tomorrow(),
		Adults:        1,
		CurrencyCode:  "INR",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddToCartNoOffers(t *testing.T) {
	users := newFakeUserRepo(&entity.User{ID: "u1", Email: "visitor@example.com"})
	svc := newTestCartService(users, &fakeWatchRepo{}, &fakeOffers{}, &fakeNotifier{})

	_, err := svc.AddToCart(context.Background(), AddToCartInput{
		UserID:        "u1",
		Origin:        "COK",
		Destination:   "BOM",
		DepartureDate: tomorrow(),
		Adults:        1,
		CurrencyCode:  "INR",
	})
	assert.ErrorIs(t, err, ErrNoOffers)
}

func TestAddToCartMailFailureDoesNotUndoAdd(t *testing.T) {
	users := newFakeUserRepo(&entity.User{ID: "u1", Email: "visitor@example.com"})
	watches := &fakeWatchRepo{}
	offers := &fakeOffers{results: map[string][]entity.FlightOffer{
		"COK-BOM": offerAt(4000),
	}}
	notifier := &fakeNotifier{sendErr: errors.New("smtp down")}
	svc := newTestCartService(users, watches, offers, notifier)

	watch, err := svc.AddToCart(context.Background(), AddToCartInput{
		UserID:        "u1",
		Origin:        "COK",
		Destination:   "BOM",
		DepartureDate: tomorrow(),
		Adults:        1,
		CurrencyCode:  "INR",
	})
	assert.NilError(t, err)

	stored, err := svc.ListCart(context.Background(), "u1")
	assert.NilError(t, err)
	assert.Equal(t, len(stored), 1)
	assert.Equal(t, stored[0].ID, watch.ID)
}

func TestClearCartUnknownUser(t *testing.T) {
	svc := newTestCartService(newFakeUserRepo(), &fakeWatchRepo{}, &fakeOffers{}, &fakeNotifier{})
	err := svc.ClearCart(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestClearCartDeletesWatches(t *testing.T) {
	users := newFakeUserRepo(&entity.User{ID: "u1", Email: "visitor@example.com"})
	watches := &fakeWatchRepo{items: []entity.WatchWithOwner{
		{Watch: entity.WatchedFlight{ID: "w1", UserID: "u1", Price: 5000}},
		{Watch: entity.WatchedFlight{ID: "w2", UserID: "u2", Price: 3000}},
	}}
	svc := newTestCartService(users, watches, &fakeOffers{}, &fakeNotifier{})

	assert.NilError(t, svc.ClearCart(context.Background(), "u1"))

	mine, err := svc.ListCart(context.Background(), "u1")
	assert.NilError(t, err)
	assert.Equal(t, len(mine), 0)

	theirs, err := svc.ListCart(context.Background(), "u2")
	assert.NilError(t, err)
	assert.Equal(t, len(theirs), 1)
}
