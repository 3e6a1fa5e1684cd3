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

// fakeWatchRepo is an in-memory watch store. ListEligible applies
// the same departure-date filter as the SQL implementation.
type fakeWatchRepo struct {
	mu         sync.Mutex
	items      []entity.WatchWithOwner
	updates    []string
	updateErrs map[string]error
	listErr    error
}

func (r *fakeWatchRepo) Insert(ctx context.Context, watch *entity.WatchedFlight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, entity.WatchWithOwner{Watch: *watch})
	return nil
}

func (r *fakeWatchRepo) ListByUser(ctx context.Context, userID string) ([]entity.WatchedFlight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var watches []entity.WatchedFlight
	for _, item := range r.items {
		if item.Watch.UserID == userID {
			watches = append(watches, item.Watch)
		}
	}
	return watches, nil
}

func (r *fakeWatchRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, item := range r.items {
		if item.Watch.UserID != userID {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

func (r *fakeWatchRepo) ListEligible(ctx context.Context, from time.Time) ([]entity.WatchWithOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var eligible []entity.WatchWithOwner
	for _, item := range r.items {
		if !item.Watch.DepartureDate.Before(from) {
			eligible = append(eligible, item)
		}
	}
	return eligible, nil
}

func (r *fakeWatchRepo) UpdatePrice(ctx context.Context, id string, newPrice float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErrs[id]; err != nil {
		return err
	}
	for i := range r.items {
		if r.items[i].Watch.ID == id {
			r.items[i].Watch.Price = newPrice
		}
	}
	r.updates = append(r.updates, id)
	return nil
}

func (r *fakeWatchRepo) priceOf(id string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.Watch.ID == id {
			return item.Watch.Price
		}
	}
	return -1
}

// fakeOffers serves canned quotes keyed by origin-destination.
type fakeOffers struct {
	mu      sync.Mutex
	results map[string][]entity.FlightOffer
	errs    map[string]error
	queries []entity.OfferQuery
}

func routeKey(origin, destination string) string {
	return origin + "-" + destination
}

func (f *fakeOffers) Search(ctx context.Context, query entity.OfferQuery) ([]entity.FlightOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	key := routeKey(query.Origin, query.Destination)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.results[key], nil
}

func (f *fakeOffers) queriedRoutes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var routes []string
	for _, q := range f.queries {
		routes = append(routes, routeKey(q.Origin, q.Destination))
	}
	return routes
}

// fakeNotifier records every sent notification.
type fakeNotifier struct {
	mu      sync.Mutex
	sent    []*entity.Notification
	sendErr error
}

func (f *fakeNotifier) Send(ctx context.Context, n *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeEvents records price drop events.
type fakeEvents struct {
	mu     sync.Mutex
	events []*entity.PriceDropEvent
}

func (f *fakeEvents) Save(ctx context.Context, event *entity.PriceDropEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEvents) ListByWatch(ctx context.Context, watchID string, limit int) ([]*entity.PriceDropEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events, nil
}

var (
	_ repository.WatchRepository      = (*fakeWatchRepo)(nil)
	_ repository.OfferSearcher        = (*fakeOffers)(nil)
	_ repository.Notifier             = (*fakeNotifier)(nil)
	_ repository.PriceEventRepository = (*fakeEvents)(nil)
)

func offerAt(price float64) []entity.FlightOffer {
	return []entity.FlightOffer{{
		Airline:      "6E",
		FlightNumber: "345",
		TotalPrice:   price,
		Currency:     "INR",
	}}
}

func watchItem(id, origin, destination string, departure time.Time, price float64, email string) entity.WatchWithOwner {
	return entity.WatchWithOwner{
		Watch: entity.WatchedFlight{
			ID:            id,
			UserID:        "user-" + id,
			Origin:        origin,
			Destination:   destination,
			DepartureDate: departure,
			Adults:        1,
			CurrencyCode:  "INR",
			Price:         price,
		},
		OwnerEmail: email,
	}
}

func newTestWatcher(watches *fakeWatchRepo, offers *fakeOffers, notifier *fakeNotifier, events *fakeEvents) *PriceWatcher {
	return NewPriceWatcher(watches, offers, notifier, events, nil,
		logger.NewNop(), time.UTC, 1, time.Second)
}

func tomorrow() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

func yesterday() time.Time {
	return tomorrow().AddDate(0, 0, -2)
}

func TestRunCyclePriceDropUpdatesAndNotifies(t *testing.T) {
	watches := &fakeWatchRepo{items: []entity.WatchWithOwner{
		watchItem("w1", "COK", "BOM", tomorrow(), 5000, "owner@example.com"),
	}}
	offers := &fakeOffers{results: map[string][]entity.FlightOffer{
		"COK-BOM": offerAt(4000),
	}}
	notifier := &fakeNotifier{}
	events := &fakeEvents{}

	watcher := newTestWatcher(watches, offers, notifier, events)
	assert.NilError(t, watcher.RunCycle(context.Background()))

	assert.Equal(t, watches.priceOf("w1"), 4000.0)
	assert.Equal(t, notifier.count(), 1)

	sent := notifier.sent[0]
	assert.Equal(t, sent.To, "owner@example.com")
	assert.Equal(t, sent.Type, entity.PriceDropAlert)
	assert.Assert(t, strings.Contains(sent.Body, "dropped by 20.00%"))
	assert.Assert(t, strings.Contains(sent.Body, "New Price: 4000.00 INR"))
	assert.Assert(t, strings.Contains(sent.Body, "Old Price: 5000.00 INR"))

	assert.Equal(t, len(events.events), 1)
	assert.Equal(t, events.events[0].ReductionPct, 20.0)
	assert.Equal(t, events.events[0].Notified, true)
}

func TestRunCycleHigherPriceNoAction(t *testing.T) {
	watches := &fakeWatchRepo{items: []entity.WatchWithOwner{
		watchItem("w1", "COK", "BOM", tomorrow(), 5000, "owner@example.com"),
	}}
	offers := &fakeOffers{results: map[string][]entity.FlightOffer{
		"COK-BOM": offerAt(5200),
	}}
	notifier := &fakeNotifier{}

	watcher := newTestWatcher(watches, offers, notifier, &fakeEvents{})
	assert.NilError(t, watcher.RunCycle(context.Background()))

	assert.Equal(t, watches.priceOf("w1"), 5000.0)
	assert.Equal(t, notifier.count(), 0)
}

func TestRunCycleEqualPriceNoAction(t *testing.T) {
	watches := &fakeWatchRepo{items: []entity.WatchWithOwner{
		watchItem("w1", "COK", "BOM", tomorrow(), 5000, "owner@example.com"),
	}}
	offers := &fakeOffers{results: map[string][]entity.FlightOffer{
		"COK-BOM": offerAt(5000),
	}}
	notifier := &fakeNotifier{}

	watcher := newTestWatcher(watches, offers, notifier, &fakeEvents{})
	assert.NilError(t, watcher.RunCycle(context.Background()))

	assert.Equal(t, watches.priceOf("w1"), 5000.0)
	assert.Equal(t, notifier.count(), 0)
}

func TestRunCycleNoOffersSkipsItem(t *testing.T) {
	watches := &fakeWatchRepo{items: []entity.WatchWithOwner{
		watchItem("w1", "COK", "BOM", tomorrow(), 5000, "a@example.com"),
		watchItem("w2", "DEL", "MAA", tomorrow(), 3000, "b@example.com"),
	}}
	offers := &fakeOffers{results: map[string][]entity.FlightOffer{
		"DEL-MAA": offerAt(2500),
	}}
	notifier := &fakeNotifier{}

	watcher := newTestWatcher(watches, offers, notifier, &fakeEvents{})
	assert.NilError(t, watcher.RunCycle(context.Background()))

	assert.Equal(t, watches.priceOf("w1"), 5000.0)
	assert.Equal(t, watches.priceOf("w2"), 2500.0)
	assert.Equal(t, notifier.count(), 1)
}

func TestRunCyclePastDepartureExcluded(t *testing.T) {
	watches := &fakeWatchRepo{items: []entity.WatchWithOwner{
		watchItem("w1", "COK", "BOM", yesterday(), 5000, "owner@example.com"),
	}}
	offers := &fakeOffers{results: map[string][]entity.FlightOffer{
		"COK-BOM": offerAt(100),
	}}
	notifier := &fakeNotifier{}

	watcher := newTestWatcher(watches, offers, notifier, &fakeEvents{})
	assert.NilError(t, watcher.RunCycle(context.Background()))

	assert.Equal(t, len(offers.queriedRoutes()), 0)
	assert.Equal(t, watches.priceOf("w1"), 5000.0)
	assert.Equal(t, notifier.count(), 0)
}

func TestRunCycleProviderFailureIsolated(t *testing.T) {
	watches := &fakeWatchRepo{items: []entity.WatchWithOwner{
		watchItem("w1", "COK", "BOM", tomorrow(), 5000, "a@example.com"),
		watchItem("w2", "DEL", "MAA", tomorrow(), 3000, "b@example.com"),
	}}
	offers := &fakeOffers{
		results: map[string][]entity.FlightOffer{
			"DEL-MAA": offerAt(2500),
		},
		errs: map[string]error{
			"COK-BOM": errors.New("provider unavailable"),
		},
	}
	notifier := &fakeNotifier{}

	watcher := newTestWatcher(watches, offers, notifier, &fakeEvents{})
	assert.NilError(t, watcher.RunCycle(context.Background()))

	assert.Equal(t, watches.priceOf("w1"), 5000.0)
	assert.Equal(t, watches.priceOf("w2"), 2500.0)
	assert.Equal(t, notifier.count(), 1)
	assert.Equal(t, notifier.sent[0].To, "b@example.com")
}

func TestRunCycleIdempotentRerun(t *testing.T) {
	watches := &fakeWatchRepo{items: []entity.WatchWithOwner{
		watchItem("w1", "COK", "BOM", tomorrow(), 5000, "owner@example.com"),
	}}
	offers := &fakeOffers{results: map[string][]entity.FlightOffer{
		"COK-BOM": offerAt(4000),
	}}
	notifier := &fakeNotifier{}

	watcher := newTestWatcher(watches, offers, notifier, &fakeEvents{})
	assert.NilError(t, watcher.RunCycle(context.Background()))
	assert.NilError(t, watcher.RunCycle(context.Background()))

	assert.Equal(t, watches.priceOf("w1"), 4000.0)
	assert.Equal(t, notifier.count(), 1)
}

func TestRunCycleWriteFailureSuppressesNotification(t *testing.T) {
	watches := &fakeWatchRepo{
		items: []entity.WatchWithOwner{
			watchItem("w1", "COK", "BOM", tomorrow(), 5000, "owner@example.com"),
		},
		updateErrs: map[string]error{"w1": errors.New("connection lost")},
	}
	offers := &fakeOffers{results: map[string][]entity.FlightOffer{
		"COK-BOM": offerAt(4000),
	}}
	notifier := &fakeNotifier{}

	watcher := newTestWatcher(watches, offers, notifier, &fakeEvents{})
	assert.NilError(t, watcher.RunCycle(context.Background()))

	assert.Equal(t, watches.priceOf("w1"), 5000.0)
	assert.Equal(t, notifier.count(), 0)
}

func TestRunCycleNotifyFailureStillRecordsEvent(t *testing.T) {
	watches := &fakeWatchRepo{items: []entity.WatchWithOwner{
		watchItem("w1", "COK", "BOM", tomorrow(), 5000, "owner@example.com"),
	}}
	offers := &fakeOffers{results: map[string][]entity.FlightOffer{
		"COK-BOM": offerAt(4000),
	}}
	notifier := &fakeNotifier{sendErr: errors.New("smtp down")}
	events := &fakeEvents{}

	watcher := newTestWatcher(watches, offers, notifier, events)
	assert.NilError(t, watcher.RunCycle(context.Background()))

	// The write already happened; the failed send is only logged.
	assert.Equal(t, watches.priceOf("w1"), 4000.0)
	assert.Equal(t, len(events.events), 1)
	assert.Equal(t, events.events[0].Notified, false)
}

func TestRunCycleListFailureEndsCycle(t *testing.T) {
	watches := &fakeWatchRepo{listErr: errors.New("store unreachable")}
	offers := &fakeOffers{}
	notifier := &fakeNotifier{}

	watcher := newTestWatcher(watches, offers, notifier, &fakeEvents{})
	err := watcher.RunCycle(context.Background())
	assert.ErrorContains(t, err, "store unreachable")
	assert.Equal(t, notifier.count(), 0)
}

func TestRunCycleQueriesWithSingleResult(t *testing.T) {
	returnDate := tomorrow().AddDate(0, 0, 7)
	item := watchItem("w1", "COK", "BOM", tomorrow(), 5000, "owner@example.com")
	item.Watch.ReturnDate = &returnDate
	watches := &fakeWatchRepo{items: []entity.WatchWithOwner{item}}
	offers := &fakeOffers{}

	watcher := newTestWatcher(watches, offers, &fakeNotifier{}, &fakeEvents{})
	assert.NilError(t, watcher.RunCycle(context.Background()))

	assert.Equal(t, len(offers.queries), 1)
	query := offers.queries[0]
	assert.Equal(t, query.MaxResults, 1)
	assert.Equal(t, query.Adults, 1)
	assert.Equal(t, query.CurrencyCode, "INR")
	assert.Assert(t, query.ReturnDate != nil)
	assert.Equal(t, *query.ReturnDate, returnDate)
}

func TestRunCycleConcurrentWorkers(t *testing.T) {
	var items []entity.WatchWithOwner
	results := map[string][]entity.FlightOffer{}
	routes := []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF"}
	for i, code := range routes {
		id := string(rune('a' + i))
		items = append(items, watchItem(id, code, "BOM", tomorrow(), 5000, id+"@example.com"))
		results[routeKey(code, "BOM")] = offerAt(4000)
	}
	watches := &fakeWatchRepo{items: items}
	offers := &fakeOffers{results: results}
	notifier := &fakeNotifier{}

	watcher := NewPriceWatcher(watches, offers, notifier, &fakeEvents{}, nil,
		logger.NewNop(), time.UTC, 4, time.Second)
	assert.NilError(t, watcher.RunCycle(context.Background()))

	assert.Equal(t, notifier.count(), len(routes))
	for _, item := range items {
		assert.Equal(t, watches.priceOf(item.Watch.ID), 4000.0)
	}
}
