package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/metrics"
	"farewatch-service/pkg/utils"
	"farewatch-service/templates"

	"github.com/google/uuid"
)

// PriceWatcher re-prices every eligible watched flight against the
// live offer provider. When a fresh quote is strictly cheaper than
// the stored price it updates the watch and alerts the owner. Item
// failures never abort a cycle.
type PriceWatcher struct {
	watchRepo repository.WatchRepository
	offers    repository.OfferSearcher
	notifier  repository.Notifier
	events    repository.PriceEventRepository
	metrics   *metrics.Metrics
	logger    logger.Logger

	loc          *time.Location
	workers      int
	quoteTimeout time.Duration
}

// NewPriceWatcher creates a new price watcher
func NewPriceWatcher(
	watchRepo repository.WatchRepository,
	offers repository.OfferSearcher,
	notifier repository.Notifier,
	events repository.PriceEventRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
	loc *time.Location,
	workers int,
	quoteTimeout time.Duration,
) *PriceWatcher {
	if workers < 1 {
		workers = 1
	}
	return &PriceWatcher{
		watchRepo:    watchRepo,
		offers:       offers,
		notifier:     notifier,
		events:       events,
		metrics:      metrics,
		logger:       logger,
		loc:          loc,
		workers:      workers,
		quoteTimeout: quoteTimeout,
	}
}

// RunCycle performs one full reconciliation pass. A failure to list
// the eligible watches ends the cycle; everything else is isolated
// per item.
func (w *PriceWatcher) RunCycle(ctx context.Context) error {
	start := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.CycleDuration.Observe(time.Since(start).Seconds())
		}
	}()

	today := w.today()
	items, err := w.watchRepo.ListEligible(ctx, today)
	if err != nil {
		w.countError("list_eligible")
		return fmt.Errorf("failed to list eligible watches: %w", err)
	}

	if len(items) == 0 {
		w.logger.Debug("No eligible watches")
		return nil
	}

	w.logger.Info("Checking watched flights", "count", len(items))

	sem := make(chan struct{}, w.workers)
	var wg sync.WaitGroup
	for i := range items {
		item := items[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			w.checkWatch(ctx, item)
		}()
	}
	wg.Wait()

	return nil
}

// checkWatch re-prices a single watch. All failures are logged and
// swallowed so the rest of the cycle keeps going.
func (w *PriceWatcher) checkWatch(ctx context.Context, item entity.WatchWithOwner) {
	watch := item.Watch
	log := w.logger.With(
		"watchId", watch.ID,
		"origin", watch.Origin,
		"destination", watch.Destination,
		"departureDate", watch.DepartureDate.Format(utils.DATE_LAYOUT))

	if w.metrics != nil {
		w.metrics.WatchesChecked.Inc()
	}

	quoteCtx, cancel := context.WithTimeout(ctx, w.quoteTimeout)
	defer cancel()

	offers, err := w.offers.Search(quoteCtx, entity.OfferQuery{
		Origin:        watch.Origin,
		Destination:   watch.Destination,
		DepartureDate: watch.DepartureDate,
		ReturnDate:    watch.ReturnDate,
		Adults:        watch.Adults,
		CurrencyCode:  watch.CurrencyCode,
		MaxResults:    1,
	})
	if err != nil {
		w.countError("quote_fetch")
		log.Error("Failed to fetch quote", "error", err)
		return
	}
	if len(offers) == 0 {
		log.Debug("No offers returned, nothing to compare")
		return
	}

	newPrice := offers[0].TotalPrice
	oldPrice := watch.Price
	if newPrice >= oldPrice {
		return
	}

	reductionPct := utils.Round2((oldPrice - newPrice) / oldPrice * 100)

	// The write goes first: a notification is only sent for a price
	// the store has already accepted.
	if err := w.watchRepo.UpdatePrice(ctx, watch.ID, newPrice); err != nil {
		w.countError("price_update")
		log.Error("Failed to update price", "error", err, "newPrice", newPrice)
		return
	}

	if w.metrics != nil {
		w.metrics.PriceDrops.Inc()
	}
	log.Info("Price drop detected",
		"oldPrice", oldPrice,
		"newPrice", newPrice,
		"reductionPct", reductionPct)

	notification := templates.PriceDrop(templates.PriceDropParams{
		To:            item.OwnerEmail,
		Origin:        watch.Origin,
		Destination:   watch.Destination,
		DepartureDate: watch.DepartureDate.Format(utils.DATE_LAYOUT),
		OldPrice:      oldPrice,
		NewPrice:      newPrice,
		ReductionPct:  reductionPct,
		CurrencyCode:  watch.CurrencyCode,
	})

	notified := true
	if err := w.notifier.Send(ctx, notification); err != nil {
		notified = false
		w.countError("notification_send")
		log.Error("Failed to send price drop alert", "error", err, "to", item.OwnerEmail)
	} else if w.metrics != nil {
		w.metrics.NotificationsSent.Inc()
	}

	w.recordEvent(ctx, item, newPrice, reductionPct, notified, log)
}

// recordEvent appends the drop to the audit log, best effort.
func (w *PriceWatcher) recordEvent(ctx context.Context, item entity.WatchWithOwner, newPrice, reductionPct float64, notified bool, log logger.Logger) {
	if w.events == nil {
		return
	}

	event := &entity.PriceDropEvent{
		ID:            uuid.NewString(),
		WatchID:       item.Watch.ID,
		UserID:        item.Watch.UserID,
		Origin:        item.Watch.Origin,
		Destination:   item.Watch.Destination,
		DepartureDate: item.Watch.DepartureDate,
		OldPrice:      item.Watch.Price,
		NewPrice:      newPrice,
		ReductionPct:  reductionPct,
		CurrencyCode:  item.Watch.CurrencyCode,
		Notified:      notified,
		CreatedAt:     time.Now().UTC(),
	}

	if err := w.events.Save(ctx, event); err != nil {
		w.countError("event_save")
		log.Warn("Failed to record price drop event", "error", err)
	}
}

// today is the current calendar date in the schedule's time zone.
func (w *PriceWatcher) today() time.Time {
	now := time.Now().In(w.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (w *PriceWatcher) countError(operation string) {
	if w.metrics != nil {
		w.metrics.ErrorsCount.WithLabelValues(operation).Inc()
	}
}
