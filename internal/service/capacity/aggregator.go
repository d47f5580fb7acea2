package capacity

import (
	"context"
	"fmt"
	"sync"

	"github.com/brils-gym/booking-api/internal/model"
	"github.com/brils-gym/booking-api/internal/repository"
	"github.com/brils-gym/booking-api/pkg/metrics"
	"github.com/brils-gym/booking-api/pkg/timeutil"
)

// Aggregator tracks live occupancy per slot key for the currently viewed
// date. The map is a cache of the store, not a lock: optimistic adjustments
// may drift from the authoritative counts until the next Refresh, which is
// the only reconciliation point.
type Aggregator struct {
	repo    repository.AppointmentRepository
	metrics *metrics.Metrics

	mu     sync.RWMutex
	date   string
	counts map[model.SlotKey]int
}

func NewAggregator(repo repository.AppointmentRepository, m *metrics.Metrics) *Aggregator {
	return &Aggregator{
		repo:    repo,
		metrics: m,
		counts:  make(map[model.SlotKey]int),
	}
}

// Refresh rebuilds the occupancy map from the store's booked rows for date.
// All-or-nothing: on store error the previous map is kept untouched.
func (a *Aggregator) Refresh(ctx context.Context, date string) error {
	ymd := timeutil.NormalizeYMD(date)

	timer := a.metrics.RefreshTimer()
	rows, err := a.repo.List(ctx, &model.AppointmentFilters{
		Date:   ymd,
		Status: model.AppointmentStatusBooked,
	})
	timer.ObserveDuration()
	if err != nil {
		return fmt.Errorf("failed to refresh capacity for %s: %w", ymd, err)
	}

	counts := make(map[model.SlotKey]int, len(rows))
	for _, row := range rows {
		counts[row.Key()]++
	}

	a.mu.Lock()
	a.date = ymd
	a.counts = counts
	a.mu.Unlock()
	return nil
}

// OccupancyFor is an exact-key lookup; unknown keys count as empty.
func (a *Aggregator) OccupancyFor(key model.SlotKey) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.counts[key]
}

// OccupancyForCustomWindow looks up the (no-slot, start, end) key. Despite
// the window name this is an exact-key hit, not a containment scan: custom
// bookings insert with these same normalized boundaries, so the key built
// here is the key incremented at booking time. Callers needing true range
// semantics must pre-key by the same boundaries.
func (a *Aggregator) OccupancyForCustomWindow(start, end string) int {
	return a.OccupancyFor(model.CustomWindowKey(start, end))
}

// Increment bumps a key after a successful persist. Never consults the
// store.
func (a *Aggregator) Increment(key model.SlotKey) {
	a.mu.Lock()
	a.counts[key]++
	occ := a.counts[key]
	a.mu.Unlock()
	a.metrics.SetOccupancy(key.String(), occ)
}

// Decrement lowers a key after a cancellation, floored at zero.
func (a *Aggregator) Decrement(key model.SlotKey) {
	a.mu.Lock()
	if a.counts[key] > 0 {
		a.counts[key]--
	}
	occ := a.counts[key]
	a.mu.Unlock()
	a.metrics.SetOccupancy(key.String(), occ)
}

// Date reports which date the current map was last refreshed for.
func (a *Aggregator) Date() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.date
}

// Snapshot copies the current map, mainly for handlers and tests.
func (a *Aggregator) Snapshot() map[model.SlotKey]int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[model.SlotKey]int, len(a.counts))
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}
