package clientsync

import (
	"context"
	"sync"
	"time"

	"homeshow/pkg/calendar"
	"homeshow/pkg/model"
)

// AvailabilityFetcher is the slice of the SDK the view needs.
type AvailabilityFetcher interface {
	GetAvailability(ctx context.Context, propertyID string) (model.AvailabilityCalendar, error)
}

// AvailabilityView caches one property's calendar and keeps it consistent
// with wall-clock time. The cache is mutated only by a confirmed fetch or
// by the local sweeper; a failed fetch never clears displayed data. There
// is no interval re-fetch: the sweeper handles expiry locally and callers
// force a fetch with Refresh or by switching property.
type AvailabilityView struct {
	fetcher AvailabilityFetcher
	now     func() time.Time
	sweeper *Poller

	mu         sync.Mutex
	propertyID string
	cal        model.AvailabilityCalendar
	lastErr    error
	fetched    bool
	gen        uint64
}

func NewAvailabilityView(fetcher AvailabilityFetcher, propertyID string) *AvailabilityView {
	v := &AvailabilityView{
		fetcher:    fetcher,
		now:        time.Now,
		propertyID: propertyID,
	}
	v.sweeper = NewPoller(DefaultSweepInterval, func(context.Context) { v.Sweep() })
	return v
}

// WithClock overrides the wall clock, for tests.
func (v *AvailabilityView) WithClock(now func() time.Time) *AvailabilityView {
	v.now = now
	return v
}

// Start fetches once and begins the sweeper. Stop with Stop when the
// consuming view goes inactive.
func (v *AvailabilityView) Start(ctx context.Context) {
	v.sweeper.Start(ctx) // first poller run fetches nothing; sweep is cheap
	_ = v.Refresh(ctx)
}

func (v *AvailabilityView) Stop() {
	v.sweeper.Stop()
}

// SetProperty switches the view to another property and fetches its
// calendar. The old property's data is dropped immediately so a slow fetch
// cannot show one property's slots under another's id.
func (v *AvailabilityView) SetProperty(ctx context.Context, propertyID string) error {
	v.mu.Lock()
	v.propertyID = propertyID
	v.cal = model.AvailabilityCalendar{PropertyID: propertyID}
	v.fetched = false
	v.gen++ // invalidate any in-flight fetch for the old property
	v.mu.Unlock()

	return v.Refresh(ctx)
}

// Refresh forces a fetch. On success the raw calendar is pruned and becomes
// the cache; on failure the previous cache stays and the error is recorded
// as a retryable state. A response that arrives after a newer fetch was
// initiated is discarded.
func (v *AvailabilityView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	propertyID := v.propertyID
	v.mu.Unlock()

	cal, err := v.fetcher.GetAvailability(ctx, propertyID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return nil // a newer fetch owns the cache now
	}
	if err != nil {
		v.lastErr = err
		return err
	}

	pruned, _ := calendar.Prune(cal, v.now())
	v.cal = pruned
	v.fetched = true
	v.lastErr = nil
	return nil
}

// Sweep applies the expiry transform to the cache, replacing it only when
// something actually expired.
func (v *AvailabilityView) Sweep() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if pruned, changed := calendar.Prune(v.cal, v.now()); changed {
		v.cal = pruned
	}
}

// Calendar returns the current pruned snapshot.
func (v *AvailabilityView) Calendar() model.AvailabilityCalendar {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cal
}

// Err returns the retryable error state from the last fetch, nil after a
// successful one. Stale-but-present data with a non-nil Err means "showing
// last known state due to a backend issue", distinct from "no data".
func (v *AvailabilityView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// Loaded reports whether at least one fetch has succeeded for the current
// property.
func (v *AvailabilityView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetched
}
