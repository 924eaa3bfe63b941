package clientsync

import (
	"context"
	"sync"
	"time"

	apperrors "homeshow/pkg/errors"
	"homeshow/pkg/model"
)

// VisitFetcher is the slice of the SDK the visit views need.
type VisitFetcher interface {
	Mine(ctx context.Context, status model.VisitStatus) ([]*model.VisitRequest, error)
	AssignedToMe(ctx context.Context, status model.VisitStatus) ([]*model.VisitRequest, error)
}

// VisitScope selects which side of the relationship a view shows.
type VisitScope int

const (
	// ScopeMine shows requests the actor created (buyer view).
	ScopeMine VisitScope = iota
	// ScopeAssigned shows requests the actor owns as recipient
	// (agent/admin view).
	ScopeAssigned
)

// VisitRequestView polls the full request list for one actor on a fixed
// interval while active. Polling suspends after an authentication or
// connectivity failure; a manual Refresh (or Resume) re-arms it. Failed
// fetches never clear already-displayed requests.
type VisitRequestView struct {
	fetcher VisitFetcher
	scope   VisitScope
	poller  *Poller

	mu        sync.Mutex
	requests  []*model.VisitRequest
	lastErr   error
	fetched   bool
	suspended bool
	gen       uint64
}

func NewVisitRequestView(fetcher VisitFetcher, scope VisitScope, interval time.Duration) *VisitRequestView {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	v := &VisitRequestView{fetcher: fetcher, scope: scope}
	v.poller = NewPoller(interval, v.tick)
	return v
}

// Start begins polling; the first fetch happens immediately. Stop when the
// consuming view goes inactive.
func (v *VisitRequestView) Start(ctx context.Context) {
	v.poller.Start(ctx)
}

func (v *VisitRequestView) Stop() {
	v.poller.Stop()
}

func (v *VisitRequestView) tick(ctx context.Context) {
	v.mu.Lock()
	if v.suspended {
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()
	_ = v.Refresh(ctx)
}

// Refresh fetches the authoritative list now, regardless of suspension; a
// success re-arms polling. Stale responses (a newer fetch was initiated
// meanwhile) are discarded so the view never flickers back to older data.
func (v *VisitRequestView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	var requests []*model.VisitRequest
	var err error
	if v.scope == ScopeAssigned {
		requests, err = v.fetcher.AssignedToMe(ctx, model.StatusFilterAll)
	} else {
		requests, err = v.fetcher.Mine(ctx, model.StatusFilterAll)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return nil
	}
	if err != nil {
		v.lastErr = err
		if apperrors.IsAuth(err) || apperrors.IsTransient(err) {
			v.suspended = true
		}
		return err
	}

	v.requests = requests
	v.fetched = true
	v.lastErr = nil
	v.suspended = false
	return nil
}

// Resume re-arms polling without waiting for a manual refresh, e.g. after
// the user logs back in.
func (v *VisitRequestView) Resume() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.suspended = false
}

// Requests returns the cached list filtered by exact status; "all" or empty
// returns everything. The filter is a pure predicate over the already
// fetched set, not a backend query.
func (v *VisitRequestView) Requests(status model.VisitStatus) []*model.VisitRequest {
	v.mu.Lock()
	defer v.mu.Unlock()
	return model.FilterByStatus(v.requests, status)
}

// Err reports the retryable error state of the last fetch.
func (v *VisitRequestView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// Suspended reports whether polling is paused due to an auth or
// connectivity failure. Consumers should present "stale due to backend
// issue" rather than "no data" while this is true and Loaded is set.
func (v *VisitRequestView) Suspended() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.suspended
}

func (v *VisitRequestView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetched
}
