package model

import (
	"time"
)

// VisitStatus is the lifecycle state of a visit request. The strings are
// wire values; "not visited" keeps its space because clients filter on the
// exact string.
type VisitStatus string

const (
	StatusPending    VisitStatus = "pending"
	StatusApproved   VisitStatus = "approved"
	StatusRejected   VisitStatus = "rejected"
	StatusVisited    VisitStatus = "visited"
	StatusNotVisited VisitStatus = "not visited"

	// StatusFilterAll is accepted by list endpoints and the client-side
	// filter predicate; it is never stored.
	StatusFilterAll VisitStatus = "all"
)

// ValidStatuses is the set of storable lifecycle states.
var ValidStatuses = []VisitStatus{
	StatusPending, StatusApproved, StatusRejected, StatusVisited, StatusNotVisited,
}

func (s VisitStatus) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state has no outgoing transitions.
// Rejected, visited and not visited requests can no longer be mutated or
// cancelled by either side.
func (s VisitStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusVisited || s == StatusNotVisited
}

// CanTransition encodes the closed state machine:
// pending -> approved | rejected, approved -> visited | not visited.
func CanTransition(from, to VisitStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusVisited || to == StatusNotVisited
	default:
		return false
	}
}

// VisitRequest is a buyer-initiated request to visit a property at a
// specific instant. ScheduledAt is deliberately not tied to a published
// TimeSlot; slots are advisory only.
type VisitRequest struct {
	ID          string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID  string      `json:"property_id" bson:"property_id" validate:"required"`
	RequesterID string      `json:"requester_id" bson:"requester_id" validate:"required"`
	RecipientID string      `json:"recipient_id" bson:"recipient_id" validate:"required"`
	ScheduledAt time.Time   `json:"scheduled_at" bson:"scheduled_at" validate:"required"`
	Note        string      `json:"note,omitempty" bson:"note" validate:"omitempty,max=500"`
	Status      VisitStatus `json:"status" bson:"status" validate:"required,visit_status"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// VisitReschedule is the requester's reschedule payload. A nil Note leaves
// the existing note untouched.
type VisitReschedule struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Note        *string   `json:"note,omitempty" validate:"omitempty,max=500"`
}

// VisitStatusChange moves a pending request to approved or rejected.
type VisitStatusChange struct {
	Status VisitStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// VisitOutcome records the terminal outcome of an approved request.
type VisitOutcome struct {
	Outcome VisitStatus `json:"outcome" validate:"required,oneof=visited 'not visited'"`
}

// FilterByStatus is a pure predicate over an already-fetched set. An empty
// status or "all" returns the input unchanged.
func FilterByStatus(requests []*VisitRequest, status VisitStatus) []*VisitRequest {
	if status == "" || status == StatusFilterAll {
		return requests
	}
	var out []*VisitRequest
	for _, r := range requests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
