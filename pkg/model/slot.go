package model

import (
	"time"
)

// SlotDuration is the advisory length of a published visit window. EndTime
// is derived from StartTime + SlotDuration and is not enforced as a hard
// invariant.
const SlotDuration = 30 * time.Minute

// PublishLeadTime is the minimum interval between "now" and a newly
// published slot's start.
const PublishLeadTime = 10 * time.Minute

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// TimeSlot is an agent-published visit window for a property. Slots are
// never updated in place; a changed time is a delete followed by a create.
type TimeSlot struct {
	ID         string    `json:"id" bson:"_id" validate:"required,uuid4"`
	PropertyID string    `json:"property_id" bson:"property_id" validate:"required"`
	Date       string    `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	StartTime  string    `json:"start_time" bson:"start_time" validate:"required,hhmm"`
	EndTime    string    `json:"end_time" bson:"end_time" validate:"omitempty,hhmm"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// StartsAt combines Date and StartTime into a wall-clock instant in loc.
func (s TimeSlot) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, s.Date+" "+s.StartTime, loc)
}

// SlotBatch is the publish payload: one date and a list of HH:MM starts.
type SlotBatch struct {
	Date  string   `json:"date" validate:"required,datetime=2006-01-02"`
	Times []string `json:"times" validate:"required,min=1,max=48"`
}

// AvailabilityCalendar is the derived view of a property's published slots:
// date -> slots ascending by start time, plus the sorted set of dates that
// still have at least one slot. It is computed, never persisted.
type AvailabilityCalendar struct {
	PropertyID     string                `json:"property_id"`
	Days           map[string][]TimeSlot `json:"days"`
	AvailableDates []string              `json:"available_dates"`
}

// Empty reports whether the calendar advertises no slots at all.
func (c AvailabilityCalendar) Empty() bool {
	return len(c.AvailableDates) == 0
}
