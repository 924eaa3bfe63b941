// Package calendar holds the pure time math behind property availability:
// building the derived calendar from raw slots, pruning it against
// wall-clock "now", and suggesting publishable windows. Nothing here talks
// to the network or the database, which is what keeps the expiry sweeper
// testable in isolation.
package calendar

import (
	"regexp"
	"sort"
	"time"

	"homeshow/pkg/model"
)

var hhmmRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTime reports whether s is an HH:MM 24-hour time string.
func ValidTime(s string) bool {
	return hhmmRe.MatchString(s)
}

// DropMalformed filters out entries that are not HH:MM 24-hour strings.
// Malformed times are silently discarded before any lead-time validation.
func DropMalformed(times []string) []string {
	var out []string
	for _, t := range times {
		if ValidTime(t) {
			out = append(out, t)
		}
	}
	return out
}

// EndTime returns the advisory end of a slot starting at HH:MM start.
// The wrap past midnight is intentional: the end time is informational only.
func EndTime(start string) string {
	t, err := time.Parse(model.TimeLayout, start)
	if err != nil {
		return ""
	}
	return t.Add(model.SlotDuration).Format(model.TimeLayout)
}

// LeadTimeViolations returns the subset of times whose date@time instant
// falls before now + PublishLeadTime. Times must already be well-formed.
func LeadTimeViolations(date string, times []string, now time.Time) []string {
	cutoff := now.Add(model.PublishLeadTime)
	var bad []string
	for _, hm := range times {
		at, err := time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, date+" "+hm, now.Location())
		if err != nil || at.Before(cutoff) {
			bad = append(bad, hm)
		}
	}
	return bad
}

// Build groups raw slots into the derived calendar: date -> slots ascending
// by start time, with AvailableDates sorted ascending. It does no pruning;
// pair it with Prune for a future-only view.
func Build(propertyID string, slots []model.TimeSlot) model.AvailabilityCalendar {
	days := make(map[string][]model.TimeSlot)
	for _, s := range slots {
		days[s.Date] = append(days[s.Date], s)
	}

	dates := make([]string, 0, len(days))
	for d := range days {
		sort.Slice(days[d], func(i, j int) bool {
			return days[d][i].StartTime < days[d][j].StartTime
		})
		dates = append(dates, d)
	}
	sort.Strings(dates)

	return model.AvailabilityCalendar{
		PropertyID:     propertyID,
		Days:           days,
		AvailableDates: dates,
	}
}

// Prune removes expired entries relative to now and reports whether the
// calendar changed. Dates before today are dropped wholesale; for today,
// slots whose start time has been reached (start <= now) are dropped; dates
// after today are never touched. Dates left without slots disappear from
// AvailableDates entirely. Prune is idempotent: pruning an already-pruned
// calendar changes nothing.
func Prune(cal model.AvailabilityCalendar, now time.Time) (model.AvailabilityCalendar, bool) {
	today := now.Format(model.DateLayout)
	nowTime := now.Format(model.TimeLayout)

	changed := false
	days := make(map[string][]model.TimeSlot, len(cal.Days))
	for date, slots := range cal.Days {
		switch {
		case date < today:
			changed = true
			continue
		case date == today:
			kept := slots[:0:0]
			for _, s := range slots {
				if s.StartTime > nowTime {
					kept = append(kept, s)
				}
			}
			if len(kept) != len(slots) {
				changed = true
			}
			if len(kept) == 0 {
				continue
			}
			days[date] = kept
		default:
			days[date] = slots
		}
	}
	if !changed {
		return cal, false
	}

	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	return model.AvailabilityCalendar{
		PropertyID:     cal.PropertyID,
		Days:           days,
		AvailableDates: dates,
	}, true
}

// SuggestNextWindow computes the next half-hour-aligned start at or after
// now + PublishLeadTime, paired with an end 30 minutes later. It returns
// ok=false when the pair would not survive validation against the given
// date, which only happens for "today" once the remaining aligned starts
// have slipped inside the lead window (or past midnight).
func SuggestNextWindow(date string, now time.Time) (start, end string, ok bool) {
	earliest := now.Add(model.PublishLeadTime)
	y, mo, d := earliest.Date()
	hh, mm := earliest.Hour(), earliest.Minute()
	if earliest.Second() > 0 || earliest.Nanosecond() > 0 {
		mm++
	}
	switch {
	case mm == 0 || mm == 30:
	case mm < 30:
		mm = 30
	default:
		mm = 0
		hh++
	}
	aligned := time.Date(y, mo, d, hh, mm, 0, 0, earliest.Location())

	// An aligned start that rolled past midnight cannot be expressed
	// against today's date.
	if date == now.Format(model.DateLayout) && aligned.Format(model.DateLayout) != date {
		return "", "", false
	}

	start = aligned.Format(model.TimeLayout)
	if len(LeadTimeViolations(date, []string{start}, now)) > 0 {
		return "", "", false
	}
	return start, EndTime(start), true
}
