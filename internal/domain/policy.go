package domain

import "time"

const (
	MaxReservationDuration = 8 * time.Hour
	DailyUsageLimit        = 8 * time.Hour
	ExtensionStep          = time.Hour
	NoShowGrace            = 10 * time.Minute

	DefaultPageLimit = 5
	MaxPageLimit     = 100
)

var transitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:  {StatusReserved, StatusCancelled},
	StatusReserved: {StatusInUse, StatusCancelled, StatusNoShow},
	StatusInUse:    {StatusCompleted, StatusForcedCancel},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Terminal statuses allow nothing.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

func (s ReservationStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReserved, StatusInUse, StatusNoShow,
		StatusCancelled, StatusCompleted, StatusForcedCancel:
		return true
	}
	return false
}

// Overlaps is the inclusive interval test used for every seat conflict check:
// intervals that only touch at an endpoint still overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !(aEnd.Before(bStart) || aStart.After(bEnd))
}

// Intersects is the history filter: the reservation neither starts after to
// nor ends before from.
func (r Reservation) Intersects(from, to time.Time) bool {
	return !r.StartTime.After(to) && !r.EndTime.Before(from)
}

// DayBounds returns the calendar day containing t in loc as [start, next start).
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ClippedSeconds is the length of [start, end) that falls inside
// [dayStart, dayEnd), in whole seconds.
func ClippedSeconds(start, end, dayStart, dayEnd time.Time) int64 {
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	if !end.After(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Second)
}

// CountsTowardDailyLimit excludes cancelled bookings from the daily cap.
func (s ReservationStatus) CountsTowardDailyLimit() bool {
	return s != StatusCancelled && s != StatusForcedCancel
}

// DailyUsageSeconds sums the clipped seconds of rs that touch the day. Rows
// superseded by an extension are skipped so a chain is counted once, and rows
// with IDs in exclude are ignored.
func DailyUsageSeconds(rs []Reservation, dayStart, dayEnd time.Time, exclude ...int64) int64 {
	superseded := make(map[int64]struct{})
	for _, r := range rs {
		if r.ExtendedFromReservationID != nil {
			superseded[*r.ExtendedFromReservationID] = struct{}{}
		}
	}

	skip := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	var total int64
	for _, r := range rs {
		if !r.Status.CountsTowardDailyLimit() {
			continue
		}
		if _, ok := superseded[r.ID]; ok {
			continue
		}
		if _, ok := skip[r.ID]; ok {
			continue
		}
		if r.StartTime.After(dayEnd) || r.EndTime.Before(dayStart) {
			continue
		}
		total += ClippedSeconds(r.StartTime, r.EndTime, dayStart, dayEnd)
	}

	return total
}
