// Package events describes reservation lifecycle notifications emitted after a
// state change has been committed.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/kirinyoku/deskgo/internal/domain"
)

type Type string

const (
	ReservationCreated   Type = "reservation.created"
	ReservationCancelled Type = "reservation.cancelled"
	ReservationCheckedIn Type = "reservation.checked_in"
	ReservationExtended  Type = "reservation.extended"
	ReservationReturned  Type = "reservation.returned"
	ReservationForced    Type = "reservation.force_cancelled"
	ReservationAdvanced  Type = "reservation.status_advanced"
)

type Event struct {
	Type          Type                     `json:"type"`
	ReservationID int64                    `json:"reservation_id"`
	EmployeeID    int64                    `json:"employee_id"`
	SeatID        int64                    `json:"seat_id"`
	Status        domain.ReservationStatus `json:"status"`
	SeatStatus    domain.SeatStatus        `json:"seat_status,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

func New(t Type, r domain.Reservation, at time.Time) Event {
	return Event{
		Type:          t,
		ReservationID: r.ID,
		EmployeeID:    r.EmployeeID,
		SeatID:        r.SeatID,
		Status:        r.Status,
		OccurredAt:    at,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SeatChanges forwards only events that changed a seat's own status.
type SeatChanges struct {
	Next Publisher
}

func (s SeatChanges) Publish(ctx context.Context, ev Event) error {
	if s.Next == nil || ev.SeatStatus == "" {
		return nil
	}
	return s.Next.Publish(ctx, ev)
}
