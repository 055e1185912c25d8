package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kirinyoku/deskgo/internal/domain"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestMultiPublishesToAll(t *testing.T) {
	failing := &recorder{err: errors.New("broker down")}
	ok := &recorder{}

	at := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	ev := New(ReservationCreated, domain.Reservation{ID: 4, EmployeeID: 2, SeatID: 9, Status: domain.StatusPending}, at)

	err := Multi{failing, nil, ok}.Publish(context.Background(), ev)

	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, []Event{ev}, ok.got)
	assert.Equal(t, int64(9), ok.got[0].SeatID)
	assert.Equal(t, domain.StatusPending, ok.got[0].Status)
}

func TestSeatChangesFilters(t *testing.T) {
	next := &recorder{}
	p := SeatChanges{Next: next}
	ctx := context.Background()

	_ = p.Publish(ctx, Event{Type: ReservationCreated, SeatID: 1})
	checkedIn := Event{Type: ReservationCheckedIn, SeatID: 1, SeatStatus: domain.SeatUnavailable}
	_ = p.Publish(ctx, checkedIn)

	assert.Equal(t, []Event{checkedIn}, next.got)
	assert.NoError(t, SeatChanges{}.Publish(ctx, checkedIn))
}
