package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/events"
	"github.com/kirinyoku/deskgo/internal/repository/memory"
)

type recorder struct {
	got []events.Event
}

func (r *recorder) Publish(_ context.Context, ev events.Event) error {
	r.got = append(r.got, ev)
	return nil
}

func TestForceReturnSeat(t *testing.T) {
	store := memory.New()
	store.Seed(memory.DemoDataset())
	pub := &recorder{}
	svc := New(store, pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	base := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	mk := func(seatID int64, st domain.ReservationStatus) int64 {
		id, err := store.Reservations().Create(ctx, &domain.Reservation{
			EmployeeID: 1, SeatID: seatID, StartTime: base, EndTime: base.Add(time.Hour), Status: st,
		})
		require.NoError(t, err)
		return id
	}

	a := mk(7, domain.StatusInUse)
	b := mk(7, domain.StatusInUse)
	reserved := mk(7, domain.StatusReserved)
	elsewhere := mk(8, domain.StatusInUse)
	require.NoError(t, store.Seats().UpdateSeatStatus(ctx, 7, domain.SeatUnavailable))

	n, err := svc.ForceReturnSeat(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	status := func(id int64) domain.ReservationStatus {
		r, err := store.Reservations().Get(ctx, id)
		require.NoError(t, err)
		return r.Status
	}
	assert.Equal(t, domain.StatusForcedCancel, status(a))
	assert.Equal(t, domain.StatusForcedCancel, status(b))
	assert.Equal(t, domain.StatusReserved, status(reserved))
	assert.Equal(t, domain.StatusInUse, status(elsewhere))

	seat, err := store.Seats().GetSeat(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatUnavailable, seat.Status)

	require.Len(t, pub.got, 2)
	assert.Equal(t, events.ReservationForced, pub.got[0].Type)

	n, err = svc.ForceReturnSeat(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.ForceReturnSeat(ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeatStatus(t *testing.T) {
	store := memory.New()
	store.Seed(memory.DemoDataset())
	svc := New(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, store.Seats().UpdateSeatStatus(ctx, 11, domain.SeatBroken))

	seats, err := svc.SeatStatus(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, seats, 10)
	assert.Equal(t, domain.SeatBroken, seats[0].Status)

	_, err = svc.SeatStatus(ctx, 1, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
