package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/repository"
)

func newSeededStore(t *testing.T) *Store {
	t.Helper()

	s := New()
	s.Seed(DemoDataset())
	return s
}

func addReservation(t *testing.T, s *Store, r domain.Reservation) int64 {
	t.Helper()

	id, err := s.Reservations().Create(context.Background(), &r)
	require.NoError(t, err)
	return id
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)

	boom := errors.New("boom")
	err := s.InTx(ctx, nil, func(ctx context.Context, repos repository.Repos) error {
		_, err := repos.Reservations().Create(ctx, &domain.Reservation{
			EmployeeID: 1, SeatID: 1, StartTime: base, EndTime: base.Add(time.Hour), Status: domain.StatusPending,
		})
		require.NoError(t, err)
		require.NoError(t, repos.Seats().UpdateSeatStatus(ctx, 1, domain.SeatBroken))
		return boom
	})
	require.ErrorIs(t, err, boom)

	seat, err := s.Seats().GetSeat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatAvailable, seat.Status)

	rs, err := s.Reservations().ListByEmployee(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestCreateRejectsUnknownSeat(t *testing.T) {
	s := newSeededStore(t)

	_, err := s.Reservations().Create(context.Background(), &domain.Reservation{SeatID: 999})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListBookedUsesInclusiveOverlap(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)

	booked := addReservation(t, s, domain.Reservation{
		EmployeeID: 1, SeatID: 7, StartTime: base, EndTime: base.Add(time.Hour), Status: domain.StatusReserved,
	})
	addReservation(t, s, domain.Reservation{
		EmployeeID: 2, SeatID: 7, StartTime: base, EndTime: base.Add(time.Hour), Status: domain.StatusCancelled,
	})
	addReservation(t, s, domain.Reservation{
		EmployeeID: 3, SeatID: 8, StartTime: base.Add(3 * time.Hour), EndTime: base.Add(4 * time.Hour), Status: domain.StatusInUse,
	})

	got, err := s.Reservations().ListBooked(ctx, []int64{7, 8}, base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, booked, got[0].ID)

	got, err = s.Reservations().ListBooked(ctx, []int64{7, 8}, base.Add(61*time.Minute), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmployeeIndexOrdering(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)

	late := addReservation(t, s, domain.Reservation{
		EmployeeID: 5, SeatID: 1, StartTime: base.Add(5 * time.Hour), EndTime: base.Add(6 * time.Hour), Status: domain.StatusPending,
	})
	early := addReservation(t, s, domain.Reservation{
		EmployeeID: 5, SeatID: 2, StartTime: base, EndTime: base.Add(time.Hour), Status: domain.StatusPending,
	})

	byID, err := s.Reservations().ListByEmployee(ctx, 5)
	require.NoError(t, err)
	require.Len(t, byID, 2)
	assert.Equal(t, []int64{late, early}, []int64{byID[0].ID, byID[1].ID})

	byStart, err := s.Reservations().ListByEmployeeBetween(ctx, 5, base.Add(-time.Hour), base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, byStart, 2)
	assert.Equal(t, []int64{early, late}, []int64{byStart[0].ID, byStart[1].ID})
}

func TestTransitionIsCompareAndSet(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)

	id := addReservation(t, s, domain.Reservation{
		EmployeeID: 1, SeatID: 1, StartTime: base, EndTime: base.Add(time.Hour), Status: domain.StatusPending,
	})

	ok, err := s.Reservations().Transition(ctx, id, domain.StatusPending, domain.StatusReserved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Reservations().Transition(ctx, id, domain.StatusPending, domain.StatusReserved)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Reservations().Transition(ctx, id, domain.StatusReserved, domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestListDue(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)
	checkedIn := now.Add(-time.Hour)

	due := addReservation(t, s, domain.Reservation{
		EmployeeID: 1, SeatID: 1, StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: domain.StatusReserved,
	})
	addReservation(t, s, domain.Reservation{
		EmployeeID: 2, SeatID: 2, StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: domain.StatusReserved, CheckInAt: &checkedIn,
	})
	addReservation(t, s, domain.Reservation{
		EmployeeID: 3, SeatID: 3, StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour), Status: domain.StatusReserved,
	})

	got, err := s.Reservations().ListDue(ctx, repository.DueQuery{
		Status:       domain.StatusReserved,
		StartBefore:  now.Add(-domain.NoShowGrace),
		NotCheckedIn: true,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, due, got[0].ID)
}

func TestFindFloor(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	f, err := s.Seats().FindFloor(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.ID)

	_, err = s.Seats().FindFloor(ctx, 1, 9)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	seats, err := s.Seats().ListSeatsByFloor(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, seats, 10)
	assert.Equal(t, "2F-01", seats[0].Name)
}
