//go:build integration

package postgresrepo_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/postgres"
	"github.com/kirinyoku/deskgo/internal/repository"
	postgresrepo "github.com/kirinyoku/deskgo/internal/repository/postgres"
	"github.com/kirinyoku/deskgo/internal/service/reservation"
)

var day = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time { return day.Add(time.Duration(hour) * time.Hour) }

// newStore connects to TEST_DATABASE_URL, applies the schema and seeds one
// building with a floor of three seats (ids 1..3).
func newStore(t *testing.T) *postgresrepo.Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := postgres.New(ctx, postgres.Config{DSN: dsn, AppName: "deskgo-test"})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := postgresrepo.NewStore(pool)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx), "schema must be re-appliable")

	_, err = pool.Exec(ctx, `TRUNCATE reservations, seats, floors, buildings RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO buildings(name, address) VALUES ('HQ', '1 Main Street');
		INSERT INTO floors(building_id, floor_number) VALUES (1, 1);
		INSERT INTO seats(floor_id, name) VALUES (1, '1F-01'), (1, '1F-02'), (1, '1F-03');`)
	require.NoError(t, err)

	return store
}

func create(t *testing.T, store *postgresrepo.Store, r domain.Reservation) int64 {
	t.Helper()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = day
	}
	id, err := store.Reservations().Create(context.Background(), &r)
	require.NoError(t, err)
	return id
}

func TestReservationRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	checkIn := at(9)
	id := create(t, store, domain.Reservation{
		EmployeeID: 7, SeatID: 2, StartTime: at(9), EndTime: at(11), Status: domain.StatusInUse, CheckInAt: &checkIn,
	})
	ext := create(t, store, domain.Reservation{
		EmployeeID: 7, SeatID: 2, StartTime: at(9), EndTime: at(12), Status: domain.StatusInUse, ExtendedFromReservationID: &id,
	})

	got, err := store.Reservations().Get(ctx, ext)
	require.NoError(t, err)
	assert.True(t, got.EndTime.Equal(at(12)))
	require.NotNil(t, got.ExtendedFromReservationID)
	assert.Equal(t, id, *got.ExtendedFromReservationID)
	assert.Nil(t, got.CheckInAt)

	_, err = store.Reservations().Get(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = store.Reservations().Create(ctx, &domain.Reservation{
		EmployeeID: 7, SeatID: 99, StartTime: at(9), EndTime: at(10), Status: domain.StatusPending, CreatedAt: day,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListBookedInclusiveOverlap(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	booked := create(t, store, domain.Reservation{EmployeeID: 1, SeatID: 1, StartTime: at(10), EndTime: at(11), Status: domain.StatusReserved})
	create(t, store, domain.Reservation{EmployeeID: 2, SeatID: 1, StartTime: at(10), EndTime: at(11), Status: domain.StatusPending})
	create(t, store, domain.Reservation{EmployeeID: 3, SeatID: 2, StartTime: at(10), EndTime: at(11), Status: domain.StatusCancelled})

	got, err := store.Reservations().ListBooked(ctx, []int64{1, 2}, at(11), at(12))
	require.NoError(t, err)
	require.Len(t, got, 1, "touching endpoints overlap")
	assert.Equal(t, booked, got[0].ID)

	got, err = store.Reservations().ListBooked(ctx, []int64{1, 2}, at(11).Add(time.Second), at(12))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransitionAndCheckIn(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id := create(t, store, domain.Reservation{EmployeeID: 1, SeatID: 1, StartTime: at(10), EndTime: at(11), Status: domain.StatusPending})

	ok, err := store.Reservations().CheckIn(ctx, id, at(10))
	require.NoError(t, err)
	assert.False(t, ok, "only RESERVED rows check in")

	ok, err = store.Reservations().Transition(ctx, id, domain.StatusPending, domain.StatusReserved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reservations().Transition(ctx, id, domain.StatusPending, domain.StatusReserved)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Reservations().CheckIn(ctx, id, at(10))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Reservations().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInUse, got.Status)
	require.NotNil(t, got.CheckInAt)
	assert.True(t, got.CheckInAt.Equal(at(10)))
}

func TestListDueAndEmployeeQueries(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	late := create(t, store, domain.Reservation{EmployeeID: 5, SeatID: 1, StartTime: at(14), EndTime: at(15), Status: domain.StatusReserved})
	early := create(t, store, domain.Reservation{EmployeeID: 5, SeatID: 2, StartTime: at(8), EndTime: at(9), Status: domain.StatusReserved})

	due, err := store.Reservations().ListDue(ctx, repository.DueQuery{
		Status:       domain.StatusReserved,
		StartBefore:  at(10),
		NotCheckedIn: true,
	})
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, early, due[0].ID)

	byStart, err := store.Reservations().ListByEmployeeBetween(ctx, 5, day, at(23))
	require.NoError(t, err)
	require.Len(t, byStart, 2)
	assert.Equal(t, []int64{early, late}, []int64{byStart[0].ID, byStart[1].ID})

	byID, err := store.Reservations().ListByEmployee(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{late, early}, []int64{byID[0].ID, byID[1].ID})
}

func TestSeatQueries(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Seats().UpdateSeatStatus(ctx, 2, domain.SeatBroken))
	assert.ErrorIs(t, store.Seats().UpdateSeatStatus(ctx, 99, domain.SeatBroken), repository.ErrNotFound)

	seats, err := store.Seats().ListSeats(ctx, []int64{3, 2, 99, 2})
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, domain.SeatBroken, seats[0].Status)

	floor, err := store.Seats().FindFloor(ctx, 1, 1)
	require.NoError(t, err)
	onFloor, err := store.Seats().ListSeatsByFloor(ctx, floor.ID)
	require.NoError(t, err)
	assert.Len(t, onFloor, 3)

	_, err = store.Seats().FindFloor(ctx, 1, 7)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// Concurrent extensions of one reservation race on the same seat; the row
// lock and serializable retries must let exactly one through.
func TestConcurrentExtendSingleWinner(t *testing.T) {
	store := newStore(t)
	id := create(t, store, domain.Reservation{EmployeeID: 1, SeatID: 3, StartTime: at(9), EndTime: at(11), Status: domain.StatusInUse})

	svc := reservation.New(store, nil, nil, nil, reservation.Config{
		Location: time.UTC,
		Now:      func() time.Time { return at(10) },
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	const n = 6
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Extend(context.Background(), id, at(12), 1)
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok, "%v", errs)

	booked, err := store.Reservations().ListBooked(context.Background(), []int64{3}, at(11), at(12))
	require.NoError(t, err)
	assert.Len(t, booked, 2)
}
