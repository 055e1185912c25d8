package sweep

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/repository"
	"github.com/kirinyoku/deskgo/internal/repository/memory"
)

var now = time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) *memory.Store {
	t.Helper()

	s := memory.New()
	s.Seed(memory.DemoDataset())
	return s
}

func put(t *testing.T, s *memory.Store, r domain.Reservation) int64 {
	t.Helper()

	if r.EmployeeID == 0 {
		r.EmployeeID = 1
	}
	id, err := s.Reservations().Create(context.Background(), &r)
	require.NoError(t, err)
	return id
}

func statusOf(t *testing.T, s repository.Repos, id int64) domain.ReservationStatus {
	t.Helper()

	r, err := s.Reservations().Get(context.Background(), id)
	require.NoError(t, err)
	return r.Status
}

func TestTickAdvancesDueReservations(t *testing.T) {
	store := newStore(t)
	checkedIn := now.Add(-20 * time.Minute)

	started := put(t, store, domain.Reservation{SeatID: 1, StartTime: now.Add(-time.Second), EndTime: now.Add(time.Hour), Status: domain.StatusPending})
	future := put(t, store, domain.Reservation{SeatID: 2, StartTime: now.Add(time.Minute), EndTime: now.Add(time.Hour), Status: domain.StatusPending})
	noShow := put(t, store, domain.Reservation{SeatID: 3, StartTime: now.Add(-11 * time.Minute), EndTime: now.Add(time.Hour), Status: domain.StatusReserved})
	inGrace := put(t, store, domain.Reservation{SeatID: 4, StartTime: now.Add(-9 * time.Minute), EndTime: now.Add(time.Hour), Status: domain.StatusReserved})
	arrived := put(t, store, domain.Reservation{SeatID: 5, StartTime: now.Add(-30 * time.Minute), EndTime: now.Add(time.Hour), Status: domain.StatusReserved, CheckInAt: &checkedIn})
	ended := put(t, store, domain.Reservation{SeatID: 6, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Second), Status: domain.StatusInUse})
	running := put(t, store, domain.Reservation{SeatID: 7, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(time.Minute), Status: domain.StatusInUse})
	require.NoError(t, store.Seats().UpdateSeatStatus(context.Background(), 6, domain.SeatUnavailable))

	svc := New(store, nil, nil, Config{Now: func() time.Time { return now }, Logger: quietLogger()})

	rep, err := svc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Reserved: 1, NoShow: 1, Completed: 1}, rep)

	assert.Equal(t, domain.StatusReserved, statusOf(t, store, started))
	assert.Equal(t, domain.StatusPending, statusOf(t, store, future))
	assert.Equal(t, domain.StatusNoShow, statusOf(t, store, noShow))
	assert.Equal(t, domain.StatusReserved, statusOf(t, store, inGrace))
	assert.Equal(t, domain.StatusReserved, statusOf(t, store, arrived))
	assert.Equal(t, domain.StatusCompleted, statusOf(t, store, ended))
	assert.Equal(t, domain.StatusInUse, statusOf(t, store, running))

	seat, err := store.Seats().GetSeat(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatUnavailable, seat.Status)

	rep, err = svc.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.Changed())
}

func TestTickCancelsOverlappingPending(t *testing.T) {
	store := newStore(t)

	first := put(t, store, domain.Reservation{SeatID: 7, StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour), Status: domain.StatusPending})
	second := put(t, store, domain.Reservation{EmployeeID: 2, SeatID: 7, StartTime: now.Add(-time.Minute), EndTime: now.Add(30 * time.Minute), Status: domain.StatusPending})

	svc := New(store, nil, nil, Config{Now: func() time.Time { return now }, Logger: quietLogger()})

	rep, err := svc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Reserved)
	assert.Equal(t, 1, rep.Cancelled)
	assert.Equal(t, domain.StatusReserved, statusOf(t, store, first))
	assert.Equal(t, domain.StatusCancelled, statusOf(t, store, second))
}

func TestTickPromotesBackToBackBooking(t *testing.T) {
	store := newStore(t)
	at := now.Add(30 * time.Second)

	ending := put(t, store, domain.Reservation{SeatID: 7, StartTime: now.Add(-time.Hour), EndTime: now, Status: domain.StatusInUse})
	next := put(t, store, domain.Reservation{EmployeeID: 2, SeatID: 7, StartTime: now, EndTime: now.Add(time.Hour), Status: domain.StatusPending})

	svc := New(store, nil, nil, Config{Now: func() time.Time { return at }, Logger: quietLogger()})

	rep, err := svc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Reserved: 1, Completed: 1}, rep)
	assert.Equal(t, domain.StatusCompleted, statusOf(t, store, ending))
	assert.Equal(t, domain.StatusReserved, statusOf(t, store, next))
}

func TestTickIgnoresEndedBookingsWhenPromoting(t *testing.T) {
	store := newStore(t)
	at := now.Add(30 * time.Second)

	stale := put(t, store, domain.Reservation{SeatID: 7, StartTime: now.Add(-time.Hour), EndTime: now, Status: domain.StatusInUse})
	next := put(t, store, domain.Reservation{EmployeeID: 2, SeatID: 7, StartTime: now, EndTime: now.Add(time.Hour), Status: domain.StatusPending})

	// the ended row cannot be completed this tick and stays IN_USE
	svc := New(flakyStore{Store: store, failID: stale}, nil, nil, Config{Now: func() time.Time { return at }, Logger: quietLogger()})

	rep, err := svc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Reserved: 1, Failed: 1}, rep)
	assert.Equal(t, domain.StatusInUse, statusOf(t, store, stale))
	assert.Equal(t, domain.StatusReserved, statusOf(t, store, next))
}

type flakyStore struct {
	*memory.Store
	failID int64
}

func (f flakyStore) Reservations() repository.ReservationRepository {
	return flakyReservations{ReservationRepository: f.Store.Reservations(), failID: f.failID}
}

type flakyReservations struct {
	repository.ReservationRepository
	failID int64
}

func (f flakyReservations) Transition(ctx context.Context, id int64, from, to domain.ReservationStatus) (bool, error) {
	if id == f.failID {
		return false, errors.New("write failed")
	}
	return f.ReservationRepository.Transition(ctx, id, from, to)
}

func TestTickIsolatesRowFailures(t *testing.T) {
	store := newStore(t)

	bad := put(t, store, domain.Reservation{SeatID: 1, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Minute), Status: domain.StatusInUse})
	good := put(t, store, domain.Reservation{SeatID: 2, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Minute), Status: domain.StatusInUse})

	svc := New(flakyStore{Store: store, failID: bad}, nil, nil, Config{Now: func() time.Time { return now }, Logger: quietLogger()})

	rep, err := svc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Completed)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, domain.StatusInUse, statusOf(t, store, bad))
	assert.Equal(t, domain.StatusCompleted, statusOf(t, store, good))
}

type fakeLocker struct {
	ok       bool
	err      error
	ttl      time.Duration
	released bool
}

func (l *fakeLocker) TryLock(_ context.Context, _ string, ttl time.Duration) (bool, func(context.Context), error) {
	l.ttl = ttl
	return l.ok, func(context.Context) { l.released = true }, l.err
}

func TestTickSkipsWhenLocked(t *testing.T) {
	store := newStore(t)
	id := put(t, store, domain.Reservation{SeatID: 1, StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour), Status: domain.StatusPending})
	cfg := Config{Now: func() time.Time { return now }, Logger: quietLogger()}

	busy := New(store, nil, &fakeLocker{}, cfg)
	rep, err := busy.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Skipped)
	assert.Equal(t, domain.StatusPending, statusOf(t, store, id))

	local := New(store, nil, nil, cfg)
	local.running.Lock()
	rep, err = local.Tick(context.Background())
	local.running.Unlock()
	require.NoError(t, err)
	assert.True(t, rep.Skipped)

	lk := &fakeLocker{ok: true}
	rep, err = New(store, nil, lk, cfg).Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Reserved)
	assert.True(t, lk.released)
	assert.Equal(t, lockIntervals*time.Minute, lk.ttl)
}

func TestTickRunsWhenLockBackendFails(t *testing.T) {
	store := newStore(t)
	id := put(t, store, domain.Reservation{SeatID: 1, StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour), Status: domain.StatusPending})

	svc := New(store, nil, &fakeLocker{err: errors.New("redis down")}, Config{Now: func() time.Time { return now }, Logger: quietLogger()})

	rep, err := svc.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, rep.Skipped)
	assert.Equal(t, domain.StatusReserved, statusOf(t, store, id))
}

func TestRunTicksUntilCancelled(t *testing.T) {
	store := newStore(t)
	id := put(t, store, domain.Reservation{SeatID: 1, StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour), Status: domain.StatusPending})

	svc := New(store, nil, nil, Config{
		Interval: 5 * time.Millisecond,
		Now:      func() time.Time { return now },
		Logger:   quietLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	assert.Eventually(t, func() bool {
		r, err := store.Reservations().Get(context.Background(), id)
		return err == nil && r.Status == domain.StatusReserved
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
