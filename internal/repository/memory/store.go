// Package memory is a process-local store with the same semantics as the
// PostgreSQL repositories. Reservations are indexed per seat and per employee,
// each index ordered by start time, so overlap and daily-usage lookups touch
// only the relevant rows.
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/repository"
)

type Store struct {
	mu   sync.Mutex
	data *dataset
}

type dataset struct {
	buildings    map[int64]domain.Building
	floors       map[int64]domain.Floor
	seats        map[int64]domain.Seat
	reservations map[int64]domain.Reservation

	bySeat     map[int64][]int64
	byEmployee map[int64][]int64

	lastReservationID int64
}

func New() *Store {
	return &Store{data: newDataset()}
}

func newDataset() *dataset {
	return &dataset{
		buildings:    make(map[int64]domain.Building),
		floors:       make(map[int64]domain.Floor),
		seats:        make(map[int64]domain.Seat),
		reservations: make(map[int64]domain.Reservation),
		bySeat:       make(map[int64][]int64),
		byEmployee:   make(map[int64][]int64),
	}
}

func (d *dataset) clone() *dataset {
	cp := &dataset{
		buildings:         maps.Clone(d.buildings),
		floors:            maps.Clone(d.floors),
		seats:             maps.Clone(d.seats),
		reservations:      maps.Clone(d.reservations),
		bySeat:            make(map[int64][]int64, len(d.bySeat)),
		byEmployee:        make(map[int64][]int64, len(d.byEmployee)),
		lastReservationID: d.lastReservationID,
	}
	for k, v := range d.bySeat {
		cp.bySeat[k] = slices.Clone(v)
	}
	for k, v := range d.byEmployee {
		cp.byEmployee[k] = slices.Clone(v)
	}
	return cp
}

// insertIndexed keeps idx ordered by (start time, id).
func (d *dataset) insertIndexed(idx []int64, r domain.Reservation) []int64 {
	pos := sort.Search(len(idx), func(i int) bool {
		o := d.reservations[idx[i]]
		if o.StartTime.Equal(r.StartTime) {
			return o.ID > r.ID
		}
		return o.StartTime.After(r.StartTime)
	})
	return slices.Insert(idx, pos, r.ID)
}

// Seed loads reference data. Existing rows with the same IDs are replaced.
func (s *Store) Seed(buildings []domain.Building, floors []domain.Floor, seats []domain.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range buildings {
		s.data.buildings[b.ID] = b
	}
	for _, f := range floors {
		s.data.floors[f.ID] = f
	}
	for _, st := range seats {
		if st.Status == "" {
			st.Status = domain.SeatAvailable
		}
		s.data.seats[st.ID] = st
	}
}

func (s *Store) Seats() repository.SeatRepository {
	return &seatRepo{s: s}
}

func (s *Store) Reservations() repository.ReservationRepository {
	return &reservationRepo{s: s}
}

// InTx runs fn while holding the store lock. Any error restores the state the
// store had before fn started. Options are accepted for interface parity and
// ignored: execution is fully serialized.
func (s *Store) InTx(
	ctx context.Context,
	_ *pgx.TxOptions,
	fn func(ctx context.Context, repos repository.Repos) error,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, txRepos{s: s}); err != nil {
		s.data = snapshot
		return err
	}

	return nil
}

// view runs fn against the current data, taking the lock unless the caller
// already holds it inside InTx.
func (s *Store) view(inTx bool, fn func(d *dataset) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

type txRepos struct {
	s *Store
}

func (t txRepos) Seats() repository.SeatRepository {
	return &seatRepo{s: t.s, inTx: true}
}

func (t txRepos) Reservations() repository.ReservationRepository {
	return &reservationRepo{s: t.s, inTx: true}
}

// DemoDataset returns one building with two floors of ten seats each, used
// for local runs without a database.
func DemoDataset() ([]domain.Building, []domain.Floor, []domain.Seat) {
	buildings := []domain.Building{{ID: 1, Name: "HQ", Address: "1 Main Street"}}

	var floors []domain.Floor
	var seats []domain.Seat
	seatID := int64(1)
	for n := 1; n <= 2; n++ {
		floors = append(floors, domain.Floor{ID: int64(n), BuildingID: 1, Number: n})
		for i := 1; i <= 10; i++ {
			seats = append(seats, domain.Seat{
				ID:      seatID,
				FloorID: int64(n),
				Name:    seatName(n, i),
				Status:  domain.SeatAvailable,
			})
			seatID++
		}
	}

	return buildings, floors, seats
}
