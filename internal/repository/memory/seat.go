package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/repository"
)

type seatRepo struct {
	s    *Store
	inTx bool
}

func seatName(floor, n int) string {
	return fmt.Sprintf("%dF-%02d", floor, n)
}

func (r *seatRepo) GetSeat(_ context.Context, id int64) (*domain.Seat, error) {
	var out *domain.Seat
	err := r.s.view(r.inTx, func(d *dataset) error {
		st, ok := d.seats[id]
		if !ok {
			return fmt.Errorf("memory.seatRepo.GetSeat:%w", repository.ErrNotFound)
		}
		out = &st
		return nil
	})
	return out, err
}

// LockSeat is GetSeat: the store lock already serializes transactions.
func (r *seatRepo) LockSeat(ctx context.Context, id int64) (*domain.Seat, error) {
	return r.GetSeat(ctx, id)
}

func (r *seatRepo) ListSeats(_ context.Context, ids []int64) ([]domain.Seat, error) {
	var out []domain.Seat
	err := r.s.view(r.inTx, func(d *dataset) error {
		for _, id := range ids {
			if st, ok := d.seats[id]; ok {
				out = append(out, st)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Seat) int { return cmp.Compare(a.ID, b.ID) })
	return slices.CompactFunc(out, func(a, b domain.Seat) bool { return a.ID == b.ID }), err
}

func (r *seatRepo) ListSeatsByFloor(_ context.Context, floorID int64) ([]domain.Seat, error) {
	var out []domain.Seat
	err := r.s.view(r.inTx, func(d *dataset) error {
		for _, st := range d.seats {
			if st.FloorID == floorID {
				out = append(out, st)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Seat) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func (r *seatRepo) UpdateSeatStatus(_ context.Context, id int64, status domain.SeatStatus) error {
	return r.s.view(r.inTx, func(d *dataset) error {
		st, ok := d.seats[id]
		if !ok {
			return fmt.Errorf("memory.seatRepo.UpdateSeatStatus:%w", repository.ErrNotFound)
		}
		st.Status = status
		d.seats[id] = st
		return nil
	})
}

func (r *seatRepo) FindFloor(_ context.Context, buildingID int64, number int) (*domain.Floor, error) {
	var out *domain.Floor
	err := r.s.view(r.inTx, func(d *dataset) error {
		for _, f := range d.floors {
			if f.BuildingID == buildingID && f.Number == number {
				out = &f
				return nil
			}
		}
		return fmt.Errorf("memory.seatRepo.FindFloor:%w", repository.ErrNotFound)
	})
	return out, err
}

func (r *seatRepo) ListFloorsByBuilding(_ context.Context, buildingID int64) ([]domain.Floor, error) {
	var out []domain.Floor
	err := r.s.view(r.inTx, func(d *dataset) error {
		for _, f := range d.floors {
			if f.BuildingID == buildingID {
				out = append(out, f)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Floor) int { return cmp.Compare(a.Number, b.Number) })
	return out, err
}

func (r *seatRepo) ListBuildings(_ context.Context) ([]domain.Building, error) {
	var out []domain.Building
	err := r.s.view(r.inTx, func(d *dataset) error {
		for _, b := range d.buildings {
			out = append(out, b)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Building) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}
