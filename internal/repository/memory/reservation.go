package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/repository"
)

type reservationRepo struct {
	s    *Store
	inTx bool
}

func (r *reservationRepo) Create(_ context.Context, res *domain.Reservation) (int64, error) {
	const op = "memory.reservationRepo.Create"

	var id int64
	err := r.s.view(r.inTx, func(d *dataset) error {
		if _, ok := d.seats[res.SeatID]; !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		if p := res.ExtendedFromReservationID; p != nil {
			if _, ok := d.reservations[*p]; !ok {
				return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
			}
		}

		d.lastReservationID++
		id = d.lastReservationID

		row := *res
		row.ID = id
		if row.CheckInAt != nil {
			at := *row.CheckInAt
			row.CheckInAt = &at
		}
		if row.ExtendedFromReservationID != nil {
			p := *row.ExtendedFromReservationID
			row.ExtendedFromReservationID = &p
		}

		d.reservations[id] = row
		d.bySeat[row.SeatID] = d.insertIndexed(d.bySeat[row.SeatID], row)
		d.byEmployee[row.EmployeeID] = d.insertIndexed(d.byEmployee[row.EmployeeID], row)
		return nil
	})

	return id, err
}

func (r *reservationRepo) Get(_ context.Context, id int64) (*domain.Reservation, error) {
	var out *domain.Reservation
	err := r.s.view(r.inTx, func(d *dataset) error {
		res, ok := d.reservations[id]
		if !ok {
			return fmt.Errorf("memory.reservationRepo.Get:%w", repository.ErrNotFound)
		}
		out = &res
		return nil
	})
	return out, err
}

func (r *reservationRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.Get(ctx, id)
}

func (r *reservationRepo) Transition(
	_ context.Context,
	id int64,
	from, to domain.ReservationStatus,
) (bool, error) {
	const op = "memory.reservationRepo.Transition"

	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("%s: %s -> %s: %w", op, from, to, domain.ErrInvalidState)
	}

	var changed bool
	err := r.s.view(r.inTx, func(d *dataset) error {
		res, ok := d.reservations[id]
		if !ok || res.Status != from {
			return nil
		}
		res.Status = to
		d.reservations[id] = res
		changed = true
		return nil
	})

	return changed, err
}

func (r *reservationRepo) CheckIn(_ context.Context, id int64, at time.Time) (bool, error) {
	var changed bool
	err := r.s.view(r.inTx, func(d *dataset) error {
		res, ok := d.reservations[id]
		if !ok || res.Status != domain.StatusReserved {
			return nil
		}
		res.Status = domain.StatusInUse
		res.CheckInAt = &at
		d.reservations[id] = res
		changed = true
		return nil
	})

	return changed, err
}

func (r *reservationRepo) ListBooked(
	_ context.Context,
	seatIDs []int64,
	start, end time.Time,
) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.s.view(r.inTx, func(d *dataset) error {
		for _, seatID := range uniq(seatIDs) {
			for _, id := range d.bySeat[seatID] {
				res := d.reservations[id]
				// index is ordered by start; nothing later can overlap
				if res.StartTime.After(end) {
					break
				}
				if res.Booked() && domain.Overlaps(res.StartTime, res.EndTime, start, end) {
					out = append(out, res)
				}
			}
		}
		return nil
	})
	return out, err
}

func (r *reservationRepo) ListBySeatAndStatus(
	_ context.Context,
	seatID int64,
	status domain.ReservationStatus,
) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.s.view(r.inTx, func(d *dataset) error {
		for _, id := range d.bySeat[seatID] {
			if res := d.reservations[id]; res.Status == status {
				out = append(out, res)
			}
		}
		return nil
	})
	sortByID(out)
	return out, err
}

func (r *reservationRepo) ListByEmployee(_ context.Context, employeeID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.s.view(r.inTx, func(d *dataset) error {
		for _, id := range d.byEmployee[employeeID] {
			out = append(out, d.reservations[id])
		}
		return nil
	})
	sortByID(out)
	return out, err
}

func (r *reservationRepo) ListByEmployeeBetween(
	_ context.Context,
	employeeID int64,
	from, to time.Time,
) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.s.view(r.inTx, func(d *dataset) error {
		for _, id := range d.byEmployee[employeeID] {
			res := d.reservations[id]
			if res.StartTime.After(to) {
				break
			}
			if res.Intersects(from, to) {
				out = append(out, res)
			}
		}
		return nil
	})
	return out, err
}

func (r *reservationRepo) ListDue(_ context.Context, q repository.DueQuery) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.s.view(r.inTx, func(d *dataset) error {
		for _, res := range d.reservations {
			if res.Status != q.Status {
				continue
			}
			if !q.StartBefore.IsZero() && !res.StartTime.Before(q.StartBefore) {
				continue
			}
			if !q.EndBefore.IsZero() && !res.EndTime.Before(q.EndBefore) {
				continue
			}
			if q.NotCheckedIn && res.CheckInAt != nil {
				continue
			}
			out = append(out, res)
		}
		return nil
	})
	sortByID(out)
	return out, err
}

func sortByID(rs []domain.Reservation) {
	slices.SortFunc(rs, func(a, b domain.Reservation) int { return cmp.Compare(a.ID, b.ID) })
}

func uniq(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
