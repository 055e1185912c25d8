package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/kirinyoku/deskgo/internal/domain"
)

type AvailabilityQuery struct {
	Start   time.Time
	End     time.Time
	SeatIDs []int64
	Skip    int
	Limit   int
}

// AvailableSeats filters the candidate seats down to those that are not
// BROKEN and have no RESERVED or IN_USE reservation overlapping
// [Start, End]. Survivors keep the caller's order; duplicates are dropped.
// Unknown seat IDs are not filtered out.
func (s *Service) AvailableSeats(ctx context.Context, q AvailabilityQuery) ([]int64, error) {
	const op = "service.reservation.AvailableSeats"

	if q.Start.IsZero() || q.End.IsZero() {
		return nil, fmt.Errorf("%s:%w", op, ErrMissingField)
	}
	if !q.Start.After(s.cfg.Now()) {
		return nil, fmt.Errorf("%s:%w", op, ErrStartNotInFuture)
	}
	if !q.End.After(q.Start) {
		return nil, fmt.Errorf("%s:%w", op, ErrEndBeforeStart)
	}
	if len(q.SeatIDs) == 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrNoCandidates)
	}

	skip, limit, err := page(q.Skip, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	seats, err := s.store.Seats().ListSeats(ctx, q.SeatIDs)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	booked, err := s.store.Reservations().ListBooked(ctx, q.SeatIDs, q.Start, q.End)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	blocked := make(map[int64]struct{}, len(seats)+len(booked))
	for _, st := range seats {
		if st.Status == domain.SeatBroken {
			blocked[st.ID] = struct{}{}
		}
	}
	for _, r := range booked {
		blocked[r.SeatID] = struct{}{}
	}

	free := make([]int64, 0, len(q.SeatIDs))
	for _, id := range q.SeatIDs {
		if _, ok := blocked[id]; ok {
			continue
		}
		blocked[id] = struct{}{}
		free = append(free, id)
	}

	return paginate(free, skip, limit), nil
}
