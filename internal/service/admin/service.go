package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/events"
	"github.com/kirinyoku/deskgo/internal/repository"
	"github.com/kirinyoku/deskgo/internal/uow"
)

type Service struct {
	store     uow.Transactor
	publisher events.Publisher
	uow       *uow.UoW
	now       func() time.Time
	log       *slog.Logger
}

func New(store uow.Transactor, publisher events.Publisher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		store:     store,
		publisher: publisher,
		uow:       uow.NewUoW(store),
		now:       time.Now,
		log:       log,
	}
}

// ForceReturnSeat moves every IN_USE reservation on the seat to
// FORCED_CANCEL without ownership or status checks. The seat's own status is
// left as it is. Calling it for a seat with nothing in use is a no-op.
//
// Returns:
//   - int: the number of reservations cancelled.
//   - error: only storage failures.
func (s *Service) ForceReturnSeat(ctx context.Context, seatID int64) (int, error) {
	const op = "service.admin.ForceReturnSeat"

	var cancelled []domain.Reservation

	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos, after func(uow.AfterCommit)) error {
		cancelled = cancelled[:0]

		inUse, err := repos.Reservations().ListBySeatAndStatus(ctx, seatID, domain.StatusInUse)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		for _, r := range inUse {
			ok, err := repos.Reservations().Transition(ctx, r.ID, domain.StatusInUse, domain.StatusForcedCancel)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			if ok {
				r.Status = domain.StatusForcedCancel
				cancelled = append(cancelled, r)
			}
		}

		after(func(ctx context.Context) {
			at := s.now()
			for _, r := range cancelled {
				s.publish(ctx, events.New(events.ReservationForced, r, at))
			}
		})

		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(cancelled) > 0 {
		s.log.Info("seat force-returned",
			slog.Int64("seat_id", seatID),
			slog.Int("reservations", len(cancelled)),
		)
	}

	return len(cancelled), nil
}

// SeatStatus lists the seats of a floor with their current status, read
// straight from the store.
func (s *Service) SeatStatus(ctx context.Context, buildingID int64, floor int) ([]domain.Seat, error) {
	const op = "service.admin.SeatStatus"

	f, err := s.store.Seats().FindFloor(ctx, buildingID, floor)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrFloorNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seats, err := s.store.Seats().ListSeatsByFloor(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return seats, nil
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("publish reservation event", slog.String("type", string(ev.Type)), slog.Any("err", err))
	}
}
