// Package sweep advances reservations whose wall-clock deadlines have passed:
// PENDING to RESERVED once started, RESERVED to NO_SHOW when nobody checked
// in within the grace period, and IN_USE to COMPLETED once ended.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/events"
	"github.com/kirinyoku/deskgo/internal/repository"
	"github.com/kirinyoku/deskgo/internal/uow"
)

const lockName = "status-sweep"

// lockIntervals is the sweep lock TTL in ticks. It outlives a slow tick; the
// lock is released as soon as the tick ends.
const lockIntervals = 5

// Locker keeps two instances from sweeping at the same time.
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (bool, func(context.Context), error)
}

type Config struct {
	Interval time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

// Report counts the rows a tick changed. Failed rows are left for the next tick.
type Report struct {
	Reserved  int  `json:"reserved"`
	Cancelled int  `json:"cancelled"`
	NoShow    int  `json:"no_show"`
	Completed int  `json:"completed"`
	Failed    int  `json:"failed"`
	Skipped   bool `json:"skipped"`
}

func (r Report) Changed() int {
	return r.Reserved + r.Cancelled + r.NoShow + r.Completed
}

type Service struct {
	store     uow.Transactor
	uow       *uow.UoW
	publisher events.Publisher
	locker    Locker
	cfg       Config

	running sync.Mutex
}

func New(store uow.Transactor, publisher events.Publisher, locker Locker, cfg Config) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		store:     store,
		uow:       uow.NewUoW(store),
		publisher: publisher,
		locker:    locker,
		cfg:       cfg,
	}
}

// Run ticks every Interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := s.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.cfg.Logger.Error("sweep tick failed", slog.Any("err", err))
			}
		}
	}
}

// Tick runs the three passes once. A tick that overlaps another one, locally
// or on another instance, is skipped.
func (s *Service) Tick(ctx context.Context) (Report, error) {
	const op = "service.sweep.Tick"

	if !s.running.TryLock() {
		return Report{Skipped: true}, nil
	}
	defer s.running.Unlock()

	if s.locker != nil {
		ok, release, err := s.locker.TryLock(ctx, lockName, lockIntervals*s.cfg.Interval)
		switch {
		case err != nil:
			s.cfg.Logger.Warn("sweep lock unavailable, running unguarded", slog.Any("err", err))
		case !ok:
			return Report{Skipped: true}, nil
		default:
			defer release(context.WithoutCancel(ctx))
		}
	}

	var rep Report
	now := s.cfg.Now()

	if err := s.advance(ctx, repository.DueQuery{
		Status:       domain.StatusReserved,
		StartBefore:  now.Add(-domain.NoShowGrace),
		NotCheckedIn: true,
	}, domain.StatusNoShow, now, &rep.NoShow, &rep); err != nil {
		return rep, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.advance(ctx, repository.DueQuery{
		Status:    domain.StatusInUse,
		EndBefore: now,
	}, domain.StatusCompleted, now, &rep.Completed, &rep); err != nil {
		return rep, fmt.Errorf("%s: %w", op, err)
	}

	// Runs last so rows that ended or lapsed this tick no longer hold the seat.
	if err := s.promotePending(ctx, now, &rep); err != nil {
		return rep, fmt.Errorf("%s: %w", op, err)
	}

	lvl := slog.LevelDebug
	if rep.Changed() > 0 || rep.Failed > 0 {
		lvl = slog.LevelInfo
	}
	s.cfg.Logger.Log(ctx, lvl, "sweep finished",
		slog.Int("reserved", rep.Reserved),
		slog.Int("cancelled", rep.Cancelled),
		slog.Int("no_show", rep.NoShow),
		slog.Int("completed", rep.Completed),
		slog.Int("failed", rep.Failed),
	)

	return rep, nil
}

// promotePending moves started PENDING rows to RESERVED in ID order. A row
// that would overlap a booking still live at now is CANCELLED instead, so a
// seat never carries two overlapping bookings.
func (s *Service) promotePending(ctx context.Context, now time.Time, rep *Report) error {
	due, err := s.store.Reservations().ListDue(ctx, repository.DueQuery{
		Status:      domain.StatusPending,
		StartBefore: now,
	})
	if err != nil {
		return err
	}

	for _, r := range due {
		var to domain.ReservationStatus

		err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repos, after func(uow.AfterCommit)) error {
			to = domain.StatusReserved

			if _, err := repos.Seats().LockSeat(ctx, r.SeatID); err != nil {
				return err
			}

			booked, err := repos.Reservations().ListBooked(ctx, []int64{r.SeatID}, r.StartTime, r.EndTime)
			if err != nil {
				return err
			}
			for _, b := range booked {
				if !b.EndTime.Before(now) {
					to = domain.StatusCancelled
					break
				}
			}

			ok, err := repos.Reservations().Transition(ctx, r.ID, domain.StatusPending, to)
			if err != nil || !ok {
				to = ""
				return err
			}

			after(func(ctx context.Context) {
				r.Status = to
				s.publish(ctx, events.New(events.ReservationAdvanced, r, now))
			})
			return nil
		})

		switch {
		case err != nil:
			rep.Failed++
			s.rowFailed(r, domain.StatusReserved, err)
		case to == domain.StatusReserved:
			rep.Reserved++
		case to == domain.StatusCancelled:
			rep.Cancelled++
			s.cfg.Logger.Warn("pending reservation overlaps a booking, cancelled",
				slog.Int64("reservation_id", r.ID),
				slog.Int64("seat_id", r.SeatID),
			)
		}
	}

	return nil
}

// advance applies one status change to every due row. Each row is its own
// conditional write, so a failed or stale row does not affect the others.
func (s *Service) advance(
	ctx context.Context,
	q repository.DueQuery,
	to domain.ReservationStatus,
	now time.Time,
	counter *int,
	rep *Report,
) error {
	due, err := s.store.Reservations().ListDue(ctx, q)
	if err != nil {
		return err
	}

	for _, r := range due {
		ok, err := s.store.Reservations().Transition(ctx, r.ID, q.Status, to)
		if err != nil {
			rep.Failed++
			s.rowFailed(r, to, err)
			continue
		}
		if !ok {
			continue
		}

		*counter++
		r.Status = to
		s.publish(ctx, events.New(events.ReservationAdvanced, r, now))
	}

	return nil
}

func (s *Service) rowFailed(r domain.Reservation, to domain.ReservationStatus, err error) {
	s.cfg.Logger.Warn("sweep row failed",
		slog.Int64("reservation_id", r.ID),
		slog.String("from", string(r.Status)),
		slog.String("to", string(to)),
		slog.Any("err", err),
	)
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.cfg.Logger.Warn("publish reservation event", slog.String("type", string(ev.Type)), slog.Any("err", err))
	}
}
