package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/events"
	"github.com/kirinyoku/deskgo/internal/repository"
	redisrepo "github.com/kirinyoku/deskgo/internal/repository/redis"
	"github.com/kirinyoku/deskgo/internal/uow"
)

// Limiter throttles reservation creation per employee.
type Limiter interface {
	Allow(ctx context.Context, subject string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

type Config struct {
	// Location defines calendar days for the daily cap and "today".
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

type Service struct {
	store     uow.Transactor
	cache     *redisrepo.Cache
	publisher events.Publisher
	limiter   Limiter
	uow       *uow.UoW
	cfg       Config
}

func New(
	store uow.Transactor,
	cache *redisrepo.Cache,
	publisher events.Publisher,
	limiter Limiter,
	cfg Config,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		store:     store,
		cache:     cache,
		publisher: publisher,
		limiter:   limiter,
		uow:       uow.NewUoW(store),
		cfg:       cfg,
	}
}

type CreateInput struct {
	EmployeeID int64
	SeatID     int64
	StartTime  time.Time
	EndTime    time.Time
}

// Create books a seat for [StartTime, EndTime] as a PENDING reservation.
//
// Returns:
//   - *domain.Reservation: the stored reservation.
//   - error: ErrMissingField, ErrStartNotInFuture, ErrEndBeforeStart or ErrTooLong
//     for bad input.
//   - error: ErrSeatNotFound if the seat does not exist, ErrSeatBroken if it is broken.
//   - error: ErrSeatAlreadyBooked if a RESERVED or IN_USE reservation overlaps.
//   - error: ErrDailyLimit if the employee would exceed 8 hours that day.
//   - error: RateLimitedError if the employee books too often.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Reservation, error) {
	const op = "service.reservation.Create"

	if in.EmployeeID == 0 || in.SeatID == 0 || in.StartTime.IsZero() || in.EndTime.IsZero() {
		return nil, fmt.Errorf("%s:%w", op, ErrMissingField)
	}

	now := s.cfg.Now()
	if !in.StartTime.After(now) {
		return nil, fmt.Errorf("%s:%w", op, ErrStartNotInFuture)
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("%s:%w", op, ErrEndBeforeStart)
	}
	if in.EndTime.Sub(in.StartTime) > domain.MaxReservationDuration {
		return nil, fmt.Errorf("%s:%w", op, ErrTooLong)
	}

	if s.limiter != nil {
		ok, _, retry, err := s.limiter.Allow(ctx, strconv.FormatInt(in.EmployeeID, 10))
		switch {
		case err != nil:
			// fail open
			s.cfg.Logger.Warn("rate limiter unavailable",
				slog.Int64("employee_id", in.EmployeeID),
				slog.Any("err", err),
			)
		case !ok:
			return nil, fmt.Errorf("%s:%w", op, RateLimitedError{RetryAfter: retry})
		}
	}

	var created domain.Reservation

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repos,
		after func(uow.AfterCommit),
	) error {
		if _, err := s.lockBookableSeat(ctx, repos, in.SeatID); err != nil {
			return err
		}

		if err := s.ensureSeatFree(ctx, repos, in.SeatID, in.StartTime, in.EndTime, 0); err != nil {
			return err
		}

		dayStart, dayEnd := domain.DayBounds(in.StartTime, s.cfg.Location)
		used, err := s.dailyUsage(ctx, repos, in.EmployeeID, dayStart, dayEnd, 0)
		if err != nil {
			return err
		}
		if used+int64(in.EndTime.Sub(in.StartTime)/time.Second) > int64(domain.DailyUsageLimit/time.Second) {
			return ErrDailyLimit
		}

		created = domain.Reservation{
			EmployeeID: in.EmployeeID,
			SeatID:     in.SeatID,
			StartTime:  in.StartTime,
			EndTime:    in.EndTime,
			Status:     domain.StatusPending,
			CreatedAt:  now,
		}

		id, err := repos.Reservations().Create(ctx, &created)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrSeatNotFound
			}
			return err
		}
		created.ID = id

		after(func(ctx context.Context) {
			s.publish(ctx, events.New(events.ReservationCreated, created, now))
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &created, nil
}

// Cancel moves a RESERVED reservation owned by employeeID to CANCELLED.
func (s *Service) Cancel(ctx context.Context, id, employeeID int64) error {
	const op = "service.reservation.Cancel"

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repos,
		after func(uow.AfterCommit),
	) error {
		res, err := s.getForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}

		if res.Status != domain.StatusReserved {
			return ErrNotReserved
		}
		if res.EmployeeID != employeeID {
			return ErrNotOwner
		}

		if err := s.transition(ctx, repos, res, domain.StatusCancelled); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.publish(ctx, events.New(events.ReservationCancelled, *res, s.cfg.Now()))
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// CheckIn starts using a RESERVED reservation: the reservation becomes IN_USE
// with CheckInAt set and the seat becomes UNAVAILABLE, in one transaction.
func (s *Service) CheckIn(ctx context.Context, id, employeeID int64) (*domain.Reservation, error) {
	const op = "service.reservation.CheckIn"

	var out domain.Reservation

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repos,
		after func(uow.AfterCommit),
	) error {
		res, err := s.getForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}

		seat, err := s.lockSeat(ctx, repos, res.SeatID)
		if err != nil {
			return err
		}

		if seat.Status != domain.SeatAvailable {
			return ErrSeatNotAvailable
		}
		if res.Status != domain.StatusReserved {
			return ErrNotReserved
		}
		if res.EmployeeID != employeeID {
			return ErrNotOwner
		}

		now := s.cfg.Now()
		ok, err := repos.Reservations().CheckIn(ctx, res.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStaleReservation
		}

		if err := repos.Seats().UpdateSeatStatus(ctx, seat.ID, domain.SeatUnavailable); err != nil {
			return err
		}

		out = *res
		out.Status = domain.StatusInUse
		out.CheckInAt = &now
		seat.Status = domain.SeatUnavailable

		after(func(ctx context.Context) {
			s.invalidateSeat(ctx, *seat)
			ev := events.New(events.ReservationCheckedIn, out, now)
			ev.SeatStatus = domain.SeatUnavailable
			s.publish(ctx, ev)
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

// Extend adds exactly one hour to an IN_USE reservation. The extension is a
// new IN_USE row with the same start that points back to the original; the
// original row is not modified.
//
// Returns:
//   - *domain.Reservation: the new row.
//   - error: ErrNotInUse, ErrNotOwner or ErrSeatUnavailable if the
//     reservation or its seat is in the wrong state.
//   - error: ErrExtensionStep, ErrExtensionNextDay, ErrSeatAlreadyBooked or
//     ErrDailyLimit if the new end time is not allowed.
func (s *Service) Extend(ctx context.Context, id int64, newEnd time.Time, employeeID int64) (*domain.Reservation, error) {
	const op = "service.reservation.Extend"

	var out domain.Reservation

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repos,
		after func(uow.AfterCommit),
	) error {
		res, err := s.getForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}

		if res.Status != domain.StatusInUse {
			return ErrNotInUse
		}
		if res.EmployeeID != employeeID {
			return ErrNotOwner
		}

		seat, err := s.lockSeat(ctx, repos, res.SeatID)
		if err != nil {
			return err
		}
		if seat.Status == domain.SeatUnavailable {
			return ErrSeatUnavailable
		}

		if !newEnd.Equal(res.EndTime.Add(domain.ExtensionStep)) {
			return ErrExtensionStep
		}

		dayStart, dayEnd := domain.DayBounds(res.StartTime, s.cfg.Location)
		if !newEnd.Before(dayEnd) {
			return ErrExtensionNextDay
		}

		if err := s.ensureSeatFree(ctx, repos, res.SeatID, res.EndTime, newEnd, res.ID); err != nil {
			return err
		}

		used, err := s.dailyUsage(ctx, repos, employeeID, dayStart, dayEnd, res.ID)
		if err != nil {
			return err
		}
		if used+domain.ClippedSeconds(res.StartTime, newEnd, dayStart, dayEnd) > int64(domain.DailyUsageLimit/time.Second) {
			return ErrDailyLimit
		}

		now := s.cfg.Now()
		parent := res.ID
		out = domain.Reservation{
			EmployeeID:                res.EmployeeID,
			SeatID:                    res.SeatID,
			StartTime:                 res.StartTime,
			EndTime:                   newEnd,
			Status:                    domain.StatusInUse,
			CreatedAt:                 now,
			ExtendedFromReservationID: &parent,
		}

		newID, err := repos.Reservations().Create(ctx, &out)
		if err != nil {
			return err
		}
		out.ID = newID

		after(func(ctx context.Context) {
			s.publish(ctx, events.New(events.ReservationExtended, out, now))
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

// ReturnSeat ends an IN_USE reservation. Every IN_USE reservation on the seat,
// which covers the whole extension chain, becomes COMPLETED and the seat
// becomes AVAILABLE again.
func (s *Service) ReturnSeat(ctx context.Context, id, employeeID int64) (*domain.Reservation, error) {
	const op = "service.reservation.ReturnSeat"

	var out domain.Reservation

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		repos repository.Repos,
		after func(uow.AfterCommit),
	) error {
		res, err := s.getForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}

		if res.Status != domain.StatusInUse {
			return ErrNotInUse
		}

		seat, err := s.lockSeat(ctx, repos, res.SeatID)
		if err != nil {
			return err
		}
		if seat.Status != domain.SeatUnavailable {
			return ErrSeatNotOccupied
		}
		if res.EmployeeID != employeeID {
			return ErrNotOwner
		}

		inUse, err := repos.Reservations().ListBySeatAndStatus(ctx, seat.ID, domain.StatusInUse)
		if err != nil {
			return err
		}
		for _, r := range inUse {
			if _, err := repos.Reservations().Transition(ctx, r.ID, domain.StatusInUse, domain.StatusCompleted); err != nil {
				return err
			}
		}

		if err := repos.Seats().UpdateSeatStatus(ctx, seat.ID, domain.SeatAvailable); err != nil {
			return err
		}

		// Already covered by the loop above; the CAS makes it a no-op then.
		if _, err := repos.Reservations().Transition(ctx, res.ID, domain.StatusInUse, domain.StatusCompleted); err != nil {
			return err
		}

		out = *res
		out.Status = domain.StatusCompleted
		seat.Status = domain.SeatAvailable

		after(func(ctx context.Context) {
			s.invalidateSeat(ctx, *seat)
			ev := events.New(events.ReservationReturned, out, s.cfg.Now())
			ev.SeatStatus = domain.SeatAvailable
			s.publish(ctx, ev)
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

// ListActiveByEmployee returns the employee's PENDING, RESERVED and IN_USE
// reservations starting today or later, ordered by ID.
func (s *Service) ListActiveByEmployee(ctx context.Context, employeeID int64) ([]domain.Reservation, error) {
	const op = "service.reservation.ListActiveByEmployee"

	rs, err := s.store.Reservations().ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	today, _ := domain.DayBounds(s.cfg.Now(), s.cfg.Location)

	out := make([]domain.Reservation, 0, len(rs))
	for _, r := range rs {
		if r.StartTime.Before(today) {
			continue
		}
		switch r.Status {
		case domain.StatusPending, domain.StatusReserved, domain.StatusInUse:
			out = append(out, r)
		}
	}

	return out, nil
}

type HistoryQuery struct {
	EmployeeID int64
	Start      time.Time
	End        time.Time
	Skip       int
	Limit      int
}

// History pages through the employee's reservations intersecting
// [Start, End], ordered by start time.
func (s *Service) History(ctx context.Context, q HistoryQuery) ([]domain.Reservation, error) {
	const op = "service.reservation.History"

	if q.EmployeeID == 0 || q.Start.IsZero() || q.End.IsZero() {
		return nil, fmt.Errorf("%s:%w", op, ErrMissingField)
	}
	if q.End.Before(q.Start) {
		return nil, fmt.Errorf("%s:%w", op, ErrEndBeforeStart)
	}

	skip, limit, err := page(q.Skip, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	rs, err := s.store.Reservations().ListByEmployeeBetween(ctx, q.EmployeeID, q.Start, q.End)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return paginate(rs, skip, limit), nil
}

func (s *Service) getForUpdate(ctx context.Context, repos repository.Repos, id int64) (*domain.Reservation, error) {
	res, err := repos.Reservations().GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) lockSeat(ctx context.Context, repos repository.Repos, id int64) (*domain.Seat, error) {
	seat, err := repos.Seats().LockSeat(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return seat, nil
}

func (s *Service) lockBookableSeat(ctx context.Context, repos repository.Repos, id int64) (*domain.Seat, error) {
	seat, err := s.lockSeat(ctx, repos, id)
	if err != nil {
		return nil, err
	}
	if seat.Status == domain.SeatBroken {
		return nil, ErrSeatBroken
	}
	return seat, nil
}

// ensureSeatFree fails when a booked reservation other than exclude overlaps
// [start, end]. The seat row must already be locked.
func (s *Service) ensureSeatFree(
	ctx context.Context,
	repos repository.Repos,
	seatID int64,
	start, end time.Time,
	exclude int64,
) error {
	booked, err := repos.Reservations().ListBooked(ctx, []int64{seatID}, start, end)
	if err != nil {
		return err
	}
	for _, r := range booked {
		if r.ID != exclude {
			return ErrSeatAlreadyBooked
		}
	}
	return nil
}

func (s *Service) dailyUsage(
	ctx context.Context,
	repos repository.Repos,
	employeeID int64,
	dayStart, dayEnd time.Time,
	exclude int64,
) (int64, error) {
	rs, err := repos.Reservations().ListByEmployeeBetween(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return 0, err
	}
	return domain.DailyUsageSeconds(rs, dayStart, dayEnd, exclude), nil
}

func (s *Service) transition(
	ctx context.Context,
	repos repository.Repos,
	res *domain.Reservation,
	to domain.ReservationStatus,
) error {
	ok, err := repos.Reservations().Transition(ctx, res.ID, res.Status, to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStaleReservation
	}
	res.Status = to
	return nil
}

// invalidateSeat drops the cached views of the seat. A failure leaves them
// stale until their TTL.
func (s *Service) invalidateSeat(ctx context.Context, seat domain.Seat) {
	if err := s.cache.InvalidateSeat(ctx, seat); err != nil {
		s.cfg.Logger.Warn("invalidate seat cache",
			slog.Int64("seat_id", seat.ID),
			slog.Any("err", err),
		)
	}
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.cfg.Logger.Warn("publish reservation event",
			slog.String("type", string(ev.Type)),
			slog.Int64("reservation_id", ev.ReservationID),
			slog.Any("err", err),
		)
	}
}

func page(skip, limit int) (int, int, error) {
	if skip < 0 || limit < 0 {
		return 0, 0, ErrBadPage
	}
	if limit == 0 {
		limit = domain.DefaultPageLimit
	}
	if limit > domain.MaxPageLimit {
		limit = domain.MaxPageLimit
	}
	return skip, limit, nil
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
