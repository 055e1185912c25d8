package postgresrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/repository"
)

const reservationColumns = `id, employee_id, seat_id, start_time, end_time, status,
	check_in_at, created_at, extended_from_reservation_id`

type ReservationRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ReservationRepo) With(db DB) *ReservationRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ReservationRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts a reservation and returns its ID. CreatedAt is taken from the
// argument so the caller's clock stays authoritative.
//
// Returns:
//   - int64: the new reservation ID.
//   - error: repository.ErrNotFound if the seat or the extended reservation
//     does not exist.
func (r *ReservationRepo) Create(ctx context.Context, res *domain.Reservation) (int64, error) {
	const op = "postgresrepo.ReservationRepo.Create"

	var id int64
	err := r.handle().QueryRow(ctx,
		`INSERT INTO reservations(employee_id, seat_id, start_time, end_time, status,
	                              check_in_at, created_at, extended_from_reservation_id)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
     	 RETURNING id`,
		res.EmployeeID,
		res.SeatID,
		res.StartTime,
		res.EndTime,
		string(res.Status),
		res.CheckInAt,
		res.CreatedAt,
		res.ExtendedFromReservationID,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

// Get retrieves a reservation by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the reservation does not exist.
func (r *ReservationRepo) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	const op = "postgresrepo.ReservationRepo.Get"

	res, err := scanReservation(r.handle().QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return res, nil
}

// GetForUpdate is Get with a row lock held until the transaction ends.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	const op = "postgresrepo.ReservationRepo.GetForUpdate"

	res, err := scanReservation(r.handle().QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return res, nil
}

// Transition performs a compare-and-set on the status column so a status can
// only move along the lifecycle from the state the caller observed.
func (r *ReservationRepo) Transition(
	ctx context.Context,
	id int64,
	from, to domain.ReservationStatus,
) (bool, error) {
	const op = "postgresrepo.ReservationRepo.Transition"

	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("%s: %s -> %s: %w", op, from, to, domain.ErrInvalidState)
	}

	tag, err := r.handle().Exec(ctx,
		`UPDATE reservations SET status = $3 WHERE id = $1 AND status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *ReservationRepo) CheckIn(ctx context.Context, id int64, at time.Time) (bool, error) {
	const op = "postgresrepo.ReservationRepo.CheckIn"

	tag, err := r.handle().Exec(ctx,
		`UPDATE reservations
         SET status = $2, check_in_at = $3
      	 WHERE id = $1 AND status = $4`,
		id, string(domain.StatusInUse), at, string(domain.StatusReserved),
	)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *ReservationRepo) ListBooked(
	ctx context.Context,
	seatIDs []int64,
	start, end time.Time,
) ([]domain.Reservation, error) {
	const op = "postgresrepo.ReservationRepo.ListBooked"

	// NOT (end_time < start OR start_time > end): touching intervals conflict.
	rows, err := r.handle().Query(ctx,
		`SELECT `+reservationColumns+`
       	 FROM reservations
      	 WHERE seat_id = ANY($1)
      	   AND status IN ('RESERVED', 'IN_USE')
      	   AND end_time >= $2
      	   AND start_time <= $3
      	 ORDER BY seat_id, start_time`,
		seatIDs, start, end,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := scanReservations(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *ReservationRepo) ListBySeatAndStatus(
	ctx context.Context,
	seatID int64,
	status domain.ReservationStatus,
) ([]domain.Reservation, error) {
	const op = "postgresrepo.ReservationRepo.ListBySeatAndStatus"

	rows, err := r.handle().Query(ctx,
		`SELECT `+reservationColumns+`
       	 FROM reservations
      	 WHERE seat_id = $1 AND status = $2
      	 ORDER BY id`,
		seatID, string(status),
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := scanReservations(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *ReservationRepo) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Reservation, error) {
	const op = "postgresrepo.ReservationRepo.ListByEmployee"

	rows, err := r.handle().Query(ctx,
		`SELECT `+reservationColumns+`
       	 FROM reservations
      	 WHERE employee_id = $1
      	 ORDER BY id`,
		employeeID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := scanReservations(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *ReservationRepo) ListByEmployeeBetween(
	ctx context.Context,
	employeeID int64,
	from, to time.Time,
) ([]domain.Reservation, error) {
	const op = "postgresrepo.ReservationRepo.ListByEmployeeBetween"

	rows, err := r.handle().Query(ctx,
		`SELECT `+reservationColumns+`
       	 FROM reservations
      	 WHERE employee_id = $1
      	   AND start_time <= $3
      	   AND end_time >= $2
      	 ORDER BY start_time, id`,
		employeeID, from, to,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := scanReservations(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *ReservationRepo) ListDue(ctx context.Context, q repository.DueQuery) ([]domain.Reservation, error) {
	const op = "postgresrepo.ReservationRepo.ListDue"

	where := []string{"status = $1"}
	args := []any{string(q.Status)}

	if !q.StartBefore.IsZero() {
		args = append(args, q.StartBefore)
		where = append(where, fmt.Sprintf("start_time < $%d", len(args)))
	}
	if !q.EndBefore.IsZero() {
		args = append(args, q.EndBefore)
		where = append(where, fmt.Sprintf("end_time < $%d", len(args)))
	}
	if q.NotCheckedIn {
		where = append(where, "check_in_at IS NULL")
	}

	rows, err := r.handle().Query(ctx,
		`SELECT `+reservationColumns+`
       	 FROM reservations
      	 WHERE `+strings.Join(where, " AND ")+`
      	 ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := scanReservations(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	var status string

	if err := row.Scan(
		&res.ID,
		&res.EmployeeID,
		&res.SeatID,
		&res.StartTime,
		&res.EndTime,
		&status,
		&res.CheckInAt,
		&res.CreatedAt,
		&res.ExtendedFromReservationID,
	); err != nil {
		return nil, err
	}
	res.Status = domain.ReservationStatus(status)

	return &res, nil
}

func scanReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}

	return out, rows.Err()
}
