package postgresrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/repository"
)

type SeatRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SeatRepo) With(db DB) *SeatRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SeatRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetSeat retrieves a seat by its ID.
//
// Returns:
//   - *domain.Seat: the seat when found.
//   - error: repository.ErrNotFound if the seat does not exist.
func (r *SeatRepo) GetSeat(ctx context.Context, id int64) (*domain.Seat, error) {
	const op = "postgresrepo.SeatRepo.GetSeat"

	return r.getSeat(ctx, op,
		`SELECT id, floor_id, name, status FROM seats WHERE id = $1`, id)
}

// LockSeat retrieves a seat and locks its row until the surrounding
// transaction ends.
func (r *SeatRepo) LockSeat(ctx context.Context, id int64) (*domain.Seat, error) {
	const op = "postgresrepo.SeatRepo.LockSeat"

	return r.getSeat(ctx, op,
		`SELECT id, floor_id, name, status FROM seats WHERE id = $1 FOR UPDATE`, id)
}

func (r *SeatRepo) getSeat(ctx context.Context, op, sql string, id int64) (*domain.Seat, error) {
	db := r.handle()

	var s domain.Seat
	var status string
	if err := db.QueryRow(ctx, sql, id).Scan(&s.ID, &s.FloorID, &s.Name, &status); err != nil {
		return nil, wrapDBErr(op, err)
	}
	s.Status = domain.SeatStatus(status)

	return &s, nil
}

func (r *SeatRepo) ListSeats(ctx context.Context, ids []int64) ([]domain.Seat, error) {
	const op = "postgresrepo.SeatRepo.ListSeats"

	rows, err := r.handle().Query(ctx,
		`SELECT id, floor_id, name, status
       	 FROM seats
      	 WHERE id = ANY($1)
      	 ORDER BY id`,
		ids,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := scanSeats(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *SeatRepo) ListSeatsByFloor(ctx context.Context, floorID int64) ([]domain.Seat, error) {
	const op = "postgresrepo.SeatRepo.ListSeatsByFloor"

	rows, err := r.handle().Query(ctx,
		`SELECT id, floor_id, name, status
       	 FROM seats
      	 WHERE floor_id = $1
      	 ORDER BY id`,
		floorID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := scanSeats(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *SeatRepo) UpdateSeatStatus(ctx context.Context, id int64, status domain.SeatStatus) error {
	const op = "postgresrepo.SeatRepo.UpdateSeatStatus"

	tag, err := r.handle().Exec(ctx,
		`UPDATE seats SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrNotFound)
	}

	return nil
}

// FindFloor resolves a floor by building and floor number.
//
// Returns:
//   - error: repository.ErrNotFound if the building has no such floor.
func (r *SeatRepo) FindFloor(ctx context.Context, buildingID int64, number int) (*domain.Floor, error) {
	const op = "postgresrepo.SeatRepo.FindFloor"

	var f domain.Floor
	err := r.handle().QueryRow(ctx,
		`SELECT id, building_id, floor_number
       	 FROM floors
      	 WHERE building_id = $1 AND floor_number = $2`,
		buildingID, number,
	).Scan(&f.ID, &f.BuildingID, &f.Number)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &f, nil
}

func (r *SeatRepo) ListFloorsByBuilding(ctx context.Context, buildingID int64) ([]domain.Floor, error) {
	const op = "postgresrepo.SeatRepo.ListFloorsByBuilding"

	rows, err := r.handle().Query(ctx,
		`SELECT id, building_id, floor_number
       	 FROM floors
      	 WHERE building_id = $1
      	 ORDER BY floor_number`,
		buildingID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Floor
	for rows.Next() {
		var f domain.Floor
		if err := rows.Scan(&f.ID, &f.BuildingID, &f.Number); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *SeatRepo) ListBuildings(ctx context.Context) ([]domain.Building, error) {
	const op = "postgresrepo.SeatRepo.ListBuildings"

	rows, err := r.handle().Query(ctx, `SELECT id, name, address FROM buildings ORDER BY id`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Building
	for rows.Next() {
		var b domain.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.Address); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func scanSeats(rows pgx.Rows) ([]domain.Seat, error) {
	defer rows.Close()

	var out []domain.Seat
	for rows.Next() {
		var s domain.Seat
		var status string
		if err := rows.Scan(&s.ID, &s.FloorID, &s.Name, &status); err != nil {
			return nil, err
		}
		s.Status = domain.SeatStatus(status)
		out = append(out, s)
	}

	return out, rows.Err()
}
