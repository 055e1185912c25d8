package repository

import (
	"context"
	"time"

	"github.com/kirinyoku/deskgo/internal/domain"
)

// SeatRepository reads reference data (buildings, floors, seats) and mutates
// seat status.
type SeatRepository interface {
	GetSeat(ctx context.Context, id int64) (*domain.Seat, error)
	// LockSeat returns the seat and, inside a transaction, holds a row lock on
	// it until commit so that concurrent bookings of one seat serialize.
	LockSeat(ctx context.Context, id int64) (*domain.Seat, error)
	ListSeats(ctx context.Context, ids []int64) ([]domain.Seat, error)
	ListSeatsByFloor(ctx context.Context, floorID int64) ([]domain.Seat, error)
	UpdateSeatStatus(ctx context.Context, id int64, status domain.SeatStatus) error

	FindFloor(ctx context.Context, buildingID int64, number int) (*domain.Floor, error)
	ListFloorsByBuilding(ctx context.Context, buildingID int64) ([]domain.Floor, error)
	ListBuildings(ctx context.Context) ([]domain.Building, error)
}

// DueQuery selects reservations whose wall-clock deadline has passed.
// Zero times are ignored.
type DueQuery struct {
	Status       domain.ReservationStatus
	StartBefore  time.Time
	EndBefore    time.Time
	NotCheckedIn bool
}

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Reservation, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Reservation, error)

	// Transition moves the reservation from one status to another and reports
	// false when the row was no longer in from.
	Transition(ctx context.Context, id int64, from, to domain.ReservationStatus) (bool, error)
	CheckIn(ctx context.Context, id int64, at time.Time) (bool, error)

	// ListBooked returns RESERVED and IN_USE reservations on the given seats
	// whose interval overlaps [start, end] inclusively.
	ListBooked(ctx context.Context, seatIDs []int64, start, end time.Time) ([]domain.Reservation, error)
	ListBySeatAndStatus(ctx context.Context, seatID int64, status domain.ReservationStatus) ([]domain.Reservation, error)
	// ListByEmployee returns every reservation of the employee ordered by ID.
	ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Reservation, error)
	// ListByEmployeeBetween returns reservations intersecting [from, to]
	// ordered by start time.
	ListByEmployeeBetween(ctx context.Context, employeeID int64, from, to time.Time) ([]domain.Reservation, error)
	ListDue(ctx context.Context, q DueQuery) ([]domain.Reservation, error)
}

type Repos interface {
	Seats() SeatRepository
	Reservations() ReservationRepository
}
