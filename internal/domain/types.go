package domain

import (
	"time"
)

type SeatStatus string

const (
	SeatAvailable   SeatStatus = "AVAILABLE"
	SeatUnavailable SeatStatus = "UNAVAILABLE"
	SeatBroken      SeatStatus = "BROKEN"
)

type ReservationStatus string

const (
	StatusPending      ReservationStatus = "PENDING"
	StatusReserved     ReservationStatus = "RESERVED"
	StatusInUse        ReservationStatus = "IN_USE"
	StatusNoShow       ReservationStatus = "NO_SHOW"
	StatusCancelled    ReservationStatus = "CANCELLED"
	StatusCompleted    ReservationStatus = "COMPLETED"
	StatusForcedCancel ReservationStatus = "FORCED_CANCEL"
)

type Building struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Floor struct {
	ID         int64 `json:"id"`
	BuildingID int64 `json:"building_id"`
	Number     int   `json:"floor"`
}

type Seat struct {
	ID      int64      `json:"id"`
	FloorID int64      `json:"floor_id"`
	Name    string     `json:"name"`
	Status  SeatStatus `json:"status"`
}

type Reservation struct {
	ID                        int64             `json:"id"`
	EmployeeID                int64             `json:"employee_id"`
	SeatID                    int64             `json:"seat_id"`
	StartTime                 time.Time         `json:"start_time"`
	EndTime                   time.Time         `json:"end_time"`
	Status                    ReservationStatus `json:"status"`
	CheckInAt                 *time.Time        `json:"check_in_at,omitempty"`
	CreatedAt                 time.Time         `json:"created_at"`
	ExtendedFromReservationID *int64            `json:"extended_from_reservation_id,omitempty"`
}

// Booked reports whether the reservation blocks its seat for other bookings.
func (r Reservation) Booked() bool {
	return r.Status == StatusReserved || r.Status == StatusInUse
}
