package httpgin

import (
	"time"

	"github.com/kirinyoku/deskgo/internal/domain"
)

type CreateReservationRequest struct {
	EmployeeID int64     `json:"employee_id" binding:"required"`
	SeatID     int64     `json:"seat_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
}

// EmployeeRequest identifies the caller for cancel, check-in and return.
type EmployeeRequest struct {
	EmployeeID int64 `json:"employee_id" binding:"required"`
}

type ExtendReservationRequest struct {
	EmployeeID int64     `json:"employee_id" binding:"required"`
	NewEndTime time.Time `json:"new_end_time" binding:"required"`
}

type ReservationResponse struct {
	ID                        int64     `json:"id"`
	EmployeeID                int64     `json:"employee_id"`
	SeatID                    int64     `json:"seat_id"`
	StartTime                 time.Time `json:"start_time"`
	EndTime                   time.Time `json:"end_time"`
	Status                    string    `json:"status"`
	ExtendedFromReservationID *int64    `json:"extended_from_reservation_id,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toReservationResponse(r domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:                        r.ID,
		EmployeeID:                r.EmployeeID,
		SeatID:                    r.SeatID,
		StartTime:                 r.StartTime,
		EndTime:                   r.EndTime,
		Status:                    string(r.Status),
		ExtendedFromReservationID: r.ExtendedFromReservationID,
	}
}

func toReservationResponses(rs []domain.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReservationResponse(r))
	}
	return out
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
