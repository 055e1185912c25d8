package httpgin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	redisrepo "github.com/kirinyoku/deskgo/internal/repository/redis"
	"github.com/kirinyoku/deskgo/internal/service"
	"github.com/kirinyoku/deskgo/internal/service/reservation"
)

const idemLockTTL = 60 * time.Second

// @Summary  Create reservation (idempotent)
// @Tags     reservations
// @Param    Idempotency-Key header string false "replays the first successful response"
// @Param    req body  CreateReservationRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} ReservationResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse "seat not found"
// @Failure  409 {object} ErrorResponse "idempotency key in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /api/reservations [post]
func handleCreateReservation(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateReservationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemReservation(req.EmployeeID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				replay(c, idemKey, payload)
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, idemLockTTL)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					replay(c, idemKey, payload)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		res, err := svcs.Reservation.Create(c.Request.Context(), reservation.CreateInput{
			EmployeeID: req.EmployeeID,
			SeatID:     req.SeatID,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
		})
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := toReservationResponse(*res)

		if idemStorageKey != "" {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

func replay(c *gin.Context, idemKey, payload string) {
	c.Header("Idempotency-Key", idemKey)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
}

// @Summary  Cancel reservation
// @Tags     reservations
// @Param    id  path  int  true  "Reservation ID"
// @Param    req body  EmployeeRequest true "caller"
// @Success  204
// @Failure  403 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /api/reservations/{id}/cancel [post]
func handleCancelReservation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req EmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := svcs.Reservation.Cancel(c.Request.Context(), id, req.EmployeeID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Check in
// @Tags     reservations
// @Param    id  path  int  true  "Reservation ID"
// @Param    req body  EmployeeRequest true "caller"
// @Success  200 {object} ReservationResponse
// @Failure  403 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "not RESERVED or seat not AVAILABLE"
// @Router   /api/reservations/{id}/checkin [post]
func handleCheckIn(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req EmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		res, err := svcs.Reservation.CheckIn(c.Request.Context(), id, req.EmployeeID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toReservationResponse(*res))
	}
}

// @Summary  Extend by one hour
// @Description Creates a new IN_USE reservation continuing the given one.
// @Tags     reservations
// @Param    id  path  int  true  "Reservation ID"
// @Param    req body  ExtendReservationRequest true "payload"
// @Success  201 {object} ReservationResponse
// @Failure  400 {object} ErrorResponse
// @Failure  403 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse
// @Router   /api/reservations/{id}/extend [post]
func handleExtendReservation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req ExtendReservationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		res, err := svcs.Reservation.Extend(c.Request.Context(), id, req.NewEndTime, req.EmployeeID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, toReservationResponse(*res))
	}
}

// @Summary  Return seat
// @Tags     reservations
// @Param    id  path  int  true  "Reservation ID"
// @Param    req body  EmployeeRequest true "caller"
// @Success  200 {object} ReservationResponse
// @Failure  403 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse
// @Router   /api/reservations/{id}/return [post]
func handleReturnSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req EmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		res, err := svcs.Reservation.ReturnSeat(c.Request.Context(), id, req.EmployeeID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toReservationResponse(*res))
	}
}

// @Summary  Active reservations of an employee
// @Tags     reservations
// @Param    employeeId path int true "Employee ID"
// @Success  200 {array} ReservationResponse
// @Router   /api/reservations/employee/{employeeId} [get]
func handleListActiveReservations(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID, ok := parseInt64Param(c, "employeeId")
		if !ok {
			return
		}

		rs, err := svcs.Reservation.ListActiveByEmployee(c.Request.Context(), employeeID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toReservationResponses(rs))
	}
}

// @Summary  Reservation history
// @Tags     reservations
// @Param    employee_id query int    true  "Employee ID"
// @Param    start       query string true  "RFC3339"
// @Param    end         query string true  "RFC3339"
// @Param    skip        query int    false "offset"
// @Param    limit       query int    false "page size (default 5)"
// @Success  200 {array} ReservationResponse
// @Failure  400 {object} ErrorResponse
// @Router   /api/reservations/history [get]
func handleReservationHistory(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID, err := strconv.ParseInt(c.Query("employee_id"), 10, 64)
		if err != nil || employeeID <= 0 {
			badRequest(c, "invalid employee_id")
			return
		}
		start, ok := parseTimeQuery(c, "start")
		if !ok {
			return
		}
		end, ok := parseTimeQuery(c, "end")
		if !ok {
			return
		}
		skip, ok := parseIntQuery(c, "skip")
		if !ok {
			return
		}
		limit, ok := parseIntQuery(c, "limit")
		if !ok {
			return
		}

		rs, err := svcs.Reservation.History(c.Request.Context(), reservation.HistoryQuery{
			EmployeeID: employeeID,
			Start:      start,
			End:        end,
			Skip:       skip,
			Limit:      limit,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toReservationResponses(rs))
	}
}

// @Summary  Available seats in a window
// @Tags     reservations
// @Param    start    query string true  "RFC3339"
// @Param    end      query string true  "RFC3339"
// @Param    seat_ids query string true  "candidate seat ids, comma separated"
// @Param    skip     query int    false "offset"
// @Param    limit    query int    false "page size (default 5)"
// @Success  200 {array} integer
// @Failure  400 {object} ErrorResponse
// @Router   /api/reservations/available-seats [get]
func handleAvailableSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, ok := parseTimeQuery(c, "start")
		if !ok {
			return
		}
		end, ok := parseTimeQuery(c, "end")
		if !ok {
			return
		}
		seatIDs, ok := parseIDList(c, "seat_ids")
		if !ok {
			return
		}
		skip, ok := parseIntQuery(c, "skip")
		if !ok {
			return
		}
		limit, ok := parseIntQuery(c, "limit")
		if !ok {
			return
		}

		ids, err := svcs.Reservation.AvailableSeats(c.Request.Context(), reservation.AvailabilityQuery{
			Start:   start,
			End:     end,
			SeatIDs: seatIDs,
			Skip:    skip,
			Limit:   limit,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ids)
	}
}
