package httpgin

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/events"
	redisrepo "github.com/kirinyoku/deskgo/internal/repository/redis"
	"github.com/kirinyoku/deskgo/internal/service"
	"github.com/kirinyoku/deskgo/internal/service/admin"
	"github.com/kirinyoku/deskgo/internal/service/query"
	"github.com/kirinyoku/deskgo/internal/service/reservation"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SeatFeed delivers seat-change events until ctx is done.
type SeatFeed interface {
	Subscribe(ctx context.Context, handler func(ctx context.Context, ev events.Event)) error
}

// NewRouter wires the HTTP API. idem and feed may be nil: creates are then
// not deduplicated and the seat event stream answers 503.
func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	feed SeatFeed,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	reservations := api.Group("/reservations")
	{
		reservations.POST("", handleCreateReservation(svcs, idem))
		reservations.POST("/:id/cancel", handleCancelReservation(svcs))
		reservations.POST("/:id/checkin", handleCheckIn(svcs))
		reservations.POST("/:id/extend", handleExtendReservation(svcs))
		reservations.POST("/:id/return", handleReturnSeat(svcs))
		reservations.GET("/employee/:employeeId", handleListActiveReservations(svcs))
		reservations.GET("/history", handleReservationHistory(svcs))
		reservations.GET("/available-seats", handleAvailableSeats(svcs))
	}

	seats := api.Group("/seats")
	{
		seats.GET("/buildings", handleListBuildings(svcs))
		seats.GET("/events", handleSeatEvents(feed))
		seats.GET("/building/:buildingId/floor/:floor/seats", handleListFloorSeats(svcs))
		seats.GET("/:id", handleGetSeat(svcs))
	}

	api.GET("/floors/building/:buildingId", handleListFloors(svcs))

	// TODO: guard the admin group once employee roles exist.
	adm := api.Group("/admin")
	{
		adm.POST("/force-return/:seatId", handleForceReturn(svcs))
		adm.GET("/seat-status", handleSeatStatus(svcs))
		adm.POST("/sweep", handleRunSweep(svcs))
	}

	return r
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

// parseIntQuery reads an optional integer query parameter; absent means 0.
func parseIntQuery(c *gin.Context, name string) (int, bool) {
	s := c.Query(name)
	if s == "" {
		return 0, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseTimeQuery(c *gin.Context, name string) (time.Time, bool) {
	s := c.Query(name)
	if s == "" {
		badRequest(c, name+" is required")
		return time.Time{}, false
	}
	v, err := parseRFC3339(s)
	if err != nil {
		badRequest(c, "invalid "+name+" (RFC3339)")
		return time.Time{}, false
	}
	return v, true
}

// parseIDList accepts repeated and comma separated values: ?seat_ids=1,2&seat_ids=3.
func parseIDList(c *gin.Context, name string) ([]int64, bool) {
	var out []int64
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				badRequest(c, "invalid "+name)
				return nil, false
			}
			out = append(out, v)
		}
	}
	return out, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// publicErrors are the sentinels whose text is safe to return to callers.
var publicErrors = []error{
	reservation.ErrMissingField,
	reservation.ErrStartNotInFuture,
	reservation.ErrEndBeforeStart,
	reservation.ErrTooLong,
	reservation.ErrSeatBroken,
	reservation.ErrSeatAlreadyBooked,
	reservation.ErrDailyLimit,
	reservation.ErrExtensionStep,
	reservation.ErrExtensionNextDay,
	reservation.ErrNoCandidates,
	reservation.ErrBadPage,
	reservation.ErrNotReserved,
	reservation.ErrNotInUse,
	reservation.ErrSeatNotAvailable,
	reservation.ErrSeatUnavailable,
	reservation.ErrSeatNotOccupied,
	reservation.ErrStaleReservation,
	reservation.ErrNotOwner,
	reservation.ErrReservationNotFound,
	reservation.ErrSeatNotFound,
	query.ErrSeatNotFound,
	query.ErrFloorNotFound,
	admin.ErrFloorNotFound,
}

var errorKinds = []struct {
	kind   error
	status int
}{
	{domain.ErrInvalidArgument, http.StatusBadRequest},
	{domain.ErrInvalidState, http.StatusConflict},
	{domain.ErrPermissionDenied, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	_ = c.Error(err)

	var rl reservation.RateLimitedError
	if errors.As(err, &rl) {
		secs := int(math.Ceil(rl.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
		return
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			c.JSON(k.status, ErrorResponse{Error: publicMessage(err, k.kind)})
			return
		}
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func publicMessage(err, kind error) string {
	for _, sentinel := range publicErrors {
		if errors.Is(err, sentinel) {
			return strings.TrimSuffix(sentinel.Error(), ": "+kind.Error())
		}
	}
	return kind.Error()
}
