package httpgin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/deskgo/internal/events"
	"github.com/kirinyoku/deskgo/internal/service"
)

const (
	referenceCacheControl = "public, max-age=60"
	seatCacheControl      = "no-cache"
)

// @Summary  Get seat
// @Tags     seats
// @Param    id  path  int  true  "Seat ID"
// @Success  200  {object}  domain.Seat
// @Failure  404  {object}  ErrorResponse
// @Router   /api/seats/{id} [get]
func handleGetSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		seat, err := svcs.Query.GetSeat(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		// seat status changes often: revalidate on every request
		writeJSONWithETag(c, seat, seatCacheControl)
	}
}

// @Summary  List buildings
// @Tags     seats
// @Success  200  {array}  domain.Building
// @Router   /api/seats/buildings [get]
func handleListBuildings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bs, err := svcs.Query.ListBuildings(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, bs, referenceCacheControl)
	}
}

// @Summary  List seats on a floor
// @Tags     seats
// @Param    buildingId path int true "Building ID"
// @Param    floor      path int true "Floor number"
// @Success  200  {array}   domain.Seat
// @Failure  404  {object}  ErrorResponse
// @Router   /api/seats/building/{buildingId}/floor/{floor}/seats [get]
func handleListFloorSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		buildingID, ok := parseInt64Param(c, "buildingId")
		if !ok {
			return
		}
		floor, err := strconv.Atoi(c.Param("floor"))
		if err != nil {
			badRequest(c, "invalid floor")
			return
		}

		seats, err := svcs.Query.ListSeatsByBuildingFloor(c.Request.Context(), buildingID, floor)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, seats, seatCacheControl)
	}
}

// @Summary  List floors of a building
// @Tags     seats
// @Param    buildingId path int true "Building ID"
// @Success  200  {array}  domain.Floor
// @Router   /api/floors/building/{buildingId} [get]
func handleListFloors(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		buildingID, ok := parseInt64Param(c, "buildingId")
		if !ok {
			return
		}
		floors, err := svcs.Query.ListFloors(c.Request.Context(), buildingID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, floors, referenceCacheControl)
	}
}

// @Summary  Seat change stream
// @Description Server-Sent Events, one per seat status change.
// @Tags     seats
// @Produce  text/event-stream
// @Success  200 {object} events.Event
// @Failure  503 {object} ErrorResponse "no event backend configured"
// @Router   /api/seats/events [get]
func handleSeatEvents(feed SeatFeed) gin.HandlerFunc {
	return func(c *gin.Context) {
		if feed == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "seat events are not available"})
			return
		}

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		ch := make(chan events.Event, 16)
		go func() {
			defer close(ch)
			_ = feed.Subscribe(ctx, func(ctx context.Context, ev events.Event) {
				select {
				case ch <- ev:
				case <-ctx.Done():
				}
			})
		}()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)
		c.Writer.Flush()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				c.SSEvent(string(ev.Type), ev)
				c.Writer.Flush()
			}
		}
	}
}
