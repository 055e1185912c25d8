package httpgin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/deskgo/internal/service"
)

// @Summary  Force-cancel a seat's IN_USE reservations
// @Tags     admin
// @Param    seatId path int true "Seat ID"
// @Success  204
// @Router   /api/admin/force-return/{seatId} [post]
func handleForceReturn(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		seatID, ok := parseInt64Param(c, "seatId")
		if !ok {
			return
		}
		if _, err := svcs.Admin.ForceReturnSeat(c.Request.Context(), seatID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Seats of a floor with status
// @Tags     admin
// @Param    building_id query int true "Building ID"
// @Param    floor       query int true "Floor number"
// @Success  200 {array}  domain.Seat
// @Failure  404 {object} ErrorResponse
// @Router   /api/admin/seat-status [get]
func handleSeatStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		buildingID, err := strconv.ParseInt(c.Query("building_id"), 10, 64)
		if err != nil || buildingID <= 0 {
			badRequest(c, "invalid building_id")
			return
		}
		floor, err := strconv.Atoi(c.Query("floor"))
		if err != nil {
			badRequest(c, "invalid floor")
			return
		}

		seats, err := svcs.Admin.SeatStatus(c.Request.Context(), buildingID, floor)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, seats)
	}
}

// @Summary  Run one status sweep
// @Tags     admin
// @Success  200 {object} sweep.Report
// @Router   /api/admin/sweep [post]
func handleRunSweep(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		rep, err := svcs.Sweep.Tick(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, rep)
	}
}
