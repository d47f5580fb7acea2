package schedule

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/brils-gym/booking-api/internal/handler"
	"github.com/brils-gym/booking-api/internal/model"
	"github.com/brils-gym/booking-api/internal/service/capacity"
	"github.com/brils-gym/booking-api/internal/service/schedule"
)

type Handler struct {
	scheduleSvc *schedule.Service
	aggregator  *capacity.Aggregator
}

func NewHandler(scheduleSvc *schedule.Service, aggregator *capacity.Aggregator) *Handler {
	return &Handler{
		scheduleSvc: scheduleSvc,
		aggregator:  aggregator,
	}
}

// GetAvailability is the day view in one call: the effective windows for a
// date joined with live occupancy. The refresh here is the reconciliation
// point the rest of the session relies on after date navigation.
func (h *Handler) GetAvailability(c *gin.Context) {
	date := c.Param("date")

	windows, err := h.scheduleSvc.ResolveDay(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.aggregator.Refresh(c.Request.Context(), date); err != nil {
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse(err.Error()))
		return
	}

	availability := make([]*model.WindowAvailability, 0, len(windows))
	for _, w := range windows {
		occupancy := h.aggregator.OccupancyFor(w.Key())
		remaining := w.Capacity - occupancy
		if remaining < 0 {
			remaining = 0
		}
		availability = append(availability, &model.WindowAvailability{
			EffectiveWindow: *w,
			Occupancy:       occupancy,
			Remaining:       remaining,
		})
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(availability))
}

func (h *Handler) ListOverrides(c *gin.Context) {
	daysAhead := 14
	if v := c.Query("days_ahead"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid days_ahead"))
			return
		}
		daysAhead = parsed
	}

	overrides, err := h.scheduleSvc.OverridesRange(c.Request.Context(), daysAhead)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(overrides))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sched := r.Group("/schedule")
	{
		sched.GET("/:date/availability", h.GetAvailability)
		sched.GET("/overrides", h.ListOverrides)
	}
}
