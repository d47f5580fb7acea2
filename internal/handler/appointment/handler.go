package appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/brils-gym/booking-api/internal/handler"
	"github.com/brils-gym/booking-api/internal/middleware"
	"github.com/brils-gym/booking-api/internal/model"
	"github.com/brils-gym/booking-api/internal/repository"
	"github.com/brils-gym/booking-api/internal/service/booking"
	"github.com/brils-gym/booking-api/internal/service/capacity"
	"github.com/brils-gym/booking-api/internal/service/schedule"
	apperrors "github.com/brils-gym/booking-api/pkg/errors"
	"github.com/brils-gym/booking-api/pkg/timeutil"
)

type Handler struct {
	bookingSvc  *booking.Service
	scheduleSvc *schedule.Service
	aggregator  *capacity.Aggregator
	typeRepo    repository.AppointmentTypeRepository
}

func NewHandler(
	bookingSvc *booking.Service,
	scheduleSvc *schedule.Service,
	aggregator *capacity.Aggregator,
	typeRepo repository.AppointmentTypeRepository,
) *Handler {
	return &Handler{
		bookingSvc:  bookingSvc,
		scheduleSvc: scheduleSvc,
		aggregator:  aggregator,
		typeRepo:    typeRepo,
	}
}

// CreateAppointment books a slot. The capacity decision happens here, in
// the calling layer: the engine exposes counts, the handler rejects when
// the window is full, and the store's own constraints remain the hard
// backstop under concurrent requests.
func (h *Handler) CreateAppointment(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	ymd := timeutil.NormalizeYMD(req.Date)
	if h.aggregator.Date() != ymd {
		if err := h.aggregator.Refresh(c.Request.Context(), ymd); err != nil {
			c.JSON(http.StatusBadGateway, handler.NewErrorResponse(err.Error()))
			return
		}
	}

	if req.SlotID != nil {
		windows, err := h.scheduleSvc.ResolveDay(c.Request.Context(), ymd)
		if err != nil {
			c.JSON(http.StatusBadGateway, handler.NewErrorResponse(err.Error()))
			return
		}

		key := model.NewSlotKey(req.SlotID, req.StartTime, req.EndTime)
		for _, w := range windows {
			if w.Key() != key {
				continue
			}
			if h.aggregator.OccupancyFor(key) >= w.Capacity {
				c.JSON(http.StatusConflict, handler.NewErrorResponse("slot is full"))
				return
			}
			break
		}
	}

	echo, err := h.bookingSvc.Book(c.Request.Context(), userID, &req)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			c.JSON(appErr.StatusCode(), handler.NewErrorResponse(appErr.Message))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(echo))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	echo, err := h.bookingSvc.Cancel(c.Request.Context(), id, &userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("appointment not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(echo))
}

func (h *Handler) ListUpcoming(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid limit"))
			return
		}
		limit = parsed
	}

	appointments, err := h.bookingSvc.FetchUserUpcoming(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	if date := c.Query("date"); date != "" {
		appointments, err := h.bookingSvc.FetchUserAppointmentsByDate(c.Request.Context(), userID, date)
		if err != nil {
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
		return
	}

	daysAhead := 14
	if v := c.Query("days_ahead"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid days_ahead"))
			return
		}
		daysAhead = parsed
	}

	appointments, err := h.bookingSvc.FetchAppointmentsRange(c.Request.Context(), userID, daysAhead)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) ListAppointmentTypes(c *gin.Context) {
	types, err := h.typeRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(types))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/upcoming", h.ListUpcoming)
		appointments.POST("/:id/cancel", h.CancelAppointment)
	}
	r.GET("/appointment-types", h.ListAppointmentTypes)
}
