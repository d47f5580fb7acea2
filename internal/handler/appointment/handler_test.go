package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brils-gym/booking-api/internal/middleware"
	"github.com/brils-gym/booking-api/internal/model"
	"github.com/brils-gym/booking-api/internal/service/booking"
	"github.com/brils-gym/booking-api/internal/service/capacity"
	"github.com/brils-gym/booking-api/internal/service/schedule"
	apperrors "github.com/brils-gym/booking-api/pkg/errors"
)

type fakeAppointmentRepo struct {
	rows      []*model.Appointment
	insertErr error
	inserts   int
}

func (f *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return f.rows, nil
}

func (f *fakeAppointmentRepo) Insert(ctx context.Context, appt *model.Appointment) (*model.BookingEcho, error) {
	f.inserts++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return &model.BookingEcho{
		Date:      appt.Date,
		StartTime: appt.StartTime,
		EndTime:   appt.EndTime,
		SlotID:    appt.SlotID,
	}, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus, owner *uuid.UUID) (*model.CancelEcho, error) {
	return nil, fmt.Errorf("not used")
}

type fakeScheduleRepo struct {
	slots []*model.WeeklySlot
}

func (f *fakeScheduleRepo) ListWeeklySlots(ctx context.Context) ([]*model.WeeklySlot, error) {
	return f.slots, nil
}

func (f *fakeScheduleRepo) ListOverridesByDate(ctx context.Context, date string) ([]*model.Override, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) ListOverridesRange(ctx context.Context, from, to string) ([]*model.Override, error) {
	return nil, nil
}

type fakeTypeRepo struct{}

func (f *fakeTypeRepo) List(ctx context.Context) ([]*model.AppointmentType, error) {
	return []*model.AppointmentType{{ID: 1, Name: "open gym"}}, nil
}

func ptrI64(v int64) *int64 { return &v }

func setupRouter(apptRepo *fakeAppointmentRepo, schedRepo *fakeScheduleRepo) (*gin.Engine, uuid.UUID) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	agg := capacity.NewAggregator(apptRepo, nil)
	bookingSvc := booking.NewService(apptRepo, agg, nil, nil, nil)
	scheduleSvc := schedule.NewService(schedRepo)
	h := NewHandler(bookingSvc, scheduleSvc, agg, &fakeTypeRepo{})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID.String())
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, userID
}

func bookedRow(slotID *int64, start, end string) *model.Appointment {
	return &model.Appointment{
		UserID:    uuid.New(),
		Date:      "2025-06-02",
		StartTime: start,
		EndTime:   end,
		SlotID:    slotID,
		Status:    model.AppointmentStatusBooked,
	}
}

func postBooking(t *testing.T, r *gin.Engine, req *model.CreateAppointmentRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, httpReq)
	return w
}

// 2025-06-02 is a Monday.
func mondayScheduleRepo(capacity int) *fakeScheduleRepo {
	return &fakeScheduleRepo{slots: []*model.WeeklySlot{
		{ID: 5, Weekday: time.Monday, StartTime: "09:00", EndTime: "10:00", Capacity: capacity},
	}}
}

func TestCreateAppointmentAcceptsWhileBelowCapacity(t *testing.T) {
	apptRepo := &fakeAppointmentRepo{rows: []*model.Appointment{
		bookedRow(ptrI64(5), "09:00:00", "10:00:00"),
		bookedRow(ptrI64(5), "09:00:00", "10:00:00"),
	}}
	r, _ := setupRouter(apptRepo, mondayScheduleRepo(3))

	w := postBooking(t, r, &model.CreateAppointmentRequest{
		Date: "2025-06-02", StartTime: "09:00", EndTime: "10:00",
		SlotID: ptrI64(5), AppointmentTypeID: 1,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, apptRepo.inserts)
}

func TestCreateAppointmentRejectsFullSlot(t *testing.T) {
	apptRepo := &fakeAppointmentRepo{rows: []*model.Appointment{
		bookedRow(ptrI64(5), "09:00:00", "10:00:00"),
		bookedRow(ptrI64(5), "09:00:00", "10:00:00"),
		bookedRow(ptrI64(5), "09:00:00", "10:00:00"),
	}}
	r, _ := setupRouter(apptRepo, mondayScheduleRepo(3))

	w := postBooking(t, r, &model.CreateAppointmentRequest{
		Date: "2025-06-02", StartTime: "09:00", EndTime: "10:00",
		SlotID: ptrI64(5), AppointmentTypeID: 1,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, apptRepo.inserts, "store never reached when the window is full")
}

func TestCreateAppointmentCustomWindowSkipsSlotPolicy(t *testing.T) {
	apptRepo := &fakeAppointmentRepo{}
	r, _ := setupRouter(apptRepo, mondayScheduleRepo(3))

	w := postBooking(t, r, &model.CreateAppointmentRequest{
		Date: "2025-06-02", StartTime: "14:00", EndTime: "14:30",
		AppointmentTypeID: 1,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, apptRepo.inserts)
}

func TestCreateAppointmentStoreConflictMapsTo409(t *testing.T) {
	apptRepo := &fakeAppointmentRepo{
		insertErr: apperrors.Conflict("appointment conflicts with an existing booking", nil),
	}
	r, _ := setupRouter(apptRepo, mondayScheduleRepo(3))

	w := postBooking(t, r, &model.CreateAppointmentRequest{
		Date: "2025-06-02", StartTime: "14:00", EndTime: "14:30",
		AppointmentTypeID: 1,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateAppointmentRejectsMalformedBody(t *testing.T) {
	apptRepo := &fakeAppointmentRepo{}
	r, _ := setupRouter(apptRepo, mondayScheduleRepo(3))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", bytes.NewReader([]byte(`{"date":1}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, apptRepo.inserts)
}

func TestListAppointmentTypes(t *testing.T) {
	r, _ := setupRouter(&fakeAppointmentRepo{}, mondayScheduleRepo(3))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointment-types", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "open gym")
}
