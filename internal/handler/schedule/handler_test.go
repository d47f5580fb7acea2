package schedule

import (
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

	"github.com/brils-gym/booking-api/internal/model"
	"github.com/brils-gym/booking-api/internal/service/capacity"
	"github.com/brils-gym/booking-api/internal/service/schedule"
)

type fakeScheduleRepo struct {
	slots     []*model.WeeklySlot
	overrides []*model.Override
}

func (f *fakeScheduleRepo) ListWeeklySlots(ctx context.Context) ([]*model.WeeklySlot, error) {
	return f.slots, nil
}

func (f *fakeScheduleRepo) ListOverridesByDate(ctx context.Context, date string) ([]*model.Override, error) {
	var out []*model.Override
	for _, ov := range f.overrides {
		if ov.Date == date {
			out = append(out, ov)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) ListOverridesRange(ctx context.Context, from, to string) ([]*model.Override, error) {
	var out []*model.Override
	for _, ov := range f.overrides {
		if ov.Date >= from && ov.Date <= to {
			out = append(out, ov)
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	rows []*model.Appointment
}

func (f *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return f.rows, nil
}

func (f *fakeAppointmentRepo) Insert(ctx context.Context, appt *model.Appointment) (*model.BookingEcho, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus, owner *uuid.UUID) (*model.CancelEcho, error) {
	return nil, fmt.Errorf("not used")
}

func ptrI64(v int64) *int64 { return &v }

func setupRouter(schedRepo *fakeScheduleRepo, apptRepo *fakeAppointmentRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	agg := capacity.NewAggregator(apptRepo, nil)
	h := NewHandler(schedule.NewService(schedRepo), agg)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

type availabilityResponse struct {
	Data []*model.WindowAvailability `json:"data"`
}

func getAvailability(t *testing.T, r *gin.Engine, date string) (*httptest.ResponseRecorder, []*model.WindowAvailability) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/"+date+"/availability", nil)
	r.ServeHTTP(w, req)

	var resp availabilityResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp.Data
}

func TestGetAvailabilityJoinsOccupancy(t *testing.T) {
	schedRepo := &fakeScheduleRepo{slots: []*model.WeeklySlot{
		{ID: 5, Weekday: time.Monday, StartTime: "09:00", EndTime: "10:00", Capacity: 3},
	}}
	apptRepo := &fakeAppointmentRepo{rows: []*model.Appointment{
		{UserID: uuid.New(), Date: "2025-06-02", StartTime: "09:00:00", EndTime: "10:00:00", SlotID: ptrI64(5), Status: model.AppointmentStatusBooked},
		{UserID: uuid.New(), Date: "2025-06-02", StartTime: "09:00:00", EndTime: "10:00:00", SlotID: ptrI64(5), Status: model.AppointmentStatusBooked},
	}}
	r := setupRouter(schedRepo, apptRepo)

	w, windows := getAvailability(t, r, "2025-06-02")

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, windows, 1)
	assert.Equal(t, 2, windows[0].Occupancy)
	assert.Equal(t, 1, windows[0].Remaining)
}

func TestGetAvailabilityRemainingFlooredAtZero(t *testing.T) {
	schedRepo := &fakeScheduleRepo{slots: []*model.WeeklySlot{
		{ID: 5, Weekday: time.Monday, StartTime: "09:00", EndTime: "10:00", Capacity: 1},
	}}
	apptRepo := &fakeAppointmentRepo{rows: []*model.Appointment{
		{UserID: uuid.New(), Date: "2025-06-02", StartTime: "09:00:00", EndTime: "10:00:00", SlotID: ptrI64(5), Status: model.AppointmentStatusBooked},
		{UserID: uuid.New(), Date: "2025-06-02", StartTime: "09:00:00", EndTime: "10:00:00", SlotID: ptrI64(5), Status: model.AppointmentStatusBooked},
	}}
	r := setupRouter(schedRepo, apptRepo)

	w, windows := getAvailability(t, r, "2025-06-02")

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, windows, 1)
	assert.Equal(t, 2, windows[0].Occupancy)
	assert.Equal(t, 0, windows[0].Remaining)
}

func TestGetAvailabilityAppliesOverrides(t *testing.T) {
	schedRepo := &fakeScheduleRepo{
		slots: []*model.WeeklySlot{
			{ID: 5, Weekday: time.Monday, StartTime: "09:00", EndTime: "10:00", Capacity: 3},
		},
		overrides: []*model.Override{
			{ID: 1, Date: "2025-06-02", SlotID: ptrI64(5), Action: model.OverrideActionRemove},
		},
	}
	r := setupRouter(schedRepo, &fakeAppointmentRepo{})

	w, windows := getAvailability(t, r, "2025-06-02")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, windows)
}

func TestGetAvailabilityRejectsBadDate(t *testing.T) {
	r := setupRouter(&fakeScheduleRepo{}, &fakeAppointmentRepo{})

	w, _ := getAvailability(t, r, "junk")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOverrides(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	schedRepo := &fakeScheduleRepo{overrides: []*model.Override{
		{ID: 1, Date: today, SlotID: ptrI64(5), Action: model.OverrideActionRemove},
	}}
	r := setupRouter(schedRepo, &fakeAppointmentRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/overrides?days_ahead=7", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "remove")
}

func TestListOverridesRejectsBadDaysAhead(t *testing.T) {
	r := setupRouter(&fakeScheduleRepo{}, &fakeAppointmentRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/overrides?days_ahead=zero", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
