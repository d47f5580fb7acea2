package capacity

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brils-gym/booking-api/internal/model"
)

type fakeAppointmentRepo struct {
	rows []*model.Appointment
	err  error

	lastFilters *model.AppointmentFilters
}

func (f *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	f.lastFilters = filters
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeAppointmentRepo) Insert(ctx context.Context, appt *model.Appointment) (*model.BookingEcho, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus, owner *uuid.UUID) (*model.CancelEcho, error) {
	return nil, fmt.Errorf("not used")
}

func ptrI64(v int64) *int64 { return &v }

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

func TestRefreshBuildsExactCounts(t *testing.T) {
	repo := &fakeAppointmentRepo{rows: []*model.Appointment{
		bookedRow(ptrI64(5), "09:00:00", "10:00:00"),
		bookedRow(ptrI64(5), "09:00:00", "10:00:00"),
		bookedRow(nil, "14:00:00", "14:30:00"),
	}}
	agg := NewAggregator(repo, nil)

	require.NoError(t, agg.Refresh(context.Background(), "2025-06-02"))

	assert.Equal(t, 2, agg.OccupancyFor(model.NewSlotKey(ptrI64(5), "09:00", "10:00")))
	assert.Equal(t, 1, agg.OccupancyForCustomWindow("14:00", "14:30"))
	assert.Equal(t, "2025-06-02", agg.Date())

	require.NotNil(t, repo.lastFilters)
	assert.Equal(t, model.AppointmentStatusBooked, repo.lastFilters.Status)
	assert.Equal(t, "2025-06-02", repo.lastFilters.Date)
}

func TestRefreshIsIdempotent(t *testing.T) {
	repo := &fakeAppointmentRepo{rows: []*model.Appointment{
		bookedRow(ptrI64(5), "09:00:00", "10:00:00"),
	}}
	agg := NewAggregator(repo, nil)

	require.NoError(t, agg.Refresh(context.Background(), "2025-06-02"))
	first := agg.Snapshot()
	require.NoError(t, agg.Refresh(context.Background(), "2025-06-02"))

	assert.Equal(t, first, agg.Snapshot())
}

func TestRefreshReplacesStaleAdjustments(t *testing.T) {
	repo := &fakeAppointmentRepo{rows: []*model.Appointment{
		bookedRow(ptrI64(5), "09:00:00", "10:00:00"),
	}}
	agg := NewAggregator(repo, nil)
	require.NoError(t, agg.Refresh(context.Background(), "2025-06-02"))

	key := model.NewSlotKey(ptrI64(5), "09:00", "10:00")
	agg.Increment(key)
	agg.Increment(key)
	assert.Equal(t, 3, agg.OccupancyFor(key))

	// store truth wins over drifted local adjustments
	require.NoError(t, agg.Refresh(context.Background(), "2025-06-02"))
	assert.Equal(t, 1, agg.OccupancyFor(key))
}

func TestRefreshFailureKeepsPreviousMap(t *testing.T) {
	repo := &fakeAppointmentRepo{rows: []*model.Appointment{
		bookedRow(ptrI64(5), "09:00:00", "10:00:00"),
	}}
	agg := NewAggregator(repo, nil)
	require.NoError(t, agg.Refresh(context.Background(), "2025-06-02"))

	repo.err = fmt.Errorf("store down")
	err := agg.Refresh(context.Background(), "2025-06-03")

	require.Error(t, err)
	assert.Equal(t, "2025-06-02", agg.Date(), "date unchanged on failed refresh")
	assert.Equal(t, 1, agg.OccupancyFor(model.NewSlotKey(ptrI64(5), "09:00", "10:00")))
}

func TestRefreshNormalizesDate(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	agg := NewAggregator(repo, nil)

	require.NoError(t, agg.Refresh(context.Background(), "2025-06-02T10:30:00Z"))

	assert.Equal(t, "2025-06-02", agg.Date())
	assert.Equal(t, "2025-06-02", repo.lastFilters.Date)
}

func TestIncrementDecrement(t *testing.T) {
	agg := NewAggregator(&fakeAppointmentRepo{}, nil)
	key := model.NewSlotKey(ptrI64(5), "09:00", "10:00")

	agg.Increment(key)
	agg.Increment(key)
	assert.Equal(t, 2, agg.OccupancyFor(key))

	agg.Decrement(key)
	assert.Equal(t, 1, agg.OccupancyFor(key))
}

func TestDecrementFloorsAtZero(t *testing.T) {
	agg := NewAggregator(&fakeAppointmentRepo{}, nil)
	key := model.CustomWindowKey("14:00:00", "14:30:00")

	agg.Decrement(key)
	agg.Decrement(key)

	assert.Equal(t, 0, agg.OccupancyFor(key))
}

func TestOccupancyForUnknownKeyIsZero(t *testing.T) {
	agg := NewAggregator(&fakeAppointmentRepo{}, nil)

	assert.Equal(t, 0, agg.OccupancyFor(model.NewSlotKey(ptrI64(99), "09:00", "10:00")))
}

func TestCustomWindowIsExactKeyLookup(t *testing.T) {
	repo := &fakeAppointmentRepo{rows: []*model.Appointment{
		bookedRow(nil, "14:00:00", "14:30:00"),
	}}
	agg := NewAggregator(repo, nil)
	require.NoError(t, agg.Refresh(context.Background(), "2025-06-02"))

	assert.Equal(t, 1, agg.OccupancyForCustomWindow("14:00", "14:30"))
	// a booking inside the window but with different boundaries is a miss
	assert.Equal(t, 0, agg.OccupancyForCustomWindow("14:00", "14:15"))
}

func TestCustomAndSlotKeysTrackedSeparately(t *testing.T) {
	zero := int64(0)
	repo := &fakeAppointmentRepo{rows: []*model.Appointment{
		bookedRow(nil, "09:00:00", "10:00:00"),
		bookedRow(&zero, "09:00:00", "10:00:00"),
	}}
	agg := NewAggregator(repo, nil)
	require.NoError(t, agg.Refresh(context.Background(), "2025-06-02"))

	assert.Equal(t, 1, agg.OccupancyForCustomWindow("09:00", "10:00"))
	assert.Equal(t, 1, agg.OccupancyFor(model.NewSlotKey(&zero, "09:00", "10:00")))
}

func TestSnapshotIsACopy(t *testing.T) {
	agg := NewAggregator(&fakeAppointmentRepo{}, nil)
	key := model.NewSlotKey(ptrI64(5), "09:00", "10:00")
	agg.Increment(key)

	snap := agg.Snapshot()
	snap[key] = 99

	assert.Equal(t, 1, agg.OccupancyFor(key))
}
