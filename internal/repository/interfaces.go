package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/brils-gym/booking-api/internal/model"
)

// All repository interfaces in one file. The engine treats the store as an
// external collaborator: every failure propagates unmodified, and the store
// is the only serialization point for capacity correctness.
type (
	// AppointmentRepository is the booking engine's view of the
	// appointments table.
	AppointmentRepository interface {
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)

		// Insert writes one booked row and echoes the persisted
		// (date, start, end, slot_id) the aggregator keys on.
		Insert(ctx context.Context, appt *model.Appointment) (*model.BookingEcho, error)

		// UpdateStatus flips a row's status. A non-nil ownerFilter is
		// appended as an authorization filter; the repository fails with
		// not-found when no row matches.
		UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus, ownerFilter *uuid.UUID) (*model.CancelEcho, error)
	}

	// ScheduleRepository reads the two schedule-definition sources.
	ScheduleRepository interface {
		ListWeeklySlots(ctx context.Context) ([]*model.WeeklySlot, error)
		ListOverridesByDate(ctx context.Context, date string) ([]*model.Override, error)
		ListOverridesRange(ctx context.Context, from, to string) ([]*model.Override, error)
	}

	// AppointmentTypeRepository is the read-only lookup of bookable
	// appointment kinds.
	AppointmentTypeRepository interface {
		List(ctx context.Context) ([]*model.AppointmentType, error)
	}
)
