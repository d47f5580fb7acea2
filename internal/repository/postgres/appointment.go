package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/brils-gym/booking-api/internal/model"
	apperrors "github.com/brils-gym/booking-api/pkg/errors"
)

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, user_id, date, start_time, end_time, slot_id,
		       appointment_type_id, status, created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argCount)
		args = append(args, *filters.UserID)
		argCount++
	}

	if filters.Date != "" {
		query += fmt.Sprintf(" AND date = $%d", argCount)
		args = append(args, filters.Date)
		argCount++
	}

	if filters.FromDate != "" {
		query += fmt.Sprintf(" AND date >= $%d", argCount)
		args = append(args, filters.FromDate)
		argCount++
	}

	if filters.ToDate != "" {
		query += fmt.Sprintf(" AND date <= $%d", argCount)
		args = append(args, filters.ToDate)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if filters.Upcoming {
		// date strictly ahead, or still running today
		query += fmt.Sprintf(" AND (date > $%d OR (date = $%d AND end_time > $%d))", argCount, argCount, argCount+1)
		args = append(args, filters.NowDate, filters.NowTime)
		argCount += 2
	}

	if filters.OrderBy {
		query += " ORDER BY date ASC, start_time ASC"
	}

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filters.Limit)
	}

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Insert(ctx context.Context, appt *model.Appointment) (*model.BookingEcho, error) {
	query := `
		INSERT INTO appointments (
			user_id, date, start_time, end_time, slot_id,
			appointment_type_id, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING date, start_time, end_time, slot_id
	`
	now := time.Now()

	var echo model.BookingEcho
	err := r.db.GetContext(ctx, &echo, query,
		appt.UserID,
		appt.Date,
		appt.StartTime,
		appt.EndTime,
		appt.SlotID,
		appt.AppointmentTypeID,
		model.AppointmentStatusBooked,
		now,
		now,
	)
	if err != nil {
		// Capacity enforcement that matters lives in the store; surface
		// its constraint violations as conflicts.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Class() == "23" {
			return nil, apperrors.Conflict("booking rejected by store constraint", err)
		}
		return nil, fmt.Errorf("failed to insert appointment: %w", err)
	}
	return &echo, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus, ownerFilter *uuid.UUID) (*model.CancelEcho, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	args := []interface{}{status, time.Now(), id}

	if ownerFilter != nil {
		query += " AND user_id = $4"
		args = append(args, *ownerFilter)
	}

	query += " RETURNING id, status, date, start_time, end_time, slot_id"

	var echo model.CancelEcho
	err := r.db.GetContext(ctx, &echo, query, args...)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return &echo, nil
}
