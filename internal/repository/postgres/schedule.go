package postgres

import (
	"context"
	"fmt"

	"github.com/brils-gym/booking-api/internal/model"
)

func (r *scheduleRepository) ListWeeklySlots(ctx context.Context) ([]*model.WeeklySlot, error) {
	query := `
		SELECT id, weekday, start_time, end_time, capacity
		FROM weekly_program_slots
		ORDER BY weekday ASC, start_time ASC
	`
	var slots []*model.WeeklySlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("failed to list weekly slots: %w", err)
	}
	return slots, nil
}

func (r *scheduleRepository) ListOverridesByDate(ctx context.Context, date string) ([]*model.Override, error) {
	// id ascending is the stable application order the resolver relies on:
	// later overrides win.
	query := `
		SELECT id, date, slot_id, start_time, end_time, capacity, action
		FROM overrides
		WHERE date = $1
		ORDER BY id ASC
	`
	var overrides []*model.Override
	if err := r.db.SelectContext(ctx, &overrides, query, date); err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	return overrides, nil
}

func (r *scheduleRepository) ListOverridesRange(ctx context.Context, from, to string) ([]*model.Override, error) {
	query := `
		SELECT id, date, slot_id, start_time, end_time, capacity, action
		FROM overrides
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC, id ASC
	`
	var overrides []*model.Override
	if err := r.db.SelectContext(ctx, &overrides, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to list overrides in range: %w", err)
	}
	return overrides, nil
}
