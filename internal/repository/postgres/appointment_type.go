package postgres

import (
	"context"
	"fmt"

	"github.com/brils-gym/booking-api/internal/model"
)

func (r *appointmentTypeRepository) List(ctx context.Context) ([]*model.AppointmentType, error) {
	query := `SELECT id, name FROM appointment_types ORDER BY id ASC`

	var types []*model.AppointmentType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("failed to list appointment types: %w", err)
	}
	return types, nil
}
