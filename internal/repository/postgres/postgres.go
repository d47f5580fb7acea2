package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/brils-gym/booking-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

type scheduleRepository struct {
	db *sqlx.DB
}

type appointmentTypeRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewScheduleRepository(db *sqlx.DB) repository.ScheduleRepository {
	return &scheduleRepository{db: db}
}

func NewAppointmentTypeRepository(db *sqlx.DB) repository.AppointmentTypeRepository {
	return &appointmentTypeRepository{db: db}
}
