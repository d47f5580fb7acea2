package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is a single booking. SlotID is nil for custom windows booked
// outside the weekly template. Rows are never hard-deleted; cancellation
// flips Status.
type Appointment struct {
	ID                int64             `db:"id" json:"id"`
	UserID            uuid.UUID         `db:"user_id" json:"user_id"`
	Date              string            `db:"date" json:"date"`
	StartTime         string            `db:"start_time" json:"start_time"`
	EndTime           string            `db:"end_time" json:"end_time"`
	SlotID            *int64            `db:"slot_id" json:"slot_id"`
	AppointmentTypeID int64             `db:"appointment_type_id" json:"appointment_type_id"`
	Status            AppointmentStatus `db:"status" json:"status"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// Key returns the capacity pool this appointment counts against.
func (a *Appointment) Key() SlotKey {
	return NewSlotKey(a.SlotID, a.StartTime, a.EndTime)
}

// AppointmentType is a read-only lookup row (personal training, open gym,
// physio, ...). Owned by admin tooling.
type AppointmentType struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type CreateAppointmentRequest struct {
	Date              string `json:"date" binding:"required" validate:"required,datetime=2006-01-02"`
	StartTime         string `json:"start_time" binding:"required" validate:"required"`
	EndTime           string `json:"end_time" binding:"required" validate:"required"`
	SlotID            *int64 `json:"slot_id"`
	AppointmentTypeID int64  `json:"appointment_type_id" binding:"required" validate:"required"`
}

// BookingEcho is the subset the store returns from an insert. The aggregator
// is adjusted from these echoed values, never from the request, so the local
// key always matches what the store actually normalized.
type BookingEcho struct {
	Date      string `db:"date" json:"date"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	SlotID    *int64 `db:"slot_id" json:"slot_id"`
}

func (e *BookingEcho) Key() SlotKey {
	return NewSlotKey(e.SlotID, e.StartTime, e.EndTime)
}

// CancelEcho is the subset returned from a status update.
type CancelEcho struct {
	ID        int64             `db:"id" json:"id"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Date      string            `db:"date" json:"date"`
	StartTime string            `db:"start_time" json:"start_time"`
	EndTime   string            `db:"end_time" json:"end_time"`
	SlotID    *int64            `db:"slot_id" json:"slot_id"`
}

func (e *CancelEcho) Key() SlotKey {
	return NewSlotKey(e.SlotID, e.StartTime, e.EndTime)
}

// AppointmentFilters narrows store queries. Zero-valued fields are ignored.
type AppointmentFilters struct {
	UserID   *uuid.UUID
	Date     string
	FromDate string
	ToDate   string
	Status   AppointmentStatus
	OrderBy  bool // order by date then start_time ascending
	Limit    int
	Upcoming bool   // date > today, or date = today with end_time still ahead
	NowDate  string // reference "today" for Upcoming, YYYY-MM-DD
	NowTime  string // reference time for Upcoming, HH:MM:SS
}
