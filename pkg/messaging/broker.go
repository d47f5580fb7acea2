package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channels the booking engine publishes on.
const (
	ChannelAppointmentBooked    = "appointments.booked"
	ChannelAppointmentCancelled = "appointments.cancelled"
)

// AppointmentEvent is the payload published on booking and cancellation.
// Consumers (reminder workers, dashboards) key on the echoed slot identity.
type AppointmentEvent struct {
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	SlotID    *int64 `json:"slot_id"`
}
