package model

import "time"

// WeeklySlot is a recurring bookable window defined once per weekday and
// reused across weeks. Owned by schedule administration; read-only here.
type WeeklySlot struct {
	ID        int64        `db:"id" json:"id"`
	Weekday   time.Weekday `db:"weekday" json:"weekday"`
	StartTime string       `db:"start_time" json:"start_time"`
	EndTime   string       `db:"end_time" json:"end_time"`
	Capacity  int          `db:"capacity" json:"capacity"`
}

type OverrideAction string

const (
	OverrideActionAdd    OverrideAction = "add"
	OverrideActionRemove OverrideAction = "remove"
	OverrideActionModify OverrideAction = "modify"
)

// Override is a date-specific exception to the weekly template. SlotID
// references the slot being removed or modified; add-overrides carry their
// own times and capacity instead. Nil fields mean "unchanged".
type Override struct {
	ID        int64          `db:"id" json:"id"`
	Date      string         `db:"date" json:"date"`
	SlotID    *int64         `db:"slot_id" json:"slot_id"`
	StartTime *string        `db:"start_time" json:"start_time"`
	EndTime   *string        `db:"end_time" json:"end_time"`
	Capacity  *int           `db:"capacity" json:"capacity"`
	Action    OverrideAction `db:"action" json:"action"`
}

// EffectiveWindow is one bookable window on a concrete date, after the
// weekly template and that date's overrides have been merged.
type EffectiveWindow struct {
	SlotID    *int64 `json:"slot_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Capacity  int    `json:"capacity"`
}

// Key returns the capacity pool identity for this window.
func (w *EffectiveWindow) Key() SlotKey {
	return NewSlotKey(w.SlotID, w.StartTime, w.EndTime)
}

// WindowAvailability pairs an effective window with its live occupancy.
type WindowAvailability struct {
	EffectiveWindow
	Occupancy int `json:"occupancy"`
	Remaining int `json:"remaining"`
}
