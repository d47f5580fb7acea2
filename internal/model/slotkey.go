package model

import (
	"fmt"

	"github.com/brils-gym/booking-api/pkg/timeutil"
)

// SlotKey identifies the capacity pool an appointment competes in: the
// weekly slot it was booked against (or none, for custom windows) plus its
// storage-normalized time bounds. Two appointments with equal keys share one
// pool. The struct is comparable and used directly as a map key; Custom
// keeps "no slot" distinct from slot id 0 at the type level.
type SlotKey struct {
	SlotID int64
	Custom bool
	Start  string
	End    string
}

// NewSlotKey builds the key from raw appointment fields. A nil slotID marks
// a custom window. Times are normalized to HH:MM:SS so keys built from
// display-precision input and store echoes always collide.
func NewSlotKey(slotID *int64, start, end string) SlotKey {
	k := SlotKey{
		Start: timeutil.ToStorageTime(start),
		End:   timeutil.ToStorageTime(end),
	}
	if slotID != nil {
		k.SlotID = *slotID
	} else {
		k.Custom = true
	}
	return k
}

// CustomWindowKey is the key for appointments with no slot reference.
func CustomWindowKey(start, end string) SlotKey {
	return NewSlotKey(nil, start, end)
}

func (k SlotKey) String() string {
	if k.Custom {
		return fmt.Sprintf("custom|%s|%s", k.Start, k.End)
	}
	return fmt.Sprintf("%d|%s|%s", k.SlotID, k.Start, k.End)
}
