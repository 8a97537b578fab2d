package models

import "time"

// AvailabilitySlot is a reservable one-hour calendar unit belonging to a
// consultant. Day is a calendar date (no time component), TimeOfDay the
// slot's start in "15:04" form. The reserved flag flips exactly once per
// successful booking.
type AvailabilitySlot struct {
	ID           string    `json:"id"`
	ConsultantID string    `json:"consultant_id"`
	Day          time.Time `json:"day"`
	TimeOfDay    string    `json:"time_of_day"`
	Reserved     bool      `json:"reserved"`
	CreatedAt    time.Time `json:"created_at"`
}
