package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingAccepted  BookingStatus = "ACCEPTED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// Terminal reports whether no further status transition is allowed.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingRejected, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

type Booking struct {
	ID                  string        `json:"id"`
	ClientID            string        `json:"client_id"`
	ConsultantID        string        `json:"consultant_id"`
	SlotID              string        `json:"slot_id"`
	Day                 time.Time     `json:"day"`
	TimeOfDay           string        `json:"time_of_day"`
	ConsultantFee       int64         `json:"consultant_fee"`
	CommissionFee       int64         `json:"commission_fee"`
	NetEarning          int64         `json:"net_earning"`
	IsPaid              bool          `json:"is_paid"`
	Status              BookingStatus `json:"status"`
	CallCompleted       bool          `json:"call_completed"`
	CallDurationMinutes int           `json:"call_duration_minutes,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Participant reports whether userID is one of the two parties of the
// booking. Room joins and completion calls are restricted to these.
func (b Booking) Participant(userID string) bool {
	return userID == b.ClientID || userID == b.ConsultantID
}
