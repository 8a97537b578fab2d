package models

import "time"

type Message struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
