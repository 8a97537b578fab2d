package realtime

import "encoding/json"

// Client frame types.
const (
	EvJoin      = "join"
	EvLeave     = "leave"
	EvMessage   = "message"
	EvCallStart = "call_start"
	EvCallEnd   = "call_end"
	EvTyping    = "typing"
)

// Server frame types.
const (
	EvJoined       = "joined"
	EvPeerJoined   = "peer_joined"
	EvPeerLeft     = "peer_left"
	EvChatBlocked  = "chat_blocked"
	EvCallStarted  = "call_started"
	EvCallEnded    = "call_ended"
	EvStatusUpdate = "status_update"
	EvError        = "error"
)

// Chat rejection reasons, distinguished so the client can render "not
// yet open" vs "session ended" vs the free-tier cap.
const (
	BlockedBefore       = "BEFORE"
	BlockedEnded        = "ENDED"
	BlockedLimitReached = "LIMIT_REACHED"
)

type inboundFrame struct {
	Type            string `json:"type"`
	BookingID       string `json:"booking_id"`
	Content         string `json:"content,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

type outboundFrame struct {
	Type      string `json:"type"`
	BookingID string `json:"booking_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

func encode(f outboundFrame) []byte {
	b, _ := json.Marshal(f)
	return b
}
