// Package realtime routes chat, call-signaling and presence events to
// per-booking rooms over websockets. Admission is re-checked against
// the booking's session window on every send; the hub never trusts a
// client-supplied clock.
package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Sonusk4/consult-sub001/internal/auth"
	"github.com/Sonusk4/consult-sub001/internal/booking"
	"github.com/Sonusk4/consult-sub001/internal/metrics"
	"github.com/Sonusk4/consult-sub001/internal/models"
	repo "github.com/Sonusk4/consult-sub001/internal/repository"
)

// UnpaidMessageLimit caps chat on unpaid bookings regardless of window
// state, to bound free-tier usage.
const UnpaidMessageLimit = 5

type envelope struct {
	bookingID string
	data      []byte
}

type Hub struct {
	presence *Presence
	bookings *booking.Service
	messages repo.Messages
	tm       *auth.TokenManager
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}

	// dispatch serializes room fan-out: events committed to storage are
	// delivered to room members in commit order.
	dispatch chan envelope
	done     chan struct{}
}

func NewHub(bk *booking.Service, msgs repo.Messages, tm *auth.TokenManager) *Hub {
	return &Hub{
		presence: NewPresence(),
		bookings: bk,
		messages: msgs,
		tm:       tm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		rooms:    make(map[string]map[*Client]struct{}),
		dispatch: make(chan envelope, 256),
		done:     make(chan struct{}),
	}
}

func (h *Hub) Presence() *Presence { return h.presence }

// Run drains the dispatch queue; call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case env := <-h.dispatch:
			h.mu.RLock()
			for c := range h.rooms[env.bookingID] {
				c.deliver(env.data)
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Stop() { close(h.done) }

// BookingStatus implements booking.Broadcaster: lifecycle transitions
// land in the room in the order they were committed.
func (h *Hub) BookingStatus(b models.Booking) {
	metrics.RealtimeEvents.WithLabelValues(EvStatusUpdate).Inc()
	h.dispatch <- envelope{bookingID: b.ID, data: encode(outboundFrame{
		Type:      EvStatusUpdate,
		BookingID: b.ID,
		Payload:   b,
	})}
}

// ServeWS upgrades the connection. Identity comes from the access token
// in the query string, the same JWT the HTTP surface trusts.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tm.ParseAccess(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("ws upgrade", "err", err)
		return
	}
	c := &Client{
		hub:    h,
		conn:   conn,
		userID: claims.UserID,
		role:   claims.Role,
		send:   make(chan []byte, sendBuffer),
		rooms:  make(map[string]struct{}),
	}
	h.presence.add(c)
	metrics.ConnectedClients.Inc()

	go c.writePump()
	go c.readPump()
}

func (h *Hub) disconnect(c *Client) {
	for _, roomID := range c.joinedRooms() {
		h.leaveRoom(c, roomID)
	}
	h.presence.remove(c)
	metrics.ConnectedClients.Dec()
	close(c.send)
	_ = c.conn.Close()
}

func (h *Hub) handle(c *Client, f inboundFrame) {
	if f.BookingID == "" {
		c.deliver(encode(outboundFrame{Type: EvError, Reason: "booking_id required"}))
		return
	}
	metrics.RealtimeEvents.WithLabelValues(f.Type).Inc()
	switch f.Type {
	case EvJoin:
		h.handleJoin(c, f)
	case EvLeave:
		h.leaveRoom(c, f.BookingID)
	case EvMessage:
		h.handleMessage(c, f)
	case EvCallStart:
		h.handleCallStart(c, f)
	case EvCallEnd:
		h.handleCallEnd(c, f)
	case EvTyping:
		h.handleTyping(c, f)
	default:
		c.deliver(encode(outboundFrame{Type: EvError, Reason: "unknown event type"}))
	}
}

// handleJoin admits only the booking's own participants (or an admin
// acting as the assigned team member).
func (h *Hub) handleJoin(c *Client, f inboundFrame) {
	b, err := h.bookings.Get(context.Background(), f.BookingID)
	if err != nil {
		c.deliver(encode(outboundFrame{Type: EvError, BookingID: f.BookingID, Reason: "booking not found"}))
		return
	}
	if !b.Participant(c.userID) && c.role != models.RoleAdmin {
		c.deliver(encode(outboundFrame{Type: EvError, BookingID: f.BookingID, Reason: "forbidden"}))
		return
	}

	h.mu.Lock()
	room, ok := h.rooms[b.ID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[b.ID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()
	c.trackRoom(b.ID)

	c.deliver(encode(outboundFrame{Type: EvJoined, BookingID: b.ID}))
	h.dispatch <- envelope{bookingID: b.ID, data: encode(outboundFrame{
		Type: EvPeerJoined, BookingID: b.ID, UserID: c.userID,
	})}
}

func (h *Hub) leaveRoom(c *Client, bookingID string) {
	h.mu.Lock()
	if room, ok := h.rooms[bookingID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, bookingID)
		}
	}
	h.mu.Unlock()
	c.untrackRoom(bookingID)

	h.dispatch <- envelope{bookingID: bookingID, data: encode(outboundFrame{
		Type: EvPeerLeft, BookingID: bookingID, UserID: c.userID,
	})}
}

// handleMessage gates on the session window, persists, then fans out.
// Frames reach room members in the order their messages were committed.
func (h *Hub) handleMessage(c *Client, f inboundFrame) {
	if !c.inRoom(f.BookingID) {
		c.deliver(encode(outboundFrame{Type: EvError, BookingID: f.BookingID, Reason: "join first"}))
		return
	}
	b, err := h.bookings.Get(context.Background(), f.BookingID)
	if err != nil {
		c.deliver(encode(outboundFrame{Type: EvError, BookingID: f.BookingID, Reason: "booking not found"}))
		return
	}

	if reason, blocked := h.chatBlocked(b); blocked {
		c.deliver(encode(outboundFrame{Type: EvChatBlocked, BookingID: b.ID, Reason: reason}))
		return
	}

	m := models.Message{BookingID: b.ID, SenderID: c.userID, Content: f.Content}
	if err := h.messages.Create(context.Background(), &m); err != nil {
		slog.Error("persist message", "booking", b.ID, "err", err)
		c.deliver(encode(outboundFrame{Type: EvError, BookingID: b.ID, Reason: "storage unavailable"}))
		return
	}
	h.dispatch <- envelope{bookingID: b.ID, data: encode(outboundFrame{
		Type: EvMessage, BookingID: b.ID, UserID: c.userID, Payload: m,
	})}
}

// chatBlocked applies the temporal gate plus the unpaid cap.
func (h *Hub) chatBlocked(b models.Booking) (string, bool) {
	switch h.bookings.WindowState(b) {
	case booking.WindowBefore:
		return BlockedBefore, true
	case booking.WindowEnded:
		return BlockedEnded, true
	}
	if !b.IsPaid {
		n, err := h.messages.CountByBooking(context.Background(), b.ID)
		if err != nil {
			slog.Error("count messages", "booking", b.ID, "err", err)
			return BlockedLimitReached, true
		}
		if n >= UnpaidMessageLimit {
			return BlockedLimitReached, true
		}
	}
	return "", false
}

// handleCallStart: only the consultant side may initiate, and only
// inside the active window.
func (h *Hub) handleCallStart(c *Client, f inboundFrame) {
	if !c.inRoom(f.BookingID) {
		c.deliver(encode(outboundFrame{Type: EvError, BookingID: f.BookingID, Reason: "join first"}))
		return
	}
	b, err := h.bookings.Get(context.Background(), f.BookingID)
	if err != nil {
		c.deliver(encode(outboundFrame{Type: EvError, BookingID: f.BookingID, Reason: "booking not found"}))
		return
	}
	if c.userID != b.ConsultantID {
		c.deliver(encode(outboundFrame{Type: EvError, BookingID: b.ID, Reason: "forbidden"}))
		return
	}
	if h.bookings.WindowState(b) != booking.WindowActive {
		c.deliver(encode(outboundFrame{Type: EvError, BookingID: b.ID, Reason: "outside session window"}))
		return
	}
	h.dispatch <- envelope{bookingID: b.ID, data: encode(outboundFrame{
		Type: EvCallStarted, BookingID: b.ID, UserID: c.userID,
	})}
}

func (h *Hub) handleCallEnd(c *Client, f inboundFrame) {
	if !c.inRoom(f.BookingID) {
		return
	}
	h.dispatch <- envelope{bookingID: f.BookingID, data: encode(outboundFrame{
		Type: EvCallEnded, BookingID: f.BookingID, UserID: c.userID,
	})}
}

// Typing notifications are ungated and never persisted.
func (h *Hub) handleTyping(c *Client, f inboundFrame) {
	if !c.inRoom(f.BookingID) {
		return
	}
	h.dispatch <- envelope{bookingID: f.BookingID, data: encode(outboundFrame{
		Type: EvTyping, BookingID: f.BookingID, UserID: c.userID,
	})}
}
