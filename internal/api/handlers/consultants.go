package handlers

import (
	"net/http"

	"github.com/Sonusk4/consult-sub001/internal/api/httpx"
	"github.com/Sonusk4/consult-sub001/internal/models"
	"github.com/Sonusk4/consult-sub001/internal/realtime"
	"github.com/Sonusk4/consult-sub001/internal/services"
)

type ConsultantsHandler struct {
	Users    *services.UserService
	Presence *realtime.Presence
}

func NewConsultantsHandler(us *services.UserService, p *realtime.Presence) *ConsultantsHandler {
	return &ConsultantsHandler{Users: us, Presence: p}
}

type consultantView struct {
	models.User
	Online bool `json:"online"`
}

func (h *ConsultantsHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListConsultants(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]consultantView, 0, len(users))
	for _, u := range users {
		out = append(out, consultantView{User: u, Online: h.Presence.IsOnline(u.ID)})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Online lists only the consultants with a live websocket connection.
func (h *ConsultantsHandler) Online(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListConsultants(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]consultantView, 0)
	for _, u := range users {
		if h.Presence.IsOnline(u.ID) {
			out = append(out, consultantView{User: u, Online: true})
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
