package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sonusk4/consult-sub001/internal/api/handlers"
	"github.com/Sonusk4/consult-sub001/internal/auth"
	"github.com/Sonusk4/consult-sub001/internal/booking"
	"github.com/Sonusk4/consult-sub001/internal/config"
	"github.com/Sonusk4/consult-sub001/internal/ledger"
	"github.com/Sonusk4/consult-sub001/internal/middleware"
	"github.com/Sonusk4/consult-sub001/internal/models"
	"github.com/Sonusk4/consult-sub001/internal/payments"
	"github.com/Sonusk4/consult-sub001/internal/realtime"
	repo "github.com/Sonusk4/consult-sub001/internal/repository"
	"github.com/Sonusk4/consult-sub001/internal/services"
	"github.com/Sonusk4/consult-sub001/internal/slots"
)

type RouterDeps struct {
	Cfg      config.Config
	TM       *auth.TokenManager
	Users    *services.UserService
	Ledger   *ledger.Service
	Slots    *slots.Registry
	Bookings *booking.Service
	Payments *payments.Service
	Messages repo.Messages
	Hub      *realtime.Hub
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	authH := handlers.NewAuthHandler(d.TM, d.Users)
	walletH := handlers.NewWalletHandler(d.Ledger, d.Payments)
	slotsH := handlers.NewSlotsHandler(d.Slots)
	bookingsH := handlers.NewBookingsHandler(d.Bookings, d.Messages)
	paymentsH := handlers.NewPaymentsHandler(d.Payments)
	consultantsH := handlers.NewConsultantsHandler(d.Users, d.Hub.Presence())

	authMW := middleware.NewAuthMiddleware(d.TM)

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())

	// Token travels as a query param here; browsers cannot set headers
	// on websocket upgrades.
	r.Get("/ws", d.Hub.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// Gateway callback authenticates by signature, not by JWT.
		r.Post("/payments/callback", paymentsH.Callback)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Get("/wallet", walletH.Balance)
			r.Get("/wallet/transactions", walletH.Transactions)
			r.Post("/wallet/topup", walletH.TopUp)

			r.Get("/consultants", consultantsH.List)
			r.Get("/consultants/online", consultantsH.Online)
			r.Get("/consultants/{consultantID}/slots", slotsH.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleConsultant))
				r.Post("/slots", slotsH.Create)
				r.Delete("/slots/{slotID}", slotsH.Delete)
			})

			r.Post("/bookings", bookingsH.Create)
			r.Get("/bookings", bookingsH.List)
			r.Get("/bookings/{bookingID}", bookingsH.Get)
			r.Patch("/bookings/{bookingID}/status", bookingsH.UpdateStatus)
			r.Post("/bookings/{bookingID}/complete", bookingsH.Complete)
			r.Get("/bookings/{bookingID}/messages", bookingsH.MessageHistory)
		})
	})

	return r
}
