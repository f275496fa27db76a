package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pitstop/garage-bookings/internal/service"
	"github.com/pitstop/garage-bookings/pkg/auth"
	"github.com/pitstop/garage-bookings/pkg/config"
	"github.com/pitstop/garage-bookings/pkg/logger"
)

type Handlers struct {
	bookingService service.BookingService
	authService    service.AuthService
	db             *sql.DB
	cfg            *config.Config
}

func New(bookingService service.BookingService, authService service.AuthService, db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{
		bookingService: bookingService,
		authService:    authService,
		db:             db,
		cfg:            cfg,
	}
}

// Routes builds the full route tree: page shells, the public customer
// API and the bearer-protected admin API.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.CustomerPage)
	r.Get("/admin_dashboard", h.AdminPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/initdb", h.InitDB)
		r.Post("/login", h.Login)
		r.Post("/book", h.Book)
		r.Get("/track", h.Track)

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireAdmin)
			r.Get("/bookings", h.ListBookings)
			r.Post("/update_status/{bookingID}", h.UpdateStatus)
		})
	})

	return r
}

// RequireAdmin guards the admin API with a bearer token carrying the
// admin role.
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.Parse(token, h.cfg.Auth.JWTSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if claims.Role != "admin" {
			writeError(w, http.StatusUnauthorized, "Admin access required")
			return
		}

		ctx := context.WithValue(r.Context(), logger.AdminIDKey, claims.Sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
