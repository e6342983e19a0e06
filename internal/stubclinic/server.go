package stubclinic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"clinicdesk/internal/api"
	"clinicdesk/internal/observability/metrics"
	"clinicdesk/pkg/logging"
)

// Server serves the stub clinic API.
type Server struct {
	store     *Store
	logger    *logging.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
	metrics   *metrics.RequestMetrics
}

func NewServer(store *Store, jwtSecret string, tokenTTL time.Duration, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	return &Server{
		store:     store,
		logger:    logger.WithComponent("stubclinic"),
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// WithMetrics instruments every handled request.
func (s *Server) WithMetrics(m *metrics.RequestMetrics) *Server {
	s.metrics = m
	return s
}

type contextKey string

const accountKey contextKey = "account"

func accountFrom(r *http.Request) *Account {
	a, _ := r.Context().Value(accountKey).(*Account)
	return a
}

// Routes builds the router. Everything but auth and /metrics requires a
// bearer token.
func (s *Server) Routes(metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register-patient", s.handleRegisterPatient)
		r.Post("/auth/register-doctor", s.handleRegisterDoctor)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/patients/me", func(r chi.Router) {
				r.Get("/", s.handlePatientMe)
				r.Put("/", s.handleUpdatePatientMe)
				r.Get("/appointments/history", s.handlePatientHistory)
			})

			r.Route("/doctors", func(r chi.Router) {
				r.Get("/", s.handleDoctors)
				r.Route("/me", func(r chi.Router) {
					r.Get("/", s.handleDoctorMe)
					r.Put("/", s.handleUpdateDoctorMe)
					r.Get("/dashboard", s.handleDashboard)
					r.Get("/appointments/pending", s.doctorAppointments("pending"))
					r.Get("/appointments/today", s.doctorAppointments("today"))
					r.Get("/appointments/all", s.doctorAppointments("all"))
					r.Get("/appointments/history", s.doctorAppointments("history"))
				})
				r.Get("/{id}", s.handleDoctorByID)
				r.Get("/{id}/available-slots", s.handleAvailableSlots)
				r.Put("/appointments/{id}/accept", s.transition("accept"))
				r.Put("/appointments/{id}/reject", s.transition("reject"))
				r.Put("/appointments/{id}/complete", s.transition("complete"))
			})

			r.Post("/appointments/book", s.handleBook)

			r.Route("/chat/appointment/{id}", func(r chi.Router) {
				r.Get("/", s.handleChatMessages)
				r.Post("/", s.handleChatSend)
			})

			r.Route("/help-chat", func(r chi.Router) {
				r.Get("/", s.handleHelpThread)
				r.Post("/", s.handleHelpSend)
				r.Get("/users", s.handleHelpUsers)
				r.Get("/conversation/{email}", s.handleHelpConversation)
			})

			r.Post("/ratings/appointment/{id}", s.handleSubmitRating)
			r.Get("/ratings/doctor/{id}", s.handleDoctorRatings)

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireRole(api.RoleAdmin))
				r.Get("/users", s.handleAdminUsers)
				r.Put("/users/{type}/{id}", s.handleAdminUpdateUser)
				r.Delete("/users/{type}/{id}", s.handleAdminDeleteUser)
				r.Get("/appointments", s.handleAdminAppointments)
			})
		})
	})

	return r
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(r.Method+" "+route, ww.Status(), time.Since(start).Seconds())
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		account, err := s.parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			s.logger.Debug("rejected token", "error", err)
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), accountKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRole(role api.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a := accountFrom(r); a == nil || a.Role != role {
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decode(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// storeError maps a store refusal to a status code; messages pass through
// verbatim so the client can show them.
func storeError(w http.ResponseWriter, err error) {
	status := http.StatusConflict
	switch {
	case errors.Is(err, errNoAppointment),
		errors.Is(err, errUnknownDoctor),
		errors.Is(err, errUnknownPatient),
		errors.Is(err, errUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errNotParticipant):
		status = http.StatusForbidden
	}
	writeError(w, status, err.Error())
}
