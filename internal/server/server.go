package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"

	"parts-assistant/internal/application/port/input"
	"parts-assistant/internal/application/port/output"
)

// defaultChatTimeout bounds one whole conversation turn, including the
// model client's full retry schedule (worst case 3 waits of up to 60s).
const defaultChatTimeout = 5 * time.Minute

// Server is the inbound HTTP surface: the streaming chat endpoint plus the
// administrative CRUD layer around it.
type Server struct {
	mux         *chi.Mux
	chat        input.ChatService
	users       output.UserStore
	drivers     output.DriverStore
	settings    output.SettingsStore
	logger      output.LoggerPort
	jwtSecret   []byte
	chatTimeout time.Duration
}

type Config struct {
	JWTSecret string
	Chat      input.ChatService
	Users     output.UserStore
	Drivers   output.DriverStore
	Settings  output.SettingsStore
	Logger    output.LoggerPort

	// ChatTimeout caps the total processing time of one chat request.
	// Zero means defaultChatTimeout.
	ChatTimeout time.Duration
}

func New(cfg Config) *Server {
	if cfg.ChatTimeout == 0 {
		cfg.ChatTimeout = defaultChatTimeout
	}
	s := &Server{
		chat:        cfg.Chat,
		users:       cfg.Users,
		drivers:     cfg.Drivers,
		settings:    cfg.Settings,
		logger:      cfg.Logger,
		jwtSecret:   []byte(cfg.JWTSecret),
		chatTimeout: cfg.ChatTimeout,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	httpLogger := httplog.NewLogger("parts-assistant", httplog.Options{
		JSON:    true,
		Concise: true,
	})
	r.Use(httplog.RequestLogger(httpLogger))
	r.Use(middleware.Recoverer)

	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/api/chat", s.handleChat)
		r.Get("/api/settings/system-prompt", s.handleGetSystemPrompt)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth, s.requireAdmin)
		r.Put("/api/settings/system-prompt", s.handleUpdateSystemPrompt)

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Patch("/{id}", s.handleUpdateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})

		r.Route("/api/drivers", func(r chi.Router) {
			r.Get("/", s.handleListDrivers)
			r.Post("/", s.handleCreateDriver)
			r.Patch("/{id}", s.handleUpdateDriver)
			r.Delete("/{id}", s.handleDeleteDriver)
		})
	})

	s.mux = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

const maxBodyBytes = 1 << 20

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
