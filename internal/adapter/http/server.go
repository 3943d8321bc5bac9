package adapthttp

import (
	"net/http"

	"go.uber.org/zap"

	"weightbot/internal/app"
)

// Server is the driving HTTP adapter that serves the admin API on top of the
// application services.
type Server struct {
	reports    *app.ReportService
	charts     *app.ChartsService
	authSvc    *app.AuthService
	oidcConfig OIDCConfig
	log        *zap.Logger
}

// New creates a Server wired to the given application services. SSO stays
// disabled until WithOIDC is called.
func New(rs *app.ReportService, cs *app.ChartsService, auth *app.AuthService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{reports: rs, charts: cs, authSvc: auth, log: log}
}

// WithOIDC enables single sign-on with the given provider configuration.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/config", s.handleConfig)
	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	admin := http.NewServeMux()
	admin.HandleFunc("GET /me", s.handleMe)
	admin.HandleFunc("GET /summary", s.handleSummary)
	admin.HandleFunc("GET /users", s.handleUsers)
	admin.HandleFunc("GET /users/{id}", s.handleUser)
	admin.HandleFunc("GET /users/{id}/daily", s.handleUserDaily)
	api.Handle("/admin/", http.StripPrefix("/admin", s.authMiddleware(admin)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return s.loggingMiddleware(withNoCache(root))
}
