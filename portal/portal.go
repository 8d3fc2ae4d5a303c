// Package portal is the local single-user shell over the client SDK: a
// localhost web app with a login page, role-gated dashboard subtrees, and a
// metrics endpoint. It is the subscriber that translates the transport's
// session-invalidated signal into navigation.
package portal

import (
	"net/http"

	"github.com/agrilink/agrilink-go/catalog"
	"github.com/agrilink/agrilink-go/guard"
	"github.com/agrilink/agrilink-go/internal/config"
	"github.com/agrilink/agrilink-go/session"
	"github.com/agrilink/agrilink-go/transport"
	"github.com/agrilink/agrilink-go/users"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Server struct {
	env      string
	config   config.Config
	sessions *session.Manager
	catalog  *catalog.Service
	router   chi.Router
	logger   zerolog.Logger
}

func New(cfg config.Config, sessions *session.Manager, catalogSvc *catalog.Service, signal *transport.InvalidationSignal, logger zerolog.Logger) (*Server, error) {
	if sessions == nil {
		return nil, errors.New("[portal New] session manager is required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		config:   cfg,
		sessions: sessions,
		catalog:  catalogSvc,
		logger:   logger,
	}

	if signal != nil {
		signal.Subscribe(func() {
			// Navigation happens on the next request: the guard sees the
			// cleared session and redirects to the login entry point.
			s.logger.Info().Msg("session invalidated, next navigation goes to login")
		})
	}

	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.loggingMiddleware)

	r.Get("/", s.landingHandler)
	r.Get(users.LoginPath, s.loginPageHandler)
	r.Post(users.LoginPath, s.loginHandler)
	r.Get("/register", s.registerPageHandler)
	r.Post("/register", s.registerHandler)
	r.Post("/logout", s.logoutHandler)
	r.Get("/healthz", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route(users.FarmerHome, func(r chi.Router) {
		r.Use(guard.Middleware(s.sessions, users.RoleFarmer))
		r.Get("/", s.dashboardHandler("Farmer dashboard"))
	})
	r.Route(users.SupplierHome, func(r chi.Router) {
		r.Use(guard.Middleware(s.sessions, users.RoleSupplier))
		r.Get("/", s.dashboardHandler("Supplier dashboard"))
	})
	r.Route(users.ConsumerHome, func(r chi.Router) {
		r.Use(guard.Middleware(s.sessions, users.RoleConsumer))
		r.Get("/", s.dashboardHandler("Consumer dashboard"))
	})
	r.Route("/products", func(r chi.Router) {
		r.Use(guard.Middleware(s.sessions, ""))
		r.Get("/", s.productsHandler)
	})

	s.router = r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.env == "DEV" {
			s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("portal request")
		}
		next.ServeHTTP(w, r)
	})
}
