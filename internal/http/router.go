// Package http wires the REST API: routing, CORS, auth middleware and
// the JSON wire format.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splityuk/splityuk/internal/auth"
	"github.com/splityuk/splityuk/internal/middleware"
)

// New builds the full router. Bill read/claim routes use optional auth
// so both registered users and share-code guests pass through; mutation
// of bills, items and charges requires a session and is enforced in the
// service layer.
func New(
	jwtManager *auth.JWTManager,
	authV1 *AuthHandler,
	billsV1 *BillHandler,
	groupsV1 *GroupHandler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestLogger)
	router.Use(middleware.Metrics)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.ParticipantHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			authV1.Routes(r)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(jwtManager))
				authV1.MeRoutes(r)
			})
		})

		r.Route("/bills", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(jwtManager))
			billsV1.Routes(r)
		})

		// Share-code endpoints: anyone holding the code may look at the
		// bill and join it.
		r.Route("/join", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(jwtManager))
			billsV1.JoinRoutes(r)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtManager))
			groupsV1.Routes(r)
		})
	})

	return router
}
