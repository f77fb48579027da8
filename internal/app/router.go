package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/poofware/blog-auth-service/internal/config"
	"github.com/poofware/blog-auth-service/internal/controllers"
	"github.com/poofware/blog-auth-service/internal/middleware"
	"github.com/poofware/blog-auth-service/internal/routes"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *controllers.AuthController
	Profile       *controllers.ProfileController
	Health        *controllers.HealthController
	Authenticator middleware.Authenticator
}

func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc(routes.Health, h.Health.HealthCheckHandler).Methods(http.MethodGet)

	authRouter := router.PathPrefix(routes.AuthBase).Subrouter()
	authRouter.HandleFunc(routes.SignUp, h.Auth.SignUp).Methods(http.MethodPost)
	authRouter.HandleFunc(routes.SignIn, h.Auth.SignIn).Methods(http.MethodPost)
	authRouter.HandleFunc(routes.Login, h.Auth.SignIn).Methods(http.MethodPost)
	authRouter.HandleFunc(routes.Refresh, h.Auth.Refresh).Methods(http.MethodPost)

	protected := router.PathPrefix(routes.AuthBase).Subrouter()
	protected.Use(middleware.AuthMiddleware(h.Authenticator))
	protected.HandleFunc(routes.Logout, h.Auth.Logout).Methods(http.MethodPost)
	protected.HandleFunc(routes.ChangePassword, h.Profile.ChangePassword).Methods(http.MethodPost)
	protected.HandleFunc(routes.Me, h.Profile.Me).Methods(http.MethodGet)

	return router
}

// NewCORS allows the configured origins. With cors_high_security on, a "*"
// entry is ignored and credentials are never allowed.
func NewCORS(cfg *config.Config) *cors.Cors {
	origins := make([]string, 0, len(cfg.CORSAllowedOrigins))
	for _, o := range cfg.CORSAllowedOrigins {
		if o == "" || (cfg.LDFlag_CORSHighSecurity && o == "*") {
			continue
		}
		origins = append(origins, o)
	}

	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}

	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: !cfg.LDFlag_CORSHighSecurity && !wildcard,
	}
	// An empty list means "allow all" to rs/cors.
	if len(origins) == 0 {
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(opts)
}
