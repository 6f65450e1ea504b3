package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geotrack/geotrack-go/internal/middleware"
)

// RouterConfig carries the dependencies for NewRouter.
type RouterConfig struct {
	Auth      *AuthHandler
	Devices   *DeviceHandler
	Locations *LocationHandler
	JWTSecret string
	Limiter   *middleware.WindowLimiter
}

// NewRouter assembles the full middleware chain and route table. CORS runs
// first so OPTIONS is answered before rate limiting and authentication.
// {id} segments match digits only; anything else is a plain 404, as is any
// unknown path or method.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recover)
	r.Use(middleware.RateLimit(cfg.Limiter))

	notFound := func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/api/auth/register", cfg.Auth.HandleRegisterInfo)
	r.Post("/api/auth/register", cfg.Auth.HandleRegister)
	r.Get("/api/auth/login", cfg.Auth.HandleLoginInfo)
	r.Post("/api/auth/login", cfg.Auth.HandleLogin)
	r.Get("/api/auth/logout", cfg.Auth.HandleLogoutInfo)
	r.Post("/api/auth/logout", cfg.Auth.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))

		r.Get("/api/devices", cfg.Devices.HandleList)
		r.Post("/api/devices", cfg.Devices.HandleCreate)
		r.Put("/api/devices/{id:[0-9]+}", cfg.Devices.HandleUpdate)
		r.Delete("/api/devices/{id:[0-9]+}", cfg.Devices.HandleDelete)

		r.Post("/api/location/update", cfg.Locations.HandleUpdate)
		r.Get("/api/location/current/{id:[0-9]+}", cfg.Locations.HandleCurrent)
		r.Get("/api/location/history/{id:[0-9]+}", cfg.Locations.HandleHistory)
	})

	return r
}
