package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/controllers"
	"github.com/managementproperties/mono-repo/backend/shared/go-middleware"
)

// Handlers groups what the router dispatches to.
type Handlers struct {
	AdminToken string
	Metrics    *middleware.HTTPMetrics

	Health     *controllers.HealthController
	Properties *controllers.PropertiesController
	Upload     *controllers.UploadController
	Geocode    *controllers.GeocodeController
	Auth       *controllers.AuthController
}

// NewRouter wires every endpoint. Reads are public; anything that changes
// state goes through the admin token check first.
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger)
	if h.Metrics != nil {
		router.Use(h.Metrics.Middleware)
	}
	router.MethodNotAllowedHandler = http.HandlerFunc(controllers.MethodNotAllowedHandler)
	router.NotFoundHandler = http.HandlerFunc(controllers.NotFoundHandler)

	// Public routes
	router.HandleFunc(Health, h.Health.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(Metrics, promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc(Properties, h.Properties.ListHandler).Methods(http.MethodGet)
	router.HandleFunc(StaticProperties, h.Properties.StaticSnapshotHandler).Methods(http.MethodGet)
	router.HandleFunc(Geocode, h.Geocode.GeocodeHandler).Methods(http.MethodGet)

	// Pre-flight probes the CORS layer did not answer
	for _, path := range []string{Properties, StaticProperties, Geocode, Upload, Auth} {
		router.HandleFunc(path, controllers.PreflightHandler).Methods(http.MethodOptions)
	}

	// Secured routes for the admin console
	adminAuth := middleware.AdminTokenMiddleware(h.AdminToken)
	secured := func(fn http.HandlerFunc) http.Handler { return adminAuth(fn) }

	router.Handle(Properties, secured(h.Properties.CreateHandler)).Methods(http.MethodPost)
	router.Handle(Properties, secured(h.Properties.ReplaceHandler)).Methods(http.MethodPut)
	router.Handle(Properties, secured(h.Properties.PatchActiveHandler)).Methods(http.MethodPatch)
	router.Handle(Properties, secured(h.Properties.DeleteHandler)).Methods(http.MethodDelete)
	router.Handle(Upload, secured(h.Upload.UploadHandler)).Methods(http.MethodPost)
	router.Handle(Auth, secured(h.Auth.CheckTokenHandler)).Methods(http.MethodPost)

	return router
}

// NewCORS answers pre-flight requests for the public site and admin console.
func NewCORS(allowedOrigin string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:       []string{allowedOrigin},
		AllowedMethods:       []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:       []string{"Content-Type", "Authorization"},
		OptionsSuccessStatus: http.StatusOK,
	})
}
