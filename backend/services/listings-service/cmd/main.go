package main

import (
	"context"
	"net/http"

	_ "time/tzdata"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/app"
	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/config"
	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/controllers"
	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/routes"
	"github.com/managementproperties/mono-repo/backend/shared/go-middleware"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

func main() {
	utils.InitLogger(config.AppName)

	// 1) Config
	cfg := config.LoadConfig()

	// 2) Core application (storage, clients, services)
	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize listings-service:", err)
	}
	defer application.Close()

	if cfg.LDFlag_SeedDbWithDemoProperties {
		if err := application.SeedDemoData(context.Background()); err != nil {
			utils.Logger.Fatal("Failed to seed demo listings:", err)
		}
	}

	httpMetrics, err := middleware.NewHTTPMetrics("listings", nil)
	if err != nil {
		utils.Logger.Fatal("Failed to register HTTP metrics:", err)
	}

	// 3) Controllers + router
	router := routes.NewRouter(routes.Handlers{
		AdminToken: cfg.AdminToken,
		Metrics:    httpMetrics,
		Health:     controllers.NewHealthController(application.PropertyService, cfg.StorageBackend),
		Properties: controllers.NewPropertiesController(application.PropertyService),
		Upload:     controllers.NewUploadController(application.UploadService),
		Geocode:    controllers.NewGeocodeController(application.GeocodeService),
		Auth:       controllers.NewAuthController(),
	})

	// 4) CORS
	c := routes.NewCORS(cfg.LDFlag_CORSAllowedOrigin)

	utils.Logger.Infof("Starting %s on :%s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, c.Handler(router)); err != nil {
		utils.Logger.Fatal("Server error:", err)
	}
}
