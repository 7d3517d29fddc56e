package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/config"
	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/services"
	"github.com/managementproperties/mono-repo/backend/shared/go-repositories"
	"github.com/managementproperties/mono-repo/backend/shared/go-seeding"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond

	metricsNamespace = "listings"
)

// App holds the process-wide clients and the services built on them.
type App struct {
	Config *config.Config
	DB     *pgxpool.Pool

	PropertyRepo    repositories.PropertyRepository
	PropertyService *services.PropertyService
	UploadService   *services.UploadService
	GeocodeService  *services.GeocodeService
}

func NewApp(cfg *config.Config) (*App, error) {
	utils.Logger.Info("Initializing listings-service App")
	ctx := context.Background()

	a := &App{Config: cfg}

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := connectWithRetry(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := repositories.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		a.DB = pool
		a.PropertyRepo = repositories.NewPostgresPropertyRepository(pool)
	case config.StorageSheets:
		grid, err := repositories.NewSheetsGrid(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsSheetName, cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, err
		}
		utils.Logger.Infof("Using sheet %q of spreadsheet %s", cfg.SheetsSheetName, cfg.SheetsSpreadsheetID)
		a.PropertyRepo = repositories.NewSheetPropertyRepository(grid)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	observer, err := services.NewPrometheusObserver(metricsNamespace, prometheus.DefaultRegisterer)
	if err != nil {
		a.Close()
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	store := services.NewS3ObjectStore(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.AWSRegion, cfg.S3PublicBaseURL)

	geocoder, err := newGeocoder(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.PropertyService = services.NewPropertyService(a.PropertyRepo)
	a.UploadService = services.NewUploadService(store, observer)
	a.GeocodeService = services.NewGeocodeService(
		geocoder,
		services.NewPostcodesClient(&http.Client{Timeout: 10 * time.Second}, cfg.PostcodesBaseURL),
		observer,
	)
	return a, nil
}

// SeedDemoData fills an empty store with the demo listings.
func (a *App) SeedDemoData(ctx context.Context) error {
	return seeding.SeedDemoProperties(ctx, a.PropertyRepo)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("listings-service DB connection closed.")
	}
}

func newGeocoder(cfg *config.Config) (services.Geocoder, error) {
	if cfg.GeocoderProvider == config.GeocoderGoogle {
		utils.Logger.Info("Geocoding with the Google Maps Geocoding API")
		return services.NewGoogleGeocoder(cfg.GoogleMapsAPIKey, "")
	}
	utils.Logger.Infof("Geocoding with Nominatim at %s", cfg.NominatimBaseURL)
	return services.NewNominatimGeocoder(&http.Client{Timeout: 10 * time.Second}, cfg.NominatimBaseURL), nil
}

func connectWithRetry(databaseURL string) (*pgxpool.Pool, error) {
	redacted, err := utils.RedactDBURL(databaseURL)
	if err != nil {
		return nil, err
	}

	var (
		dbPool  *pgxpool.Pool
		backoff = initialBackoff
	)
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = newDBPool(ctx, databaseURL)
		cancel()
		if err == nil {
			utils.Logger.Infof("listings-service connected to %s on attempt %d", redacted, i)
			return dbPool, nil
		}

		utils.Logger.WithError(err).Warnf(
			"Failed DB connect on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)
		if i == maxRetries {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}
