package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	StoragePostgres = "postgres"
	StorageSheets   = "sheets"
)

// Geocoding providers selectable with GEOCODER_PROVIDER.
const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
)

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second

	DefaultSheetName        = "Sheet1"
	DefaultAWSRegion        = "eu-west-2"
	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	DefaultPostcodesBaseURL = "https://api.postcodes.io"
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AdminToken       string

	StorageBackend        string
	DatabaseURL           string
	SheetsSpreadsheetID   string
	SheetsSheetName       string
	GoogleCredentialsJSON string // empty: application default credentials

	S3Bucket        string
	AWSRegion       string
	S3PublicBaseURL string

	GeocoderProvider string
	GoogleMapsAPIKey string
	NominatimBaseURL string
	PostcodesBaseURL string

	LDSDKKey string

	// Feature-flag snapshots
	LDFlag_SeedDbWithDemoProperties bool
	LDFlag_CORSAllowedOrigin        string
}

// build-time overrides, set with -ldflags
var (
	AppName             = "listings-service"
	LDServerContextKey  string
	LDServerContextKind string
)

// LoadConfig builds the process configuration. Missing required settings are
// fatal.
func LoadConfig() *Config {
	if AppName == "" {
		utils.Logger.Fatal("AppName was not provided via ldflags")
	}
	utils.Logger.Info("Loading config for app: ", AppName)

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			utils.Logger.WithError(err).Warn("Failed to load .env file")
		} else {
			utils.Logger.Debug("Loaded environment from .env")
		}
	}

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	if cfg.LDSDKKey != "" {
		if err := cfg.loadFlags(os.Getenv); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to load LaunchDarkly flags")
		}
	} else {
		utils.Logger.Info("LD_SDK_KEY not set; feature flags come from the environment.")
	}

	utils.Logger.Infof("Loaded config for %s (storage=%s, geocoder=%s)", cfg.AppName, cfg.StorageBackend, cfg.GeocoderProvider)
	return cfg
}

// FromEnv reads every setting through getenv. Flag snapshots get their
// environment fallbacks here; LoadConfig may overwrite them from
// LaunchDarkly.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		OrganizationName:      OrganizationName,
		AppName:               AppName,
		AppPort:               getenv("APP_PORT"),
		AdminToken:            getenv("ADMIN_TOKEN"),
		StorageBackend:        strings.ToLower(strings.TrimSpace(getenv("STORAGE_BACKEND"))),
		DatabaseURL:           getenv("DATABASE_URL"),
		SheetsSpreadsheetID:   getenv("SHEETS_SPREADSHEET_ID"),
		SheetsSheetName:       utils.FirstNonEmpty(getenv("SHEETS_SHEET_NAME"), DefaultSheetName),
		GoogleCredentialsJSON: getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"),
		S3Bucket:              getenv("S3_BUCKET"),
		AWSRegion:             utils.FirstNonEmpty(getenv("AWS_REGION"), DefaultAWSRegion),
		S3PublicBaseURL:       strings.TrimRight(getenv("S3_PUBLIC_BASE_URL"), "/"),
		GeocoderProvider:      strings.ToLower(utils.FirstNonEmpty(getenv("GEOCODER_PROVIDER"), GeocoderNominatim)),
		GoogleMapsAPIKey:      getenv("GOOGLE_MAPS_API_KEY"),
		NominatimBaseURL:      strings.TrimRight(utils.FirstNonEmpty(getenv("NOMINATIM_BASE_URL"), DefaultNominatimBaseURL), "/"),
		PostcodesBaseURL:      strings.TrimRight(utils.FirstNonEmpty(getenv("POSTCODES_BASE_URL"), DefaultPostcodesBaseURL), "/"),
		LDSDKKey:              getenv("LD_SDK_KEY"),

		LDFlag_SeedDbWithDemoProperties: utils.ParseBoolEnv(getenv("SEED_DB_WITH_DEMO_PROPERTIES")),
		LDFlag_CORSAllowedOrigin:        utils.FirstNonEmpty(getenv("CORS_ALLOWED_ORIGIN"), utils.CORSAllowAnyOrigin),
	}

	if cfg.AppPort == "" {
		return nil, fmt.Errorf("APP_PORT env var is missing")
	}
	if cfg.AdminToken == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN env var is missing")
	}

	switch cfg.StorageBackend {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL env var is missing (STORAGE_BACKEND=%s)", StoragePostgres)
		}
	case StorageSheets:
		if cfg.SheetsSpreadsheetID == "" {
			return nil, fmt.Errorf("SHEETS_SPREADSHEET_ID env var is missing (STORAGE_BACKEND=%s)", StorageSheets)
		}
	case "":
		return nil, fmt.Errorf("STORAGE_BACKEND env var is missing")
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want %s or %s)", cfg.StorageBackend, StoragePostgres, StorageSheets)
	}

	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET env var is missing")
	}

	switch cfg.GeocoderProvider {
	case GeocoderNominatim:
	case GeocoderGoogle:
		if cfg.GoogleMapsAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY env var is missing (GEOCODER_PROVIDER=%s)", GeocoderGoogle)
		}
	default:
		return nil, fmt.Errorf("unknown GEOCODER_PROVIDER %q", cfg.GeocoderProvider)
	}

	return cfg, nil
}

// loadFlags snapshots the LaunchDarkly flags. The client only lives for the
// duration of the call.
func (c *Config) loadFlags(getenv func(string) string) error {
	ldClient, err := ld.MakeClient(c.LDSDKKey, LDConnectionTimeout)
	if err != nil {
		return fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	defer ldClient.Close()

	if !ldClient.Initialized() {
		return fmt.Errorf("LaunchDarkly client failed to initialize")
	}

	key := utils.FirstNonEmpty(LDServerContextKey, getenv("LD_SERVER_CONTEXT_KEY"), c.AppName)
	kind := utils.FirstNonEmpty(LDServerContextKind, getenv("LD_SERVER_CONTEXT_KIND"), "service")
	ctx := ldcontext.NewWithKind(ldcontext.Kind(kind), key)

	seed, err := ldClient.BoolVariation("seed_db_with_demo_properties", ctx, c.LDFlag_SeedDbWithDemoProperties)
	if err != nil {
		return fmt.Errorf("seed_db_with_demo_properties flag: %w", err)
	}
	utils.Logger.Debugf("seed_db_with_demo_properties flag: %t", seed)

	origin, err := ldClient.StringVariation("cors_allowed_origin", ctx, c.LDFlag_CORSAllowedOrigin)
	if err != nil {
		return fmt.Errorf("cors_allowed_origin flag: %w", err)
	}
	if origin == "" {
		origin = utils.CORSAllowAnyOrigin
	}
	utils.Logger.Debugf("cors_allowed_origin flag: %s", origin)

	c.LDFlag_SeedDbWithDemoProperties = seed
	c.LDFlag_CORSAllowedOrigin = origin
	return nil
}
