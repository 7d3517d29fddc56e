package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func baseEnv() map[string]string {
	return map[string]string{
		"APP_PORT":        "8080",
		"ADMIN_TOKEN":     "s3cret",
		"STORAGE_BACKEND": "postgres",
		"DATABASE_URL":    "postgres://u:p@localhost:5432/listings",
		"S3_BUCKET":       "listing-images",
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, StoragePostgres, cfg.StorageBackend)
	assert.Equal(t, DefaultSheetName, cfg.SheetsSheetName)
	assert.Equal(t, DefaultAWSRegion, cfg.AWSRegion)
	assert.Equal(t, GeocoderNominatim, cfg.GeocoderProvider)
	assert.Equal(t, DefaultNominatimBaseURL, cfg.NominatimBaseURL)
	assert.Equal(t, DefaultPostcodesBaseURL, cfg.PostcodesBaseURL)
	assert.Equal(t, "*", cfg.LDFlag_CORSAllowedOrigin)
	assert.False(t, cfg.LDFlag_SeedDbWithDemoProperties)
}

func TestFromEnvFlagFallbacks(t *testing.T) {
	env := baseEnv()
	env["SEED_DB_WITH_DEMO_PROPERTIES"] = "TRUE"
	env["CORS_ALLOWED_ORIGIN"] = "https://managementproperties.co.uk"
	env["NOMINATIM_BASE_URL"] = "http://localhost:9000/"

	cfg, err := FromEnv(envOf(env))
	require.NoError(t, err)
	assert.True(t, cfg.LDFlag_SeedDbWithDemoProperties)
	assert.Equal(t, "https://managementproperties.co.uk", cfg.LDFlag_CORSAllowedOrigin)
	assert.Equal(t, "http://localhost:9000", cfg.NominatimBaseURL)
}

func TestFromEnvRejectsIncompleteSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		wantErr string
	}{
		{"no port", func(m map[string]string) { delete(m, "APP_PORT") }, "APP_PORT"},
		{"no admin token", func(m map[string]string) { delete(m, "ADMIN_TOKEN") }, "ADMIN_TOKEN"},
		{"no backend", func(m map[string]string) { delete(m, "STORAGE_BACKEND") }, "STORAGE_BACKEND"},
		{"unknown backend", func(m map[string]string) { m["STORAGE_BACKEND"] = "mysql" }, "unknown STORAGE_BACKEND"},
		{"postgres without url", func(m map[string]string) { delete(m, "DATABASE_URL") }, "DATABASE_URL"},
		{"sheets without id", func(m map[string]string) { m["STORAGE_BACKEND"] = "sheets" }, "SHEETS_SPREADSHEET_ID"},
		{"no bucket", func(m map[string]string) { delete(m, "S3_BUCKET") }, "S3_BUCKET"},
		{"google without key", func(m map[string]string) { m["GEOCODER_PROVIDER"] = "google" }, "GOOGLE_MAPS_API_KEY"},
		{"unknown geocoder", func(m map[string]string) { m["GEOCODER_PROVIDER"] = "bing" }, "GEOCODER_PROVIDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			tt.mutate(env)
			_, err := FromEnv(envOf(env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromEnvSheetsBackend(t *testing.T) {
	env := baseEnv()
	delete(env, "DATABASE_URL")
	env["STORAGE_BACKEND"] = " Sheets "
	env["SHEETS_SPREADSHEET_ID"] = "1AbC"
	env["SHEETS_SHEET_NAME"] = "Listings"
	env["GOOGLE_APPLICATION_CREDENTIALS_JSON"] = `{"type":"service_account"}`

	cfg, err := FromEnv(envOf(env))
	require.NoError(t, err)
	assert.Equal(t, StorageSheets, cfg.StorageBackend)
	assert.Equal(t, "Listings", cfg.SheetsSheetName)
}

func TestFromEnvSheetsBackendWithoutKeyUsesDefaultCredentials(t *testing.T) {
	env := baseEnv()
	env["STORAGE_BACKEND"] = "sheets"
	env["SHEETS_SPREADSHEET_ID"] = "1AbC"

	cfg, err := FromEnv(envOf(env))
	require.NoError(t, err)
	assert.Equal(t, StorageSheets, cfg.StorageBackend)
	assert.Empty(t, cfg.GoogleCredentialsJSON)
}
