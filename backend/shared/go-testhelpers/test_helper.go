package testhelpers

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/managementproperties/mono-repo/backend/shared/go-repositories"
)

// TestHelper encapsulates what the live-server integration tests need.
type TestHelper struct {
	T          *testing.T
	Ctx        context.Context
	BaseURL    string
	AdminToken string

	// From ldflags
	AppName string

	// Only set when DATABASE_URL is present.
	DB           *pgxpool.Pool
	PropertyRepo repositories.PropertyRepository
}

// NewTestHelper loads the environment and, when DATABASE_URL is present,
// connects to the database. It's designed to be called once from TestMain.
func NewTestHelper(t *testing.T, appName string) *TestHelper {
	baseURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if baseURL == "" {
		log.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		log.Fatal("ADMIN_TOKEN env var is missing")
	}

	ctx := context.Background()
	h := &TestHelper{
		T:          t,
		Ctx:        ctx,
		BaseURL:    baseURL,
		AdminToken: adminToken,
		AppName:    appName,
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		dbPool, err := pgxpool.Connect(ctx, dbURL)
		require.NoError(t, err)
		t.Cleanup(func() { dbPool.Close() })

		require.NoError(t, repositories.EnsureSchema(ctx, dbPool))
		h.DB = dbPool
		h.PropertyRepo = repositories.NewPostgresPropertyRepository(dbPool)
	}

	return h
}
