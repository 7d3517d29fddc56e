package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/controllers"
	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/routes"
	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/services"
	"github.com/managementproperties/mono-repo/backend/shared/go-middleware"
	"github.com/managementproperties/mono-repo/backend/shared/go-models"
	"github.com/managementproperties/mono-repo/backend/shared/go-repositories"
	"github.com/managementproperties/mono-repo/backend/shared/go-testhelpers"
)

const adminToken = "correct-horse-battery-staple"

type memoryStore struct {
	objects map[string][]byte
}

func (m *memoryStore) Put(ctx context.Context, key string, body io.Reader, contentType, contentDisposition string) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[key] = b
	return "https://cdn.example.com/" + key, nil
}

type fixture struct {
	server *httptest.Server
	grid   *testhelpers.MemoryGrid
	store  *memoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"lat":"51.58","lon":"-0.33","display_name":"Harrow, London"}]`)
	}))
	t.Cleanup(nominatim.Close)

	grid := testhelpers.NewListingsGrid()
	store := &memoryStore{objects: map[string][]byte{}}

	propSvc := services.NewPropertyService(repositories.NewSheetPropertyRepository(grid))
	geoSvc := services.NewGeocodeService(
		services.NewNominatimGeocoder(nominatim.Client(), nominatim.URL),
		services.NewPostcodesClient(nominatim.Client(), nominatim.URL),
		nil,
	)
	metrics, err := middleware.NewHTTPMetrics("routes_test", prometheus.NewRegistry())
	require.NoError(t, err)

	router := routes.NewRouter(routes.Handlers{
		AdminToken: adminToken,
		Metrics:    metrics,
		Health:     controllers.NewHealthController(propSvc, "sheets"),
		Properties: controllers.NewPropertiesController(propSvc),
		Upload:     controllers.NewUploadController(services.NewUploadService(store, nil)),
		Geocode:    controllers.NewGeocodeController(geoSvc),
		Auth:       controllers.NewAuthController(),
	})

	srv := httptest.NewServer(routes.NewCORS("*").Handler(router))
	t.Cleanup(srv.Close)
	return &fixture{server: srv, grid: grid, store: store}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, f.server.URL+path, rdr)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (f *fixture) list(t *testing.T, query string) []models.Property {
	t.Helper()
	resp, raw := f.do(t, http.MethodGet, routes.Properties+query, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var out []models.Property
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestCreateThenListFlatA(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, http.MethodPost, routes.Properties, adminToken, map[string]any{
		"title":     "Flat A",
		"price":     "1,200",
		"priceUnit": "pcm",
		"status":    "rent",
		"beds":      2,
		"coord":     []float64{51.58, -0.33},
		"images":    []string{"https://drive.google.com/file/d/xyz/view"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decode[map[string]int64](t, raw)
	id := created["id"]
	require.NotZero(t, id)

	list := f.list(t, "")
	require.Len(t, list, 1)
	p := list[0]
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "Flat A", p.Title)
	assert.Equal(t, 1200.0, p.Price)
	assert.Equal(t, "pcm", p.PriceUnit)
	assert.Equal(t, 2, p.Beds)
	assert.True(t, p.Active)
	assert.Equal(t, models.Coord{51.58, -0.33}, p.Coord)
	assert.Equal(t, []string{"https://drive.google.com/uc?export=view&id=xyz"}, p.Images)
	assert.Equal(t, p.Images[0], p.Img)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestCreateValidationLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, http.MethodPost, routes.Properties, adminToken, map[string]any{"title": "X"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]string](t, raw)
	assert.Equal(t, "missing required fields: title, price, status, priceUnit", body["error"])

	resp, _ = f.do(t, http.MethodPost, routes.Properties, adminToken, "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, f.list(t, "?all=1"))
}

func TestMutatingEndpointsRequireToken(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, http.MethodPost, routes.Properties, adminToken, map[string]any{
		"title": "Keep", "price": 900, "priceUnit": "pcm", "status": "rent",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	keepID := decode[map[string]int64](t, raw)["id"]
	before := f.grid.Rows()

	endpoints := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, routes.Properties, map[string]any{"title": "X", "price": 1, "priceUnit": "pcm", "status": "rent"}},
		{http.MethodPut, routes.Properties, map[string]any{"id": keepID, "title": "Hacked"}},
		{http.MethodPatch, routes.Properties, map[string]any{"id": keepID, "active": false}},
		{http.MethodDelete, fmt.Sprintf("%s?id=%d", routes.Properties, keepID), nil},
		{http.MethodPost, routes.Upload + "?filename=x.jpg", "bytes"},
		{http.MethodPost, routes.Auth, nil},
	}
	for _, ep := range endpoints {
		for _, token := range []string{"", "wrong", adminToken + "x"} {
			t.Run(fmt.Sprintf("%s %s token=%q", ep.method, ep.path, token), func(t *testing.T) {
				resp, raw := f.do(t, ep.method, ep.path, token, ep.body)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
				assert.Equal(t, "unauthorized", decode[map[string]string](t, raw)["error"])
			})
		}
	}

	assert.Equal(t, before, f.grid.Rows())
	assert.Empty(t, f.store.objects)
}

func TestPatchActiveRoundTrip(t *testing.T) {
	f := newFixture(t)

	_, raw := f.do(t, http.MethodPost, routes.Properties, adminToken, map[string]any{
		"title": "Flat B", "price": 1500, "priceUnit": "pcm", "status": "rent",
	})
	id := decode[map[string]int64](t, raw)["id"]

	resp, raw := f.do(t, http.MethodPatch, routes.Properties, adminToken, map[string]any{"id": id, "active": false})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	patched := decode[map[string]any](t, raw)
	assert.Equal(t, float64(id), patched["id"])
	assert.Equal(t, false, patched["active"])

	assert.Empty(t, f.list(t, ""))
	all := f.list(t, "?all=1")
	require.Len(t, all, 1)
	assert.False(t, all[0].Active)
	assert.Equal(t, "Flat B", all[0].Title)

	// id may also come from the query string, and as a string in the body.
	resp, _ = f.do(t, http.MethodPatch, fmt.Sprintf("%s?id=%d", routes.Properties, id), adminToken, map[string]any{"active": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, f.list(t, ""), 1)

	resp, _ = f.do(t, http.MethodPatch, routes.Properties, adminToken, map[string]any{"id": fmt.Sprint(id), "active": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = f.do(t, http.MethodPatch, routes.Properties, adminToken, map[string]any{"active": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing id", decode[map[string]string](t, raw)["error"])

	resp, _ = f.do(t, http.MethodPatch, routes.Properties, adminToken, map[string]any{"id": id + 99, "active": true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReplaceAndDelete(t *testing.T) {
	f := newFixture(t)

	_, raw := f.do(t, http.MethodPost, routes.Properties, adminToken, map[string]any{
		"title": "Flat C", "price": 1100, "priceUnit": "pcm", "status": "rent", "area": "Harrow",
	})
	id := decode[map[string]int64](t, raw)["id"]

	resp, raw := f.do(t, http.MethodPut, routes.Properties, adminToken, map[string]any{"id": id, "price": 1150, "featured": true})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	updated := decode[map[string]any](t, raw)
	assert.Equal(t, true, updated["updated"])

	list := f.list(t, "")
	require.Len(t, list, 1)
	assert.Equal(t, 1150.0, list[0].Price)
	assert.True(t, list[0].Featured)
	assert.Equal(t, "Harrow", list[0].Area)

	resp, _ = f.do(t, http.MethodPut, routes.Properties, adminToken, map[string]any{"price": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = f.do(t, http.MethodDelete, fmt.Sprintf("%s?id=%d", routes.Properties, id), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	deleted := decode[map[string]any](t, raw)
	assert.Equal(t, true, deleted["deleted"])
	assert.Empty(t, f.list(t, "?all=1"))

	resp, _ = f.do(t, http.MethodDelete, routes.Properties, adminToken, map[string]any{"id": id})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReplaceRejectsBlankRequiredFields(t *testing.T) {
	f := newFixture(t)

	_, raw := f.do(t, http.MethodPost, routes.Properties, adminToken, map[string]any{
		"title": "Flat D", "price": 1000, "priceUnit": "pcm", "status": "rent",
	})
	id := decode[map[string]int64](t, raw)["id"]
	before := f.grid.Rows()

	for _, field := range []string{"title", "status", "priceUnit"} {
		t.Run(field, func(t *testing.T) {
			resp, raw := f.do(t, http.MethodPut, routes.Properties, adminToken, map[string]any{"id": id, field: "  "})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "must not be blank: "+field, decode[map[string]string](t, raw)["error"])
		})
	}

	assert.Equal(t, before, f.grid.Rows())
	list := f.list(t, "")
	require.Len(t, list, 1)
	assert.Equal(t, "Flat D", list[0].Title)
	assert.Equal(t, "rent", list[0].Status)
	assert.Equal(t, "pcm", list[0].PriceUnit)
}

func TestStaticSnapshotIsCacheable(t *testing.T) {
	f := newFixture(t)
	_, _ = f.do(t, http.MethodPost, routes.Properties, adminToken, map[string]any{
		"title": "Shop", "price": 30000, "priceUnit": "pa", "status": "commercial",
	})

	resp, raw := f.do(t, http.MethodGet, routes.StaticProperties, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, s-maxage=3600, stale-while-revalidate=86400", resp.Header.Get("Cache-Control"))
	assert.Len(t, decode[[]models.Property](t, raw), 1)

	f.grid.FailWith(fmt.Errorf("sheet unavailable"))
	resp, raw = f.do(t, http.MethodGet, routes.StaticProperties, "", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to fetch properties: read sheet: sheet unavailable", decode[map[string]string](t, raw)["error"])

	resp, _ = f.do(t, http.MethodGet, routes.Health, "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUploadRelay(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, http.MethodPost, routes.Upload+"?filename=front%20door.jpg", adminToken, []byte("jpeg"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	out := decode[map[string]any](t, raw)
	pathname, _ := out["pathname"].(string)
	assert.True(t, strings.HasPrefix(pathname, "properties/"), pathname)
	assert.True(t, strings.HasSuffix(pathname, "-front_door.jpg"), pathname)
	assert.Equal(t, "https://cdn.example.com/"+pathname, out["url"])
	assert.Equal(t, []byte("jpeg"), f.store.objects[pathname])

	resp, raw = f.do(t, http.MethodPost, routes.Upload+"?filename=a.jpg", adminToken, []byte{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file data received", decode[map[string]string](t, raw)["error"])
}

func TestPublicEndpoints(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, http.MethodGet, routes.Geocode+"?address=Harrow", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	geo := decode[map[string]any](t, raw)
	assert.Equal(t, 51.58, geo["lat"])
	assert.Equal(t, "osm", geo["provider"])

	resp, _ = f.do(t, http.MethodGet, routes.Geocode+"?address=ab", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = f.do(t, http.MethodPost, routes.Geocode, "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "method not allowed", decode[map[string]string](t, raw)["error"])

	resp, raw = f.do(t, http.MethodPost, routes.Auth, adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode[map[string]bool](t, raw)["ok"])

	resp, raw = f.do(t, http.MethodGet, routes.Health, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "sheets", decode[map[string]string](t, raw)["storage"])
}

func TestPreflight(t *testing.T) {
	f := newFixture(t)

	// A browser pre-flight is answered by the CORS layer.
	req, err := http.NewRequest(http.MethodOptions, f.server.URL+routes.Properties, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodDelete)

	// A bare OPTIONS probe reaches the router.
	resp, raw := f.do(t, http.MethodOptions, routes.Upload, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, raw)
}
