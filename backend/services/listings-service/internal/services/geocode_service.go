package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/dtos"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

const (
	ProviderOSM       = "osm"
	ProviderGoogle    = "google"
	ProviderPostcodes = "postcodes.io"

	geocodeTimeout = 10 * time.Second
)

// Geocoder resolves a free-text address. A nil result with a nil error
// means the provider found nothing.
type Geocoder interface {
	Name() string
	Lookup(ctx context.Context, address string) (*dtos.GeocodeResponse, error)
}

/* ------------------------------------------------------------------
   Nominatim
------------------------------------------------------------------ */

type NominatimGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

func NewNominatimGeocoder(client *http.Client, baseURL string) *NominatimGeocoder {
	if client == nil {
		client = &http.Client{Timeout: geocodeTimeout}
	}
	return &NominatimGeocoder{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: utils.GeocodeUserAgent,
	}
}

func (g *NominatimGeocoder) Name() string { return ProviderOSM }

type nominatimPlace struct {
	Lat         string         `json:"lat"`
	Lon         string         `json:"lon"`
	DisplayName string         `json:"display_name"`
	Address     map[string]any `json:"address"`
}

func (g *NominatimGeocoder) Lookup(ctx context.Context, address string) (*dtos.GeocodeResponse, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", address)
	q.Set("limit", "1")
	q.Set("addressdetails", "1")
	if utils.LooksLikeUKFullPostcode(address) {
		q.Set("countrycodes", "gb")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Geocoding service error: %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	p := places[0]
	lat, latErr := strconv.ParseFloat(p.Lat, 64)
	lng, lngErr := strconv.ParseFloat(p.Lon, 64)
	if latErr != nil || lngErr != nil {
		return nil, nil
	}

	out := &dtos.GeocodeResponse{
		Lat:              lat,
		Lng:              lng,
		Provider:         ProviderOSM,
		FormattedAddress: p.DisplayName,
	}
	if p.Address != nil {
		out.AddressComponents = p.Address
	}
	return out, nil
}

/* ------------------------------------------------------------------
   Google Maps
------------------------------------------------------------------ */

type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder builds a geocoder on the Geocoding API. baseURL is only
// set by tests.
func NewGoogleGeocoder(apiKey, baseURL string) (*GoogleGeocoder, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}
	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create google maps client: %w", err)
	}
	return &GoogleGeocoder{client: c}, nil
}

func (g *GoogleGeocoder) Name() string { return ProviderGoogle }

func (g *GoogleGeocoder) Lookup(ctx context.Context, address string) (*dtos.GeocodeResponse, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  "uk",
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return nil, nil
		}
		return nil, fmt.Errorf("Geocoding service error: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := results[0]
	out := &dtos.GeocodeResponse{
		Lat:              r.Geometry.Location.Lat,
		Lng:              r.Geometry.Location.Lng,
		Provider:         ProviderGoogle,
		FormattedAddress: r.FormattedAddress,
	}
	if len(r.AddressComponents) > 0 {
		out.AddressComponents = r.AddressComponents
	}
	return out, nil
}

/* ------------------------------------------------------------------
   postcodes.io outcode centroids
------------------------------------------------------------------ */

type PostcodesClient struct {
	client  *http.Client
	baseURL string
}

func NewPostcodesClient(client *http.Client, baseURL string) *PostcodesClient {
	if client == nil {
		client = &http.Client{Timeout: geocodeTimeout}
	}
	return &PostcodesClient{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type outcodeResponse struct {
	Result *struct {
		Outcode   string   `json:"outcode"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"result"`
}

// LookupOutcode returns the centroid of a UK outcode such as "HA3". Unknown
// outcodes return nil without error.
func (c *PostcodesClient) LookupOutcode(ctx context.Context, outcode string) (*dtos.GeocodeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/outcodes/"+url.PathEscape(outcode), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Postcodes.io error: %d %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}

	var body outcodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode postcodes.io response: %w", err)
	}
	if body.Result == nil || body.Result.Latitude == nil || body.Result.Longitude == nil {
		return nil, nil
	}
	return &dtos.GeocodeResponse{
		Lat:              *body.Result.Latitude,
		Lng:              *body.Result.Longitude,
		Provider:         ProviderPostcodes,
		FormattedAddress: "Outcode " + body.Result.Outcode,
	}, nil
}

/* ------------------------------------------------------------------
   Service
------------------------------------------------------------------ */

type GeocodeService struct {
	primary   Geocoder
	postcodes *PostcodesClient
	observer  Observer
}

func NewGeocodeService(primary Geocoder, postcodes *PostcodesClient, observer Observer) *GeocodeService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &GeocodeService{primary: primary, postcodes: postcodes, observer: observer}
}

// Geocode asks the primary provider first. When it finds nothing and the
// address contains a UK outcode, the outcode centroid is used instead.
func (s *GeocodeService) Geocode(ctx context.Context, address string) (*dtos.GeocodeResponse, error) {
	address = strings.TrimSpace(address)
	if len(address) < 3 {
		return nil, utils.NewClientError(utils.ErrCodeAddressTooShort, utils.ErrAddressTooShort.Error(), utils.ErrAddressTooShort)
	}

	start := time.Now()
	res, err := s.primary.Lookup(ctx, address)
	s.observer.RecordGeocode(s.primary.Name(), time.Since(start), err)
	if err != nil {
		return nil, utils.NewUpstreamError("Geocoding failed", err)
	}
	if res != nil {
		return res, nil
	}

	if outcode := utils.ExtractUKOutcode(address); outcode != "" && s.postcodes != nil {
		start = time.Now()
		res, err = s.postcodes.LookupOutcode(ctx, outcode)
		s.observer.RecordGeocode(ProviderPostcodes, time.Since(start), err)
		if err != nil {
			return nil, utils.NewUpstreamError("Geocoding failed", err)
		}
		if res != nil {
			utils.Logger.WithField("outcode", outcode).Debug("Geocoded from outcode centroid")
			return res, nil
		}
	}

	return nil, utils.NewNotFoundError(utils.ErrNoCoordinates.Error(), utils.ErrNoCoordinates)
}
