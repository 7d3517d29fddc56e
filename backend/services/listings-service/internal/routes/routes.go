package routes

const (
	// Health
	Health  = "/health"
	Metrics = "/metrics"

	// Listings
	Properties       = "/properties"
	StaticProperties = "/static-properties"

	// Admin tools
	Auth   = "/auth"
	Upload = "/upload"

	Geocode = "/geocode"
)
