package dtos

// GeocodeResponse is the answer of GET /geocode. AddressComponents is the
// provider's own breakdown and is passed through untouched.
type GeocodeResponse struct {
	Lat               float64 `json:"lat"`
	Lng               float64 `json:"lng"`
	Provider          string  `json:"provider"`
	FormattedAddress  string  `json:"formatted_address"`
	AddressComponents any     `json:"address_components,omitempty"`
}
