package models

import (
	"time"
)

type PropertyStatus string

const (
	StatusRent       PropertyStatus = "rent"
	StatusSale       PropertyStatus = "sale"
	StatusCommercial PropertyStatus = "commercial"
)

// Rental price units.
const (
	PriceUnitPCM = "pcm"
	PriceUnitPA  = "pa"
)

// Sale price qualifiers.
const (
	SalePriceGuide       = "Guide Price"
	SalePriceFixed       = "Fixed Price"
	SalePriceOffersOver  = "Offers Over"
	SalePriceOIEO        = "OIEO"
	SalePriceOIRO        = "OIRO"
	SalePriceStartingBid = "Starting Bid"
)

// Availability badges shown over a listing.
const (
	AvailabilityLet        = "LET"
	AvailabilitySold       = "SOLD"
	AvailabilitySaleAgreed = "SALE AGREED"
)

// Coord is a [lat, lng] pair. It serializes as a two element JSON array.
type Coord [2]float64

func (c Coord) Lat() float64 { return c[0] }
func (c Coord) Lng() float64 { return c[1] }

type Property struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Address       string    `json:"address"`
	Area          string    `json:"area"`
	Price         float64   `json:"price"`
	PriceUnit     string    `json:"priceUnit,omitempty"`
	SalePriceUnit string    `json:"salePriceUnit,omitempty"`
	Status        string    `json:"status"`
	Availability  string    `json:"availability,omitempty"`
	Beds          int       `json:"beds"`
	Baths         int       `json:"baths"`
	Featured      bool      `json:"featured"`
	Coord         Coord     `json:"coord"`
	Images        []string  `json:"images"`
	Img           string    `json:"img"`
	Description   string    `json:"description"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PropertyFields is a partial write. A nil field was not supplied by the
// caller and must leave the stored value untouched.
type PropertyFields struct {
	Title         *string
	Address       *string
	Area          *string
	Price         *float64
	PriceUnit     *string
	SalePriceUnit *string
	Status        *string
	Availability  *string
	Beds          *int
	Baths         *int
	Featured      *bool
	Lat           *float64
	Lng           *float64
	Images        *[]string
	Description   *string
	Active        *bool
}

// ApplyTo merges every supplied field into p.
func (f PropertyFields) ApplyTo(p *Property) {
	if f.Title != nil {
		p.Title = *f.Title
	}
	if f.Address != nil {
		p.Address = *f.Address
	}
	if f.Area != nil {
		p.Area = *f.Area
	}
	if f.Price != nil {
		p.Price = *f.Price
	}
	if f.PriceUnit != nil {
		p.PriceUnit = *f.PriceUnit
	}
	if f.SalePriceUnit != nil {
		p.SalePriceUnit = *f.SalePriceUnit
	}
	if f.Status != nil {
		p.Status = *f.Status
	}
	if f.Availability != nil {
		p.Availability = *f.Availability
	}
	if f.Beds != nil {
		p.Beds = *f.Beds
	}
	if f.Baths != nil {
		p.Baths = *f.Baths
	}
	if f.Featured != nil {
		p.Featured = *f.Featured
	}
	if f.Lat != nil {
		p.Coord[0] = *f.Lat
	}
	if f.Lng != nil {
		p.Coord[1] = *f.Lng
	}
	if f.Images != nil {
		p.Images = ResolveImages(*f.Images)
		p.Img = coverImage(p.Images)
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Active != nil {
		p.Active = *f.Active
	}
}

// NewProperty builds the record for a creation request: defaults first, then
// the supplied fields.
func NewProperty(id int64, f PropertyFields, createdAt time.Time) Property {
	p := Property{
		ID:        id,
		Images:    []string{},
		Active:    true,
		CreatedAt: createdAt,
	}
	f.ApplyTo(&p)
	return p
}

// ApplyUnitPrecedence drops the price unit that does not apply to the
// listing's status. Commercial listings keep both.
func ApplyUnitPrecedence(p Property) Property {
	switch PropertyStatus(p.Status) {
	case StatusRent:
		p.SalePriceUnit = ""
	case StatusSale:
		p.PriceUnit = ""
	}
	return p
}

func coverImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}
