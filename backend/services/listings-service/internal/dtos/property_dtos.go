package dtos

import (
	"github.com/managementproperties/mono-repo/backend/shared/go-models"
)

// PropertyPayload is the body of POST, PUT, PATCH and DELETE /properties.
// Absent fields stay nil so a PUT only touches what the client sent.
type PropertyPayload struct {
	ID            *FlexNumber `json:"id,omitempty"`
	Title         *string     `json:"title,omitempty"`
	Address       *string     `json:"address,omitempty"`
	Area          *string     `json:"area,omitempty"`
	Price         *FlexNumber `json:"price,omitempty"`
	PriceUnit     *string     `json:"priceUnit,omitempty"`
	SalePriceUnit *string     `json:"salePriceUnit,omitempty"`
	Status        *string     `json:"status,omitempty"`
	Availability  *string     `json:"availability,omitempty"`
	Beds          *FlexNumber `json:"beds,omitempty"`
	Baths         *FlexNumber `json:"baths,omitempty"`
	Featured      *bool       `json:"featured,omitempty"`
	Coord         []float64   `json:"coord,omitempty"`
	Images        *[]string   `json:"images,omitempty"`
	Description   *string     `json:"description,omitempty"`
	Active        *bool       `json:"active,omitempty"`
}

// PropertyID returns the id carried in the body, or 0.
func (p PropertyPayload) PropertyID() int64 {
	if p.ID == nil {
		return 0
	}
	return int64(*p.ID)
}

type PropertyListResponse []models.Property

type CreatePropertyResponse struct {
	ID int64 `json:"id"`
}

type UpdatePropertyResponse struct {
	ID      int64 `json:"id"`
	Updated bool  `json:"updated"`
}

type PatchActiveResponse struct {
	ID     int64 `json:"id"`
	Active bool  `json:"active"`
}

type DeletePropertyResponse struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}
