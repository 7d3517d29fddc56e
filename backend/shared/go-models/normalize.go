package models

import (
	"strconv"
	"time"
)

// Normalize turns a stored row into the client-facing Property. It never
// fails: unreadable cells take their defaults. Rows without a stored
// created_at are stamped with now().
func Normalize(raw RawRecord, now func() time.Time) Property {
	p, _ := NormalizeWithIssues(raw, now)
	return p
}

// NormalizeWithIssues is Normalize plus the problems found while decoding,
// for callers that want to log them.
func NormalizeWithIssues(raw RawRecord, now func() time.Time) (Property, []RowIssue) {
	row, issues := DecodeRow(raw)
	return row.Property(now), issues
}

// Property builds the canonical record from a decoded row.
func (r Row) Property(now func() time.Time) Property {
	createdAt := now().UTC()
	if r.CreatedAt != nil {
		createdAt = *r.CreatedAt
	}
	images := r.Images
	if images == nil {
		images = []string{}
	}
	return Property{
		ID:            r.ID,
		Title:         r.Title,
		Address:       r.Address,
		Area:          r.Area,
		Price:         nonNegative(r.Price),
		PriceUnit:     r.PriceUnit,
		SalePriceUnit: r.SalePriceUnit,
		Status:        r.Status,
		Availability:  r.Availability,
		Beds:          int(nonNegative(float64(r.Beds))),
		Baths:         int(nonNegative(float64(r.Baths))),
		Featured:      r.Featured,
		Coord:         Coord{r.Lat, r.Lng},
		Images:        images,
		Img:           coverImage(images),
		Description:   r.Description,
		Active:        r.Active,
		CreatedAt:     createdAt,
	}
}

// ToRawRecord renders p as a full sheet row. Images fill the slot columns in
// order; images_csv is left empty.
func ToRawRecord(p Property) RawRecord {
	raw := RawRecord{
		ColID:            strconv.FormatInt(p.ID, 10),
		ColTitle:         p.Title,
		ColAddress:       p.Address,
		ColArea:          p.Area,
		ColPrice:         strconv.FormatFloat(p.Price, 'f', -1, 64),
		ColPriceUnit:     p.PriceUnit,
		ColStatus:        p.Status,
		ColBeds:          strconv.Itoa(p.Beds),
		ColBaths:         strconv.Itoa(p.Baths),
		ColFeatured:      strconv.FormatBool(p.Featured),
		ColLat:           strconv.FormatFloat(p.Coord.Lat(), 'f', -1, 64),
		ColLng:           strconv.FormatFloat(p.Coord.Lng(), 'f', -1, 64),
		ColImagesCSV:     "",
		ColActive:        strconv.FormatBool(p.Active),
		ColCreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339Nano),
		ColDescription:   p.Description,
		ColSalePriceUnit: p.SalePriceUnit,
		ColAvailability:  p.Availability,
	}
	for i, col := range ImageSlotColumns {
		raw[col] = ""
		if i < len(p.Images) {
			raw[col] = p.Images[i]
		}
	}
	return raw
}

// FieldsToRawRecord renders only the supplied fields as sheet cells. Images
// are left to the caller, which knows the slot columns of the sheet.
func FieldsToRawRecord(f PropertyFields) RawRecord {
	raw := RawRecord{}
	putString := func(col string, v *string) {
		if v != nil {
			raw[col] = *v
		}
	}
	putFloat := func(col string, v *float64) {
		if v != nil {
			raw[col] = strconv.FormatFloat(*v, 'f', -1, 64)
		}
	}
	putInt := func(col string, v *int) {
		if v != nil {
			raw[col] = strconv.Itoa(*v)
		}
	}
	putBool := func(col string, v *bool) {
		if v != nil {
			raw[col] = strconv.FormatBool(*v)
		}
	}

	putString(ColTitle, f.Title)
	putString(ColAddress, f.Address)
	putString(ColArea, f.Area)
	putFloat(ColPrice, f.Price)
	putString(ColPriceUnit, f.PriceUnit)
	putString(ColSalePriceUnit, f.SalePriceUnit)
	putString(ColStatus, f.Status)
	putString(ColAvailability, f.Availability)
	putInt(ColBeds, f.Beds)
	putInt(ColBaths, f.Baths)
	putBool(ColFeatured, f.Featured)
	putFloat(ColLat, f.Lat)
	putFloat(ColLng, f.Lng)
	putString(ColDescription, f.Description)
	putBool(ColActive, f.Active)
	return raw
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
