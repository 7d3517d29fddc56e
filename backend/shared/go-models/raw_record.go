package models

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Column names of a stored listing row. The sheet header uses them verbatim
// and the table adapter maps its columns onto the same keys.
const (
	ColID            = "id"
	ColTitle         = "title"
	ColAddress       = "address"
	ColArea          = "area"
	ColPrice         = "price"
	ColPriceUnit     = "price_unit"
	ColStatus        = "status"
	ColBeds          = "beds"
	ColBaths         = "baths"
	ColFeatured      = "featured"
	ColLat           = "lat"
	ColLng           = "lng"
	ColImagesCSV     = "images_csv"
	ColActive        = "active"
	ColCreatedAt     = "created_at"
	ColDescription   = "description"
	ColSalePriceUnit = "sale_price_unit"
	ColAvailability  = "availability"

	// ColImages holds a list value (the table's json column), read after the
	// image slots and before images_csv.
	ColImages = "images"
)

// ImageSlotColumns are read in this order.
var ImageSlotColumns = []string{
	"image_url", "image_url_2", "image_url_3", "image_url_4", "image_url_5", "image_url_6",
}

// SheetHeader is the column layout of a freshly created listings sheet.
var SheetHeader = append(append([]string{
	ColID, ColTitle, ColAddress, ColArea, ColPrice, ColPriceUnit, ColStatus,
	ColBeds, ColBaths, ColFeatured, ColLat, ColLng,
}, ImageSlotColumns...),
	ColImagesCSV, ColActive, ColCreatedAt, ColDescription, ColSalePriceUnit, ColAvailability,
)

// RawRecord is one stored row keyed by column name. Values are whatever the
// backend produced: strings from a sheet, typed values from the database.
type RawRecord map[string]any

// RowIssue describes a cell that could not be read as its expected type or
// failed validation. Issues never stop normalization.
type RowIssue struct {
	Field  string
	Value  string
	Reason string
}

func (i RowIssue) String() string {
	return fmt.Sprintf("%s=%q: %s", i.Field, i.Value, i.Reason)
}

// Row is the typed form of a RawRecord.
type Row struct {
	ID            int64      `col:"id" validate:"gte=0"`
	Title         string     `col:"title" validate:"required"`
	Address       string     `col:"address"`
	Area          string     `col:"area"`
	Price         float64    `col:"price" validate:"gte=0"`
	PriceUnit     string     `col:"price_unit" validate:"omitempty,oneof=pcm pa"`
	SalePriceUnit string     `col:"sale_price_unit" validate:"omitempty,oneof='Guide Price' 'Fixed Price' 'Offers Over' OIEO OIRO 'Starting Bid'"`
	Status        string     `col:"status" validate:"omitempty,oneof=rent sale commercial"`
	Availability  string     `col:"availability" validate:"omitempty,oneof=LET SOLD 'SALE AGREED'"`
	Beds          int        `col:"beds" validate:"gte=0"`
	Baths         int        `col:"baths" validate:"gte=0"`
	Featured      bool       `col:"featured"`
	Lat           float64    `col:"lat" validate:"gte=-90,lte=90"`
	Lng           float64    `col:"lng" validate:"gte=-180,lte=180"`
	Images        []string   `col:"images"`
	Description   string     `col:"description"`
	Active        bool       `col:"active"`
	CreatedAt     *time.Time `col:"created_at"`
}

var rowValidate = newRowValidator()

func newRowValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("col")
	})
	return v
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// DecodeRow converts raw into a Row. Unreadable cells fall back to their
// zero value and are reported as issues alongside any validation failures.
func DecodeRow(raw RawRecord) (Row, []RowIssue) {
	d := decoder{raw: raw}

	row := Row{
		ID:            d.int64Val(ColID),
		Title:         d.str(ColTitle),
		Address:       d.str(ColAddress),
		Area:          d.str(ColArea),
		Price:         d.floatVal(ColPrice),
		PriceUnit:     strings.ToLower(d.str(ColPriceUnit)),
		SalePriceUnit: d.str(ColSalePriceUnit),
		Status:        strings.ToLower(d.str(ColStatus)),
		Availability:  strings.ToUpper(d.str(ColAvailability)),
		Beds:          d.intVal(ColBeds),
		Baths:         d.intVal(ColBaths),
		Featured:      ParseBool(raw[ColFeatured]),
		Lat:           d.floatVal(ColLat),
		Lng:           d.floatVal(ColLng),
		Images:        d.images(),
		Description:   d.str(ColDescription),
		Active:        true,
		CreatedAt:     d.timeVal(ColCreatedAt),
	}
	if d.present(ColActive) {
		row.Active = ParseBool(raw[ColActive])
	}

	if err := rowValidate.Struct(row); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				d.issue(fe.Field(), fmt.Sprint(fe.Value()), "failed "+fe.Tag()+" validation")
			}
		} else {
			d.issue("", "", err.Error())
		}
	}
	return row, d.issues
}

type decoder struct {
	raw    RawRecord
	issues []RowIssue
}

func (d *decoder) issue(field, value, reason string) {
	d.issues = append(d.issues, RowIssue{Field: field, Value: value, Reason: reason})
}

func (d *decoder) present(key string) bool {
	v, ok := d.raw[key]
	return ok && strings.TrimSpace(CellString(v)) != ""
}

func (d *decoder) str(key string) string {
	return strings.TrimSpace(CellString(d.raw[key]))
}

func (d *decoder) floatVal(key string) float64 {
	if !d.present(key) {
		return 0
	}
	f, ok := parseFloat(d.raw[key])
	if !ok {
		d.issue(key, CellString(d.raw[key]), "not a number")
		return 0
	}
	return f
}

func (d *decoder) intVal(key string) int {
	return int(d.floatVal(key))
}

func (d *decoder) int64Val(key string) int64 {
	return int64(d.floatVal(key))
}

func (d *decoder) timeVal(key string) *time.Time {
	if !d.present(key) {
		return nil
	}
	t, ok := parseTime(d.raw[key])
	if !ok {
		d.issue(key, CellString(d.raw[key]), "not a timestamp")
		return nil
	}
	return &t
}

func (d *decoder) images() []string {
	var urls []string
	for _, col := range ImageSlotColumns {
		urls = append(urls, CellString(d.raw[col]))
	}
	switch list := d.raw[ColImages].(type) {
	case []string:
		urls = append(urls, list...)
	case []any:
		for _, v := range list {
			urls = append(urls, CellString(v))
		}
	}
	urls = append(urls, SplitImageList(CellString(d.raw[ColImagesCSV]))...)
	return ResolveImages(urls)
}

// SplitImageList splits a packed image cell on commas, pipes and newlines.
func SplitImageList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '|' || r == '\n' || r == '\r'
	})
}

// CellString renders a cell value as text. nil becomes "".
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}

// ParseBool accepts true, "true", "1" and "yes" (any case). Everything else is false.
func ParseBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	}
	switch strings.ToLower(strings.TrimSpace(CellString(v))) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func parseFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	default:
		s := strings.TrimSpace(CellString(v))
		s = strings.TrimPrefix(s, "£")
		s = strings.ReplaceAll(s, ",", "")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseTime(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t.UTC(), true
	}
	s := strings.TrimSpace(CellString(v))
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
