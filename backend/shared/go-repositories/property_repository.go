package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"

	"github.com/managementproperties/mono-repo/backend/shared/go-models"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

// PropertyRepository is implemented by every storage backend. Writes use
// merge-by-field semantics: only supplied fields change.
type PropertyRepository interface {
	// List returns newest-created first; inactive rows only when includeInactive.
	List(ctx context.Context, includeInactive bool) ([]models.Property, error)
	Create(ctx context.Context, fields models.PropertyFields) (int64, error)
	Replace(ctx context.Context, id int64, fields models.PropertyFields) error
	PatchActive(ctx context.Context, id int64, active bool) error
	// Delete removes the record for good.
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

/* ------------------------------------------------------------------
   Postgres implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	db  DB
	now func() time.Time
}

func NewPostgresPropertyRepository(db DB) PropertyRepository {
	return &propertyRepo{db: db, now: time.Now}
}

func (r *propertyRepo) List(ctx context.Context, includeInactive bool) ([]models.Property, error) {
	sql := baseSelectProperty()
	if !includeInactive {
		sql += " WHERE active = true"
	}
	sql += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	out := []models.Property{}
	for rows.Next() {
		raw, err := scanPropertyRecord(rows)
		if err != nil {
			return nil, err
		}
		p, issues := models.NormalizeWithIssues(raw, r.now)
		logRowIssues(p.ID, issues)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *propertyRepo) Create(ctx context.Context, fields models.PropertyFields) (int64, error) {
	p := models.NewProperty(0, fields, time.Time{})
	images, err := json.Marshal(p.Images)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRow(ctx, `
        INSERT INTO properties (
            title, address, area, price, price_unit, sale_price_unit,
            status, availability, beds, baths, featured,
            lat, lng, images, description, active,
            created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14::json,$15,$16, NOW(), NOW())
        RETURNING id
    `,
		p.Title,
		p.Address,
		p.Area,
		p.Price,
		p.PriceUnit,
		nullIfEmpty(p.SalePriceUnit),
		p.Status,
		nullIfEmpty(p.Availability),
		p.Beds,
		p.Baths,
		p.Featured,
		p.Coord.Lat(),
		p.Coord.Lng(),
		string(images),
		p.Description,
		p.Active,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert property: %w", err)
	}
	return id, nil
}

func (r *propertyRepo) Replace(ctx context.Context, id int64, fields models.PropertyFields) error {
	set, args, err := updateAssignments(fields)
	if err != nil {
		return err
	}
	set = append(set, "updated_at=NOW()")
	args = append(args, id)

	sql := "UPDATE properties SET " + strings.Join(set, ", ") + fmt.Sprintf(" WHERE id=$%d", len(args))
	return r.execTargeted(ctx, sql, args...)
}

func (r *propertyRepo) PatchActive(ctx context.Context, id int64, active bool) error {
	return r.execTargeted(ctx, `UPDATE properties SET active=$1, updated_at=NOW() WHERE id=$2`, active, id)
}

func (r *propertyRepo) Delete(ctx context.Context, id int64) error {
	return r.execTargeted(ctx, `DELETE FROM properties WHERE id=$1`, id)
}

func (r *propertyRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *propertyRepo) execTargeted(ctx context.Context, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// updateAssignments builds the SET list for the supplied fields only.
func updateAssignments(f models.PropertyFields) ([]string, []any, error) {
	var (
		set  []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}

	if f.Title != nil {
		add("title", *f.Title)
	}
	if f.Address != nil {
		add("address", *f.Address)
	}
	if f.Area != nil {
		add("area", *f.Area)
	}
	if f.Price != nil {
		add("price", *f.Price)
	}
	if f.PriceUnit != nil {
		add("price_unit", *f.PriceUnit)
	}
	if f.SalePriceUnit != nil {
		add("sale_price_unit", nullIfEmpty(*f.SalePriceUnit))
	}
	if f.Status != nil {
		add("status", *f.Status)
	}
	if f.Availability != nil {
		add("availability", nullIfEmpty(*f.Availability))
	}
	if f.Beds != nil {
		add("beds", *f.Beds)
	}
	if f.Baths != nil {
		add("baths", *f.Baths)
	}
	if f.Featured != nil {
		add("featured", *f.Featured)
	}
	if f.Lat != nil {
		add("lat", *f.Lat)
	}
	if f.Lng != nil {
		add("lng", *f.Lng)
	}
	if f.Images != nil {
		b, err := json.Marshal(models.ResolveImages(*f.Images))
		if err != nil {
			return nil, nil, err
		}
		args = append(args, string(b))
		set = append(set, fmt.Sprintf("images=$%d::json", len(args)))
	}
	if f.Description != nil {
		add("description", *f.Description)
	}
	if f.Active != nil {
		add("active", *f.Active)
	}
	return set, args, nil
}

func baseSelectProperty() string {
	return `
        SELECT
            id, title, COALESCE(address, ''), COALESCE(area, ''),
            price::float8, COALESCE(price_unit, ''), COALESCE(sale_price_unit, ''),
            status, COALESCE(availability, ''),
            COALESCE(beds, 0), COALESCE(baths, 0), COALESCE(featured, false),
            COALESCE(lat, 0)::float8, COALESCE(lng, 0)::float8,
            COALESCE(images::text, '[]'), COALESCE(description, ''),
            COALESCE(active, true), created_at
        FROM properties
    `
}

// scanPropertyRecord reads one row into the same keyed shape a sheet row
// has so both backends share the normalizer.
func scanPropertyRecord(row pgx.Row) (models.RawRecord, error) {
	var (
		id                       int64
		title, address, area     string
		price, lat, lng          float64
		priceUnit, salePriceUnit string
		status, availability     string
		beds, baths              int
		featured, active         bool
		imagesJSON, description  string
		createdAt                *time.Time
	)
	err := row.Scan(
		&id, &title, &address, &area,
		&price, &priceUnit, &salePriceUnit,
		&status, &availability,
		&beds, &baths, &featured,
		&lat, &lng,
		&imagesJSON, &description,
		&active, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan property: %w", err)
	}

	var images []string
	if err := json.Unmarshal([]byte(imagesJSON), &images); err != nil {
		utils.Logger.WithError(err).WithField("id", id).Warn("Ignoring unreadable images column")
	}

	raw := models.RawRecord{
		models.ColID:            id,
		models.ColTitle:         title,
		models.ColAddress:       address,
		models.ColArea:          area,
		models.ColPrice:         price,
		models.ColPriceUnit:     priceUnit,
		models.ColSalePriceUnit: salePriceUnit,
		models.ColStatus:        status,
		models.ColAvailability:  availability,
		models.ColBeds:          beds,
		models.ColBaths:         baths,
		models.ColFeatured:      featured,
		models.ColLat:           lat,
		models.ColLng:           lng,
		models.ColImages:        images,
		models.ColDescription:   description,
		models.ColActive:        active,
	}
	if createdAt != nil {
		raw[models.ColCreatedAt] = *createdAt
	}
	return raw, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func logRowIssues(id int64, issues []models.RowIssue) {
	if len(issues) == 0 {
		return
	}
	msgs := make([]string, len(issues))
	for i, is := range issues {
		msgs[i] = is.String()
	}
	utils.Logger.WithFields(logrus.Fields{
		"id":     id,
		"issues": strings.Join(msgs, "; "),
	}).Warn("Stored listing row has invalid cells")
}
