package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/managementproperties/mono-repo/backend/shared/go-models"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

var propertyColumns = []string{
	"id", "title", "address", "area", "price", "price_unit", "sale_price_unit",
	"status", "availability", "beds", "baths", "featured", "lat", "lng",
	"images", "description", "active", "created_at",
}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *propertyRepo) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &propertyRepo{db: mock, now: time.Now}
}

func TestPostgresListActiveOnly(t *testing.T) {
	mock, repo := newMockRepo(t)
	created := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM properties\s+WHERE active = true ORDER BY created_at DESC`).
		WillReturnRows(pgxmock.NewRows(propertyColumns).AddRow(
			int64(3), "Flat A", "1 High St", "Harrow", 1200.0, "pcm", "", "rent", "LET",
			2, 1, true, 51.5, -0.3,
			`["https://drive.google.com/file/d/abc/view","https://cdn.example.com/2.jpg"]`,
			"Bright flat", true, &created,
		))

	list, err := repo.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, list, 1)

	p := list[0]
	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, "Flat A", p.Title)
	assert.Equal(t, 1200.0, p.Price)
	assert.Equal(t, "LET", p.Availability)
	assert.Equal(t, models.Coord{51.5, -0.3}, p.Coord)
	assert.Equal(t, []string{
		"https://drive.google.com/uc?export=view&id=abc",
		"https://cdn.example.com/2.jpg",
	}, p.Images)
	assert.Equal(t, p.Images[0], p.Img)
	assert.Equal(t, created, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListAllSkipsActiveFilter(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`FROM properties\s+ORDER BY created_at DESC`).
		WillReturnRows(pgxmock.NewRows(propertyColumns))

	list, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListQueryError(t *testing.T) {
	mock, repo := newMockRepo(t)
	mock.ExpectQuery(`FROM properties`).WillReturnError(errors.New("connection refused"))

	_, err := repo.List(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPostgresCreateReturnsID(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO properties`).
		WithArgs(
			"Flat A", "", "", 1200.0, "pcm", pgxmock.AnyArg(),
			"rent", pgxmock.AnyArg(), 0, 0, false,
			0.0, 0.0, `["https://cdn.example.com/1.jpg"]`, "", true,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := repo.Create(context.Background(), models.PropertyFields{
		Title:     utils.Ptr("Flat A"),
		Price:     utils.Ptr(1200.0),
		PriceUnit: utils.Ptr("pcm"),
		Status:    utils.Ptr("rent"),
		Images:    &[]string{"https://cdn.example.com/1.jpg", " https://cdn.example.com/1.jpg "},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReplaceOnlySetsSuppliedFields(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE properties SET title=$1, beds=$2, updated_at=NOW() WHERE id=$3`)).
		WithArgs("Renamed", 3, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Replace(context.Background(), 7, models.PropertyFields{
		Title: utils.Ptr("Renamed"),
		Beds:  utils.Ptr(3),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReplaceUnknownID(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(`UPDATE properties SET`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Replace(context.Background(), 99, models.PropertyFields{Title: utils.Ptr("x")})
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestPostgresPatchActiveAndDelete(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE properties SET active=$1, updated_at=NOW() WHERE id=$2`)).
		WithArgs(false, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM properties WHERE id=$1`)).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM properties WHERE id=$1`)).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	ctx := context.Background()
	require.NoError(t, repo.PatchActive(ctx, 5, false))
	require.NoError(t, repo.Delete(ctx, 5))
	assert.ErrorIs(t, repo.Delete(ctx, 5), ErrPropertyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaRunsEveryStep(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for _, stmt := range schemaStatements {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(pgxmock.NewResult("ALTER", 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaStopsOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS properties`).WillReturnError(errors.New("permission denied"))

	err = EnsureSchema(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema step 1")
}
