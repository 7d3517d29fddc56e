package testhelpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/managementproperties/mono-repo/backend/shared/go-models"
	"github.com/managementproperties/mono-repo/backend/shared/go-repositories"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

// RunPropertyRepositoryContract checks the behaviour every storage backend
// must share. newRepo is called once per subtest. Assertions look records up
// by id so the suite also runs against a database that already holds data.
func RunPropertyRepositoryContract(t *testing.T, newRepo func(t *testing.T) repositories.PropertyRepository) {
	ctx := context.Background()

	t.Run("CreateAppliesDefaults", func(t *testing.T) {
		repo := newRepo(t)
		id, err := repo.Create(ctx, models.PropertyFields{
			Title:     utils.Ptr(UniqueTitle("Defaults")),
			Price:     utils.Ptr(900.0),
			PriceUnit: utils.Ptr(models.PriceUnitPCM),
			Status:    utils.Ptr(string(models.StatusRent)),
		})
		require.NoError(t, err)

		list, err := repo.List(ctx, false)
		require.NoError(t, err)
		p := FindProperty(list, id)
		require.NotNil(t, p)
		assert.True(t, p.Active)
		assert.Equal(t, 900.0, p.Price)
		assert.Equal(t, 0, p.Beds)
		assert.False(t, p.Featured)
		assert.Equal(t, models.Coord{0, 0}, p.Coord)
		assert.Empty(t, p.Images)
		assert.False(t, p.CreatedAt.IsZero())
	})

	t.Run("ListIsNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		older, err := repo.Create(ctx, RentalFields(UniqueTitle("Older")))
		require.NoError(t, err)
		newer, err := repo.Create(ctx, RentalFields(UniqueTitle("Newer")))
		require.NoError(t, err)
		require.NotEqual(t, older, newer)

		list, err := repo.List(ctx, false)
		require.NoError(t, err)
		posOlder, posNewer := -1, -1
		for i, p := range list {
			switch p.ID {
			case older:
				posOlder = i
			case newer:
				posNewer = i
			}
		}
		require.NotEqual(t, -1, posOlder)
		require.NotEqual(t, -1, posNewer)
		assert.Less(t, posNewer, posOlder)
	})

	t.Run("SoftDeleteHidesFromDefaultList", func(t *testing.T) {
		repo := newRepo(t)
		id, err := repo.Create(ctx, RentalFields(UniqueTitle("Hidden")))
		require.NoError(t, err)

		require.NoError(t, repo.PatchActive(ctx, id, false))

		active, err := repo.List(ctx, false)
		require.NoError(t, err)
		assert.Nil(t, FindProperty(active, id))

		all, err := repo.List(ctx, true)
		require.NoError(t, err)
		p := FindProperty(all, id)
		require.NotNil(t, p)
		assert.False(t, p.Active)

		require.NoError(t, repo.PatchActive(ctx, id, true))
		active, err = repo.List(ctx, false)
		require.NoError(t, err)
		assert.NotNil(t, FindProperty(active, id))
	})

	t.Run("ReplaceMergesSuppliedFieldsOnly", func(t *testing.T) {
		repo := newRepo(t)
		fields := RentalFields(UniqueTitle("Merge"))
		id, err := repo.Create(ctx, fields)
		require.NoError(t, err)

		renamed := UniqueTitle("Renamed")
		require.NoError(t, repo.Replace(ctx, id, models.PropertyFields{
			Title: &renamed,
			Beds:  utils.Ptr(3),
		}))

		list, err := repo.List(ctx, true)
		require.NoError(t, err)
		p := FindProperty(list, id)
		require.NotNil(t, p)
		assert.Equal(t, renamed, p.Title)
		assert.Equal(t, 3, p.Beds)
		assert.Equal(t, *fields.Address, p.Address)
		assert.Equal(t, *fields.Price, p.Price)
		assert.Equal(t, *fields.Images, p.Images)
		assert.True(t, p.Active)
	})

	t.Run("ReplaceCapsAndDedupsImages", func(t *testing.T) {
		repo := newRepo(t)
		id, err := repo.Create(ctx, RentalFields(UniqueTitle("Gallery")))
		require.NoError(t, err)

		images := []string{
			"https://cdn.example.com/1.jpg", "https://cdn.example.com/2.jpg",
			"https://cdn.example.com/2.jpg", "https://cdn.example.com/3.jpg",
			"https://cdn.example.com/4.jpg", "https://cdn.example.com/5.jpg",
			"https://cdn.example.com/6.jpg", "https://cdn.example.com/7.jpg",
		}
		require.NoError(t, repo.Replace(ctx, id, models.PropertyFields{Images: &images}))

		list, err := repo.List(ctx, false)
		require.NoError(t, err)
		p := FindProperty(list, id)
		require.NotNil(t, p)
		assert.Equal(t, []string{
			"https://cdn.example.com/1.jpg", "https://cdn.example.com/2.jpg",
			"https://cdn.example.com/3.jpg", "https://cdn.example.com/4.jpg",
			"https://cdn.example.com/5.jpg", "https://cdn.example.com/6.jpg",
		}, p.Images)
		assert.Equal(t, "https://cdn.example.com/1.jpg", p.Img)
	})

	t.Run("DeleteRemovesOnlyTarget", func(t *testing.T) {
		repo := newRepo(t)
		keep, err := repo.Create(ctx, RentalFields(UniqueTitle("Keep")))
		require.NoError(t, err)
		gone, err := repo.Create(ctx, RentalFields(UniqueTitle("Gone")))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, gone))

		all, err := repo.List(ctx, true)
		require.NoError(t, err)
		assert.Nil(t, FindProperty(all, gone))
		assert.NotNil(t, FindProperty(all, keep))

		// The surviving row must still be writable after rows shifted.
		require.NoError(t, repo.PatchActive(ctx, keep, false))
	})

	t.Run("UnknownIDIsNotFound", func(t *testing.T) {
		repo := newRepo(t)
		const missing = int64(-424242)

		assert.ErrorIs(t, repo.Replace(ctx, missing, models.PropertyFields{Title: utils.Ptr("x")}), repositories.ErrPropertyNotFound)
		assert.ErrorIs(t, repo.PatchActive(ctx, missing, false), repositories.ErrPropertyNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, missing), repositories.ErrPropertyNotFound)
	})
}
