package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/managementproperties/mono-repo/backend/shared/go-models"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

// UniqueTitle generates a listing title no other test run will reuse.
func UniqueTitle(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// RentalFields returns a complete, valid rental listing.
func RentalFields(title string) models.PropertyFields {
	return models.PropertyFields{
		Title:       utils.Ptr(title),
		Address:     utils.Ptr("12 Station Road, Harrow HA1 2AB"),
		Area:        utils.Ptr("Harrow"),
		Price:       utils.Ptr(1500.0),
		PriceUnit:   utils.Ptr(models.PriceUnitPCM),
		Status:      utils.Ptr(string(models.StatusRent)),
		Beds:        utils.Ptr(2),
		Baths:       utils.Ptr(1),
		Lat:         utils.Ptr(51.58),
		Lng:         utils.Ptr(-0.33),
		Images:      &[]string{"https://cdn.example.com/front.jpg"},
		Description: utils.Ptr("Two bedroom flat"),
	}
}

// CreateTestProperty creates a rental listing through the API and returns its id.
func (h *TestHelper) CreateTestProperty(title string) int64 {
	body, err := json.Marshal(map[string]any{
		"title":     title,
		"price":     1200,
		"priceUnit": models.PriceUnitPCM,
		"status":    models.StatusRent,
		"beds":      1,
		"baths":     1,
		"coord":     []float64{51.58, -0.33},
	})
	require.NoError(h.T, err)

	req := h.BuildAuthRequest(http.MethodPost, h.BaseURL+"/properties", h.AdminToken, body)
	resp := h.DoRequest(req, h.NewHTTPClient())
	defer resp.Body.Close()
	require.Equal(h.T, http.StatusCreated, resp.StatusCode, h.ReadBody(resp))

	var out struct {
		ID int64 `json:"id"`
	}
	require.NoError(h.T, json.NewDecoder(resp.Body).Decode(&out))
	require.NotZero(h.T, out.ID)
	return out.ID
}

// FindProperty returns the listing with id from list, or nil.
func FindProperty(list []models.Property, id int64) *models.Property {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}
