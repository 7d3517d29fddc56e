package controllers

import (
	"net/http"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/services"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

type GeocodeController struct {
	svc *services.GeocodeService
}

func NewGeocodeController(s *services.GeocodeService) *GeocodeController {
	return &GeocodeController{svc: s}
}

// GET /geocode?address=<text>
func (c *GeocodeController) GeocodeHandler(w http.ResponseWriter, r *http.Request) {
	res, err := c.svc.Geocode(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}
