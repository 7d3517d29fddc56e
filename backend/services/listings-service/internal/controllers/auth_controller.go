package controllers

import (
	"net/http"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/dtos"
	"github.com/managementproperties/mono-repo/backend/shared/go-middleware"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

// AuthController lets the admin console check a token. The bearer check
// itself happens in middleware before this handler runs.
type AuthController struct{}

func NewAuthController() *AuthController {
	return &AuthController{}
}

// POST /auth
func (c *AuthController) CheckTokenHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, dtos.AuthResponse{OK: middleware.IsAdmin(r.Context())})
}
