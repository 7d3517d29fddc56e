package controllers

import (
	"net/http"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/services"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

const maxUploadBytes = 25 << 20

type UploadController struct {
	svc *services.UploadService
}

func NewUploadController(s *services.UploadService) *UploadController {
	return &UploadController{svc: s}
}

// POST /upload?filename=<name>
// The raw request body is the file.
func (c *UploadController) UploadHandler(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	defer body.Close()

	res, err := c.svc.Upload(r.Context(), r.URL.Query().Get("filename"), body, r.Header.Get("Content-Type"))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, res)
}
