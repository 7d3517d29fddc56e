package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/dtos"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

const healthTimeout = 3 * time.Second

// Pinger is satisfied by the properties service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	storage     Pinger
	storageName string
}

func NewHealthController(storage Pinger, storageName string) *HealthController {
	return &HealthController{storage: storage, storageName: storageName}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := c.storage.Ping(ctx); err != nil {
		utils.Logger.WithError(err).Error("listings-service unhealthy")
		utils.RespondErrorWithCode(
			w,
			http.StatusServiceUnavailable,
			utils.ErrCodeExternalServiceFailure,
			"Service unhealthy",
			nil,
			err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK", Storage: c.storageName})
}
