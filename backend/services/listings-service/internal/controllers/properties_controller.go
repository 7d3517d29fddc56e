package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/dtos"
	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/services"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

const (
	maxPropertyBodyBytes = 1 << 20

	staticCacheControl = "public, s-maxage=3600, stale-while-revalidate=86400"
)

type PropertiesController struct {
	svc *services.PropertyService
}

func NewPropertiesController(s *services.PropertyService) *PropertiesController {
	return &PropertiesController{svc: s}
}

// -----------------------------------------------------------------------------
// GET /properties[?all=1]
// -----------------------------------------------------------------------------
func (c *PropertiesController) ListHandler(w http.ResponseWriter, r *http.Request) {
	all := strings.TrimSpace(r.URL.Query().Get("all")) == "1"

	list, err := c.svc.List(r.Context(), all)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.PropertyListResponse(list))
}

// -----------------------------------------------------------------------------
// GET /static-properties
// -----------------------------------------------------------------------------
func (c *PropertiesController) StaticSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.svc.List(r.Context(), false)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.Header().Set("Cache-Control", staticCacheControl)
	utils.RespondWithJSON(w, http.StatusOK, dtos.PropertyListResponse(list))
}

// -----------------------------------------------------------------------------
// POST /properties
// -----------------------------------------------------------------------------
func (c *PropertiesController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePayload(w, r)
	if !ok {
		return
	}

	id, err := c.svc.Create(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.CreatePropertyResponse{ID: id})
}

// -----------------------------------------------------------------------------
// PUT /properties
// -----------------------------------------------------------------------------
func (c *PropertiesController) ReplaceHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePayload(w, r)
	if !ok {
		return
	}
	id := resolveID(r, req)

	if err := c.svc.Replace(r.Context(), id, req); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.UpdatePropertyResponse{ID: id, Updated: true})
}

// -----------------------------------------------------------------------------
// PATCH /properties
// -----------------------------------------------------------------------------
func (c *PropertiesController) PatchActiveHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePayload(w, r)
	if !ok {
		return
	}
	id := resolveID(r, req)
	// An absent flag hides the listing.
	active := utils.Val(req.Active)

	if err := c.svc.SetActive(r.Context(), id, active); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.PatchActiveResponse{ID: id, Active: active})
}

// -----------------------------------------------------------------------------
// DELETE /properties
// -----------------------------------------------------------------------------
func (c *PropertiesController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePayload(w, r)
	if !ok {
		return
	}
	id := resolveID(r, req)

	if err := c.svc.Delete(r.Context(), id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.DeletePropertyResponse{ID: id, Deleted: true})
}

// -----------------------------------------------------------------------------
// shared helpers
// -----------------------------------------------------------------------------

// decodePayload reads an optional JSON body. An empty body is an empty
// payload, so DELETE ?id=5 works without one.
func decodePayload(w http.ResponseWriter, r *http.Request) (dtos.PropertyPayload, bool) {
	var req dtos.PropertyPayload
	if r.Body == nil {
		return req, true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPropertyBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err,
		)
		return req, false
	}
	return req, true
}

// resolveID prefers the id in the body and falls back to ?id=. 0 means none.
func resolveID(r *http.Request, req dtos.PropertyPayload) int64 {
	if id := req.PropertyID(); id != 0 {
		return id
	}
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
