package controllers

import (
	"net/http"

	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

// PreflightHandler answers OPTIONS requests that the CORS layer let through.
func PreflightHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondEmpty(w, http.StatusOK)
}

func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondErrorWithCode(
		w, http.StatusMethodNotAllowed, utils.ErrCodeMethodNotAllowed, utils.ErrMethodNotAllowed.Error(), nil,
	)
}

func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "not found", nil)
}
