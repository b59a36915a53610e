package controllers

import (
	"errors"
	"log"
	"net/http"

	"hotel-addons/apperrors"
	"hotel-addons/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy onto HTTP status + error.code.
func respondError(c *gin.Context, err error, extra gin.H) {
	var (
		validation *apperrors.ValidationError
		locked     *apperrors.LockedError
		notFound   *apperrors.NotFoundError
		state      *apperrors.StateError
	)

	switch {
	case errors.As(err, &validation):
		if extra == nil {
			extra = gin.H{}
		}
		extra["field"] = validation.Field
		utils.JSONError(c, http.StatusBadRequest, "error.validation", err.Error(), extra)
	case errors.As(err, &locked):
		utils.JSONError(c, http.StatusLocked, "error.addonLocked", err.Error(), extra)
	case errors.As(err, &notFound):
		utils.JSONError(c, http.StatusNotFound, "error.notFound", err.Error(), extra)
	case errors.As(err, &state):
		utils.JSONError(c, http.StatusConflict, "error.invalidState", err.Error(), extra)
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal server error", extra)
	}
}

func badRequest(c *gin.Context, code, message string) {
	utils.JSONError(c, http.StatusBadRequest, code, message, nil)
}

func invalidID(c *gin.Context) {
	badRequest(c, "error.invalidId", "id must be a positive number")
}
