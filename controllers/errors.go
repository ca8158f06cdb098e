package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dinehall/comanda/services"
	"github.com/dinehall/comanda/utils"
)

// respondServiceError maps the service error taxonomy onto HTTP codes so
// every rejection carries a specific, actionable message.
func respondServiceError(c *gin.Context, err error) {
	var (
		validation *services.ValidationError
		transition *services.InvalidTransitionError
		notFound   *services.NotFoundError
		noSession  *services.NoActiveSessionError
		conflict   *services.ConflictError
	)

	switch {
	case errors.As(err, &validation), errors.As(err, &transition):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &notFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.As(err, &noSession):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &conflict):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
