package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heridalab/woundcare-backend/internal/apperr"
)

// RespondError maps domain errors onto the API's status codes and JSON
// shape. Operational failures attach the raw diagnostic (stderr or stdout)
// under "error" so the caller can see what the external tool said.
func RespondError(c *gin.Context, err error) {
	var procErr *apperr.ExternalProcessError
	if errors.As(err, &procErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "El proceso externo falló.",
			"error":   procErr.Stderr,
		})
		return
	}
	var outErr *apperr.InvalidOutputError
	if errors.As(err, &outErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "La salida del proceso externo no es válida.",
			"error":   outErr.RawOutput,
		})
		return
	}

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": rootMessage(err)})
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": rootMessage(err)})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": rootMessage(err)})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": rootMessage(err)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error inesperado.", "error": err.Error()})
	}
}

// rootMessage strips the trailing sentinel text ("...: not found") so the
// client sees only the domain message.
func rootMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		apperr.ErrNotFound, apperr.ErrConflict, apperr.ErrValidation,
		apperr.ErrUnauthorized, apperr.ErrForbidden, apperr.ErrStorage,
	} {
		suffix := ": " + sentinel.Error()
		if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
			return msg[:len(msg)-len(suffix)]
		}
	}
	return msg
}
