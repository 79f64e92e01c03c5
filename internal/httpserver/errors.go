package httpserver

import (
	"errors"
	"net/http"

	"bakery-shop/internal/domain"
	customersvc "bakery-shop/internal/service/customer"
	"github.com/gin-gonic/gin"
)

func failure(message string) gin.H {
	return gin.H{"success": false, "message": message}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentity),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, customersvc.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrVariantNotFound),
		errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrPriceUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStaleWrite),
		errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, customersvc.ErrInvalidCredentials),
		errors.Is(err, customersvc.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Internal errors are logged
// and reported without detail.
func (h *handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
		message = "internal error"
	}
	c.JSON(status, failure(message))
}
