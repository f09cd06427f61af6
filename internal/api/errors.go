package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/variant-reports-service/internal/domain"
	"github.com/variant-reports-service/internal/logging"
)

// errorBody is the JSON shape of every non-field error
type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps a domain error to its HTTP status and body
func statusFor(err error) (int, any) {
	var (
		validationErrs *domain.ValidationErrors
		constraintErr  *domain.ConstraintError
		notFound       *domain.NotFoundError
		upstream       *domain.UpstreamError
	)

	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, validationErrs.Fields
	case errors.As(err, &constraintErr):
		return http.StatusBadRequest, constraintErr.FieldErrors()
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.Is(err, domain.ErrPatientNotFound):
		return http.StatusNotFound, errorBody{Error: "Patient not found"}
	case errors.As(err, &notFound):
		return http.StatusNotFound, errorBody{Error: notFound.Error()}
	case errors.As(err, &upstream):
		return http.StatusBadGateway, errorBody{Error: upstream.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal server error"}
	}
}

// respondError writes err as JSON. Unclassified errors are logged and hidden.
func (s *Server) respondError(c *gin.Context, err error) {
	status, body := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context(), s.logger).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"error":  err,
		}).Error("Unhandled error")
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

// respondNotFound writes the not-found body for entity
func respondNotFound(c *gin.Context, entity string) {
	c.JSON(http.StatusNotFound, errorBody{Error: domain.NewNotFoundError(entity).Error()})
}
