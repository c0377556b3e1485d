// Package response renders the JSON envelope shared by every endpoint and
// maps error kinds to HTTP statuses.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"jobboard/internal/domain"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Results    *int   `json:"results,omitempty"`
	Message    string `json:"message,omitempty"`
	ErrMessage any    `json:"errMessage,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound, domain.KindGeocodeNotFound:
		return http.StatusNotFound
	case domain.KindValidation, domain.KindDuplicate, domain.KindAlreadyApplied,
		domain.KindExpired, domain.KindMissingFile, domain.KindUnsupportedFileType,
		domain.KindFileTooLarge:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// List renders a collection together with its size.
func List[T any](c *gin.Context, items []T) {
	n := len(items)
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Results: &n, Data: items})
}

// Error renders err and aborts the chain. Internal causes are logged and
// replaced by a generic message.
func Error(c *gin.Context, err error) {
	de := domain.AsError(err)
	status := StatusFor(de.Kind)

	var body any = de.Message
	if len(de.Details) > 0 {
		body = de.Details
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("kind", string(de.Kind)).
			Str("path", c.FullPath()).
			Msg("request failed")
		if de.Kind == domain.KindInternal {
			body = "Internal Server Error"
		}
	}

	c.AbortWithStatusJSON(status, Envelope{Success: false, ErrMessage: body})
}

// Done renders a success message together with the affected resource.
func Done(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}
