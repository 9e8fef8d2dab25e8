package httpadapter

import (
	"net/http"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicErrorMessage hides internal detail on 5xx responses; client errors
// keep the original text so callers can fix the request.
func publicErrorMessage(status int, err error) string {
	if status >= 500 {
		if status == http.StatusServiceUnavailable {
			return "service temporarily unavailable"
		}
		return "internal error"
	}
	return err.Error()
}
