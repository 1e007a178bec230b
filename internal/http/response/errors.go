package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/platform/apierr"
	"github.com/yungbote/appregistry-backend/internal/validation"
)

// StatusFor maps err onto an HTTP status. An *apierr.Error in the chain wins
// over the domain error code.
func StatusFor(err error) int {
	if ae, ok := apierr.As(err); ok && ae.Status != 0 {
		return ae.Status
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeAlreadyExists, domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err as an error envelope, including field rejections when err
// carries validation.Errors. Internal errors are logged by the caller and
// reported without their cause.
func Fail(c *gin.Context, err error) {
	status := StatusFor(err)
	code := string(domainagg.CodeOf(err))
	if ae, ok := apierr.As(err); ok && ae.Code != "" {
		code = ae.Code
	}
	if code == "" {
		code = string(domainagg.CodeInternal)
	}
	apiErr := APIError{Message: err.Error(), Code: code}
	if status == http.StatusInternalServerError {
		apiErr.Message = "internal error"
	}
	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		apiErr.Fields = verrs.Fields
	}
	c.JSON(status, ErrorEnvelope{Error: apiErr})
}
