package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "ustbills/internal/errors"
)

// PipelineIdentity is the caller identity recorded for pipeline requests.
const PipelineIdentity = "pipeline"

// PipelineAuthMiddleware creates a Gin middleware that validates the X-API-Key
// header against the configured pipeline API key. A missing key is
// unauthenticated; a key that does not match, or any key while no pipeline
// key is configured, is denied.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Missing API key"))
			return
		}
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrAccessDenied, "Invalid API key"))
			return
		}
		c.Set(IdentityKey, PipelineIdentity)
		c.Next()
	}
}
