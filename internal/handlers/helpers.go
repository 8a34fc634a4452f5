package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "ustbills/internal/errors"
	"ustbills/internal/logger"
	"ustbills/internal/middleware"
	"ustbills/internal/services"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// getIdentity extracts the authenticated caller identity from the Gin context.
// Returns ErrAnonymousCaller if none is present.
func getIdentity(c *gin.Context) (string, error) {
	identity := c.GetString(middleware.IdentityKey)
	if services.IsAnonymous(identity) {
		return "", apperrors.ErrAnonymousCaller
	}
	return identity, nil
}

// queryInt64 parses an optional integer query parameter.
func queryInt64(c *gin.Context, name string) (int64, bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, apperrors.WithMessage(apperrors.ErrValidation, "Invalid "+name)
	}
	return v, true, nil
}

// bindError converts a request binding failure into a validation error.
func bindError(err error) error {
	return apperrors.WithMessage(apperrors.ErrValidation, err.Error())
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"code", appErr.Code,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
		)
	}
	c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message}})
}
