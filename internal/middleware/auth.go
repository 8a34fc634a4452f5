package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "ustbills/internal/errors"
	"ustbills/internal/services"
)

// IdentityKey is the Gin context key holding the caller identity.
const IdentityKey = "identity"

const tokenIssuer = "ustbills-api"

// GenerateToken issues an HS256 bearer token whose subject is identity.
// The identity provider is external; this exists for ops tooling and tests.
func GenerateToken(secret, identity string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   identity,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// IdentityAuth verifies the bearer token and stores its subject as the caller
// identity. Requests without a token, or with the anonymous identity, are
// rejected before reaching any handler.
func IdentityAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.ErrAnonymousCaller)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		if services.IsAnonymous(claims.Subject) {
			abortWithError(c, apperrors.ErrAnonymousCaller)
			return
		}

		c.Set(IdentityKey, claims.Subject)
		c.Next()
	}
}

// AdminOnly lets through only callers the policy grants the privileged
// capability. It must run after IdentityAuth.
func AdminOnly(policy services.AdminServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetString(IdentityKey)
		if services.IsAnonymous(identity) {
			abortWithError(c, apperrors.ErrAnonymousCaller)
			return
		}
		ok, err := policy.IsAdmin(identity)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if !ok {
			abortWithError(c, apperrors.ErrAccessDenied)
			return
		}
		c.Next()
	}
}
