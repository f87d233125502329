package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/AntonTsoy/book-catalog/internal/apperror"
	"github.com/AntonTsoy/book-catalog/internal/token"
	"github.com/AntonTsoy/book-catalog/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgLogIn         = "Please log in."
	msgNotAuthorized = "You are not authorized to perform this action."
	msgAuthzFailed   = "An error occurred while verifying your authorization."
)

type claimsContextKey struct{}

// ClaimsFromContext returns the identity attached by AuthCheck.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*token.Claims)
	return claims, ok && claims != nil
}

func withClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

type AccessVerifier interface {
	VerifyAccessToken(ctx context.Context, tokenString string) (*token.Claims, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*users.User, error)
}

// AuthCheck requires a valid bearer access token.
func AuthCheck(verifier AccessVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, apperror.Unauthorized(msgLogIn))
			return
		}

		var tokenString string
		if parts := strings.Fields(header); len(parts) > 1 {
			tokenString = parts[1]
		}

		claims, err := verifier.VerifyAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			abort(c, err)
			return
		}

		c.Request = c.Request.WithContext(withClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// AdminCheck must run after AuthCheck.
func AdminCheck(lookup UserLookup, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c.Request.Context())
		if !ok {
			abort(c, apperror.Unauthorized(msgLogIn))
			return
		}

		user, err := lookup.GetUserByID(c.Request.Context(), claims.UserID())
		switch {
		case errors.Is(err, users.ErrNotFound):
			abort(c, apperror.Unauthorized(msgNotAuthorized))
			return
		case err != nil:
			log.Error("admin check lookup", zap.String("user_id", claims.UserID()), zap.Error(err))
			abort(c, apperror.New(http.StatusInternalServerError, msgAuthzFailed, err))
			return
		case !user.IsAdmin():
			abort(c, apperror.Unauthorized(msgNotAuthorized))
			return
		}

		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
