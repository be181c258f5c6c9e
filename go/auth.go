package bookstoreserver

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
	"github.com/Apurer/go-gin-bookstore/internal/shared/identity"
)

// Authenticator resolves bearer tokens to caller identities.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity.Identity, error)
}

// RequireIdentity rejects requests without a valid bearer token and stores
// the resolved identity in the request context.
func RequireIdentity(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithProblem(c, apierrors.ErrUnauthorized.WithDetail("missing bearer token"))
			return
		}
		id, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(identity.NewContext(c.Request.Context(), id))
		c.Next()
	}
}

// RequireAdmin lets through only callers with the ADMIN role. It must run
// after RequireIdentity.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity.FromContext(c.Request.Context())
		if !ok {
			abortWithProblem(c, apierrors.ErrUnauthorized.WithDetail("authentication required"))
			return
		}
		if !id.IsAdmin() {
			abortWithProblem(c, apierrors.ErrForbidden.WithDetail("administrator role required"))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
