package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/access"
	"github.com/smarttrans/smarttrans-backend/internal/errs"
	"github.com/smarttrans/smarttrans-backend/internal/models"
)

const (
	userKey     = "user"
	userIDKey   = "userId"
	userRoleKey = "userRole"
)

// Authenticator resolves a bearer token to a stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware requires a valid bearer token in the Authorization
// header.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return authenticate(auth, false)
}

// WebSocketAuth is AuthMiddleware for the websocket handshake, where the
// token may also come in the token query parameter. Mount it on that
// route only.
func WebSocketAuth(auth Authenticator) gin.HandlerFunc {
	return authenticate(auth, true)
}

func authenticate(auth Authenticator, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = strings.TrimSpace(parts[1])
			}
		}

		if tokenString == "" && allowQuery {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			WriteError(c, errs.Unauthenticated("Not authenticated"))
			c.Abort()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if !errors.Is(err, errs.ErrUnauthenticated) {
				Logger(c).Error("token resolution failed", "error", err)
			}
			WriteError(c, err)
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Set(userIDKey, user.ID)
		c.Set(userRoleKey, string(user.Role))
		c.Next()
	}
}

// CurrentUser returns the caller resolved by AuthMiddleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// RequireRole rejects callers whose role is not in roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.RequireRole(CurrentUser(c), roles...); err != nil {
			WriteError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// WriteError renders err as {"error": message, "code": kind} with the
// status its kind maps to.
func WriteError(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	if kind == errs.KindUnauthenticated {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.JSON(errs.HTTPStatus(kind), gin.H{
		"error": errs.Public(err),
		"code":  string(kind),
	})
}
