package server

import (
	"net/http"
	"strings"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/auth"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// identityKey is the gin context key under which the verified identity is stored.
const identityKey = "identity"

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// RequireRole authenticates the request and aborts unless the caller holds
// one of the allowed roles. The credential comes from the Authorization
// bearer header or, for websocket clients, the token query parameter.
func RequireRole(verifier auth.Verifier, allowed ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := verifier.Verify(extractToken(c))
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, err, "could not validate credentials")
			c.Abort()
			return
		}

		for _, role := range allowed {
			if identity.Role == role {
				c.Set(identityKey, identity)
				c.Next()
				return
			}
		}

		utils.JSONError(c, http.StatusForbidden, auctionerrors.ErrForbidden, "insufficient permissions")
		utils.Warn("RequireRole: forbidden", map[string]any{
			"user_id": identity.UserID,
			"role":    string(identity.Role),
			"path":    c.Request.URL.Path,
		})
		c.Abort()
	}
}

// CallerIdentity returns the verified identity stored by RequireRole
func CallerIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

// extractToken pulls the credential from the bearer header or query string
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
