package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/reorderly/backend-go/internal/auth"
	"github.com/reorderly/backend-go/internal/domain"
)

// Context key for the authenticated caller.
const identityKey = "identity"

// OrgIDHeader names the organization the caller is acting for. Required on
// authenticated requests.
const OrgIDHeader = "X-Org-Id"

// Auth validates the Authorization bearer token against the remote key set
// and places the caller identity on the context. The identity is a
// passthrough for downstream handlers; it does not change any computation.
func Auth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization Bearer token"})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Empty token"})
			return
		}

		orgID := c.GetHeader(OrgIDHeader)
		if orgID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing X-Org-Id header (select a Company/Organization)"})
			return
		}

		userID, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrNotConfigured) {
				log.Error().Err(err).Msg("auth verifier misconfigured")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server misconfigured: auth settings missing"})
				return
			}
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(identityKey, domain.Identity{UserID: userID, OrgID: orgID})
		c.Next()
	}
}

// CallerIdentity returns the identity set by Auth, if any.
func CallerIdentity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}

	id, ok := v.(domain.Identity)
	return id, ok
}
