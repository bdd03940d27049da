package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "chat_identity"

// IdentityMiddleware resolves the caller's identity from a bearer token
// issued by the company SSO gateway. It only attributes messages; it never
// blocks a request, since identity may also arrive in the request itself.
func IdentityMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if secret == "" || header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.Next()
			return
		}

		raw := strings.TrimSpace(header[len("Bearer "):])
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		if identity := claimIdentity(claims); identity != "" {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

// claimIdentity prefers the uid claim the gateway sets, falling back to the
// standard subject.
func claimIdentity(claims jwt.MapClaims) string {
	if uid, ok := claims["uid"].(string); ok && strings.TrimSpace(uid) != "" {
		return strings.TrimSpace(uid)
	}
	if sub, ok := claims["sub"].(string); ok && strings.TrimSpace(sub) != "" {
		return strings.TrimSpace(sub)
	}
	return ""
}

// GetIdentity fetches the token-derived identity from the request context.
func GetIdentity(c *gin.Context) (string, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return "", false
	}
	identity, ok := val.(string)
	return identity, ok && identity != ""
}
