package apitest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const authClaimsKey = "auth_claims"

// requireAuth valida el bearer token y guarda los claims en el contexto.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := s.tokens.parse(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, errTokenRevoked) {
				msg = "token revoked"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

func authClaims(c *gin.Context) (claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return claims{}, false
	}
	cl, ok := val.(claims)
	return cl, ok
}

func currentUserID(c *gin.Context) string {
	cl, _ := authClaims(c)
	return cl.UserID
}
