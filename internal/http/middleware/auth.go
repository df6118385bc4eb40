// README: Admin bearer-token auth middleware (HS256 JWT).
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

const actorKey = "auth.actor"

type adminClaims struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// AdminAuth validates a Bearer JWT and requires the admin kind. The token
// name becomes the actor recorded on audit events.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c.GetHeader("Authorization"), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !strings.EqualFold(claims.Kind, "admin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Set(actorKey, claims.Name)
		c.Next()
	}
}

// Actor returns the authenticated admin name, empty when unauthenticated.
func Actor(c *gin.Context) string {
	v, _ := c.Get(actorKey)
	s, _ := v.(string)
	return s
}

func parseBearer(header, secret string) (*adminClaims, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid authorization header")
	}
	tok, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), &adminClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	c, _ := tok.Claims.(*adminClaims)
	if c == nil || c.Name == "" || c.Kind == "" {
		return nil, errors.New("invalid claims")
	}
	return c, nil
}
