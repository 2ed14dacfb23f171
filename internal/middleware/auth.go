package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/fieldtrack-backend-go/pkg/response"
)

// DeviceAuth requires a bearer token signed with secret (HS256) whose subject
// equals the :subjectId path parameter. An empty secret disables the check.
func DeviceAuth(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}
	key := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		if claims.Subject == "" || claims.Subject != c.Param("subjectId") {
			response.Abort(c, http.StatusForbidden, "Token does not belong to this subject")
			return
		}

		c.Set("device_subject", claims.Subject)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	response.Abort(c, http.StatusUnauthorized, message)
}
