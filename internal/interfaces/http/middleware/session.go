package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/curelink/curelink/pkg/constants"
	"github.com/curelink/curelink/pkg/logger"
)

// extractBearer extracts the token from the Authorization header.
func extractBearer(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// DetectSession flags requests carrying a well-formed member session
// token. Flagged requests bypass anonymous quota enforcement entirely;
// full signature verification belongs to the member API gateway, this
// subsystem only needs to know the anonymous rules do not apply.
func DetectSession(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractBearer(c.Request.Header.Get("Authorization"))
		if tokenStr == "" {
			c.Set(constants.GinKeyAuthenticated, false)
			c.Next()
			return
		}

		parser := jwt.NewParser()
		if _, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{}); err != nil {
			log.Debug(c.Request.Context(), "malformed session token, treating request as anonymous",
				logger.Error(err),
			)
			c.Set(constants.GinKeyAuthenticated, false)
			c.Next()
			return
		}

		c.Set(constants.GinKeyAuthenticated, true)
		c.Next()
	}
}
