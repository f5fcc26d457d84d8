package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joshwoodland/boredcertified/internal/handler"
	"github.com/joshwoodland/boredcertified/internal/service/audit"
	authservice "github.com/joshwoodland/boredcertified/internal/service/auth"
)

type AuthMiddleware struct {
	authService *authservice.Service
}

func NewAuthMiddleware(authService *authservice.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and sets the clinician's
// identity in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handler.NewErrorResponse("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handler.NewErrorResponse("invalid authorization format"))
			return
		}

		claims, err := m.authService.VerifyToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handler.NewErrorResponse("invalid token"))
			return
		}

		c.Set(audit.ContextActorKey, claims.UserID)
		c.Set("actor_email", claims.Email)
		c.Set("actor_role", claims.Role)

		// Services read the actor from the request context, not the gin
		// keys, so stamp it there too.
		c.Request = c.Request.WithContext(audit.WithActor(c.Request.Context(), claims.UserID))
		c.Next()
	}
}
