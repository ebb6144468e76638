package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promptdesk/internal/models"
)

const identityContextKey = "auth_identity"

// PageMiddleware resolves the session cookie and stores the identity in the
// context. Unauthenticated browsers are redirected to the login page.
func (s *Service) PageMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(s.cookieName)
		if err != nil || token == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		user, err := s.Resolve(c.Request.Context(), token)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(identityContextKey, user)
		c.Next()
	}
}

// IdentityFromContext retrieves the authenticated identity set by the middleware.
func IdentityFromContext(c *gin.Context) (*models.User, bool) {
	val, ok := c.Get(identityContextKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok
}
