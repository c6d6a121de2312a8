package middlewares

import (
	"blog-admin/internal/auth"
	"blog-admin/internal/result"
	"github.com/gin-gonic/gin"
	"net/http"
	"net/url"
)

// AdminHandlerFunc is a handler that can only run on behalf of an authenticated admin.
type AdminHandlerFunc func(c *gin.Context, admin auth.Principal)

// SessionGuard validates session tokens taken from the session cookie or a bearer header.
type SessionGuard struct {
	Settings auth.Settings
}

func NewSessionGuard(settings auth.Settings) *SessionGuard {
	return &SessionGuard{Settings: settings}
}

// RequireAdmin runs handler only for requests carrying a valid token with the admin role.
// Without a valid token the client is redirected to the login page, remembering
// the requested path; a valid token without the admin role is redirected to the front page.
func (g *SessionGuard) RequireAdmin(handler AdminHandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := g.Authorize(c)
		if !r.IsOk() {
			c.Redirect(http.StatusFound, r.Location)
			c.Abort()
			return
		}

		handler(c, r.Data)
	}
}

// Authorize resolves the admin of a request: Ok with the principal, Unauthorized
// towards the login page without a valid token, Redirect to "/" for a non-admin.
func (g *SessionGuard) Authorize(c *gin.Context) result.Result[auth.Principal] {
	claims, err := g.claimsFrom(c)
	if err != nil {
		return result.Unauthorized[auth.Principal](LoginLocation(c.Request.URL.RequestURI()))
	}

	admin, err := auth.AdminFromClaims(claims)
	if err != nil {
		return result.Redirect[auth.Principal]("/")
	}

	c.Set(auth.ClaimsKey, claims)
	return result.Ok(admin)
}

// BearerAuth rejects requests without a valid bearer token with 403.
func (g *SessionGuard) BearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("Authorization")

		tokenString, err := auth.BearerToken(token)
		if err != nil {
			if len(token) == 0 {
				c.JSON(http.StatusForbidden, gin.H{"message": "Your request is not authorized."})
			} else {
				c.JSON(http.StatusForbidden, gin.H{"message": "Your request is not authorized. Are you missing the prefix 'Bearer'?"})
			}
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(tokenString, g.Settings.SigningKey)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"message": "Invalid authorization token"})
			c.Abort()
			return
		}

		c.Set(auth.ClaimsKey, claims)
		c.Next()
	}
}

// claimsFrom validates the session cookie and falls back to the bearer header
// when there is no cookie or the cookie does not validate.
func (g *SessionGuard) claimsFrom(c *gin.Context) (*auth.Claims, error) {
	var cookieErr error
	if cookie, err := c.Cookie(g.Settings.CookieName); err == nil && len(cookie) > 0 {
		claims, err := auth.ValidateToken(cookie, g.Settings.SigningKey)
		if err == nil {
			return claims, nil
		}
		cookieErr = err
	}

	tokenString, err := auth.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		if cookieErr != nil {
			return nil, cookieErr
		}
		return nil, err
	}
	return auth.ValidateToken(tokenString, g.Settings.SigningKey)
}

// LoginLocation is the login page that sends the client back to redirectTo afterwards.
func LoginLocation(redirectTo string) string {
	return "/login?" + url.Values{"redirectTo": []string{redirectTo}}.Encode()
}
