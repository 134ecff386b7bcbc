package middleware

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/auth"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthRequired
const (
	UserIDKey       = "userID"
	UsernameKey     = "username"
	UserRoleKey     = "userRole"
	RestaurantIDKey = "restaurantID"
	ClientIDKey     = "clientID"
	ScopesKey       = "scopes"
	AuthTypeKey     = "auth_type"
)

// Authenticator verifies an access token and returns its claims
type Authenticator interface {
	Authenticate(token string) (*auth.Claims, error)
}

// AuthRequired accepts tokens issued by login or by the OAuth2 token endpoint.
// The token is read from the Authorization header (Bearer scheme) and, failing that,
// from the session cookie. Every failure gets the same 401 body.
func AuthRequired(authenticator Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c, cookieName)
		if token == "" {
			unauthorized(c)
			return
		}

		claims, err := authenticator.Authenticate(token)
		if err != nil {
			unauthorized(c)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// TokenFromRequest extracts the bearer token or, when absent, the cookie value
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "Unauthorized"))
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UsernameKey, claims.Username)
	c.Set(UserRoleKey, claims.Role)
	c.Set(RestaurantIDKey, claims.RestaurantID)

	if claims.Scope != "" {
		c.Set(ScopesKey, claims.Scope)
	}
	if len(claims.Audience) > 0 && claims.Audience[0] != "" {
		c.Set(ClientIDKey, claims.Audience[0])
		c.Set(AuthTypeKey, "oauth2")
	} else {
		c.Set(AuthTypeKey, "jwt")
	}
}

// CurrentScope builds the restaurant scope of the authenticated caller
func CurrentScope(c *gin.Context) services.Scope {
	return services.Scope{
		UserID:       c.GetString(UserIDKey),
		Username:     c.GetString(UsernameKey),
		Role:         models.Role(c.GetString(UserRoleKey)),
		RestaurantID: c.GetString(RestaurantIDKey),
	}
}
