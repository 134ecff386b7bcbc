package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/middleware"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthController handles back-office login and session cookies
type AuthController interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Verify(c *gin.Context)
}

type authController struct {
	auth         services.AuthService
	settings     services.SettingsService
	cookieName   string
	secureCookie bool
}

func NewAuthController(auth services.AuthService, settings services.SettingsService, cookieName string, secureCookie bool) AuthController {
	return &authController{
		auth:         auth,
		settings:     settings,
		cookieName:   cookieName,
		secureCookie: secureCookie,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Log in
// @Description Returns a signed token and sets it as an HTTP-only cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} services.LoginResult
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Router /api/v1/auth/login [post]
func (ac *authController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := ac.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ac.cookieName, result.Token, maxAge, "/", "", ac.secureCookie, true)
	c.JSON(http.StatusOK, result)
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie. Tokens are not revoked.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/auth/logout [post]
func (ac *authController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ac.cookieName, "", -1, "/", "", ac.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Verify godoc
// @Summary Current session
// @Description Returns the authenticated user and the store settings
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/auth/verify [get]
func (ac *authController) Verify(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := ac.auth.CurrentUser(ctx, c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	settings, err := ac.settings.GetSettings(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "settings": settings})
}
