package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/betoojeda/tienda-facil/internal/http/response"
	"github.com/betoojeda/tienda-facil/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := ah.authService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "registration_failed")
		return
	}
	response.RespondCreated(c, gin.H{"user": user})
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.LoginUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.RespondAPIError(c, err, "login_failed")
		return
	}
	body := gin.H{
		"access_token":  res.AccessToken,
		"refresh_token": res.RefreshToken,
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
		"user":          res.User,
		"view":          res.Landing.View,
	}
	if res.Landing.ActiveStore != nil {
		body["active_store_id"] = res.Landing.ActiveStore.ID
	}
	response.RespondOK(c, body)
}

// POST /api/refresh
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !bindJSON(c, &req) {
		return
	}
	accessToken, refreshToken, err := ah.authService.RefreshUser(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondAPIError(c, err, "refresh_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
	})
}

// POST /api/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		response.RespondAPIError(c, err, "logout_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/recover
// The answer is the same whether or not the account exists.
func (ah *AuthHandler) Recover(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := ah.authService.RecoverPassword(c.Request.Context(), req.Identifier); err != nil {
		response.RespondAPIError(c, err, "recover_failed")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"ok":      true,
		"message": "Correo de recuperación enviado.",
	})
}
