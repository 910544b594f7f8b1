package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agroterra/internal/models"
	"agroterra/internal/services"
)

type AuthHandler struct {
	logins services.LoginService
}

func NewAuthHandler(logins services.LoginService) *AuthHandler {
	return &AuthHandler{logins: logins}
}

// @Summary      First login step: password check
// @Description  Verifies the password and emails a sign-in code; no token is issued yet
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)
	log.Printf("[auth][login] attempt email=%q", email)

	if err := h.logins.Login(email, req.Password); err != nil {
		// a missing account answers exactly like a bad password
		if err == services.ErrNotRegistered {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// @Summary      Second login step: code check
// @Description  Verifies the emailed code and returns the session tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.TokenPair
// @Failure      400  {object}  map[string]string
// @Router       /login/verify [post]
func (h *AuthHandler) VerifyTwoFactor(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.logins.VerifyTwoFactor(req.Email, req.Code)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"tokens":  pair,
	})
}

func (h *AuthHandler) ResendTwoFactorPin(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.logins.ResendTwoFactorPin(req.Email); err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.logins.Refresh(strings.TrimSpace(req.RefreshToken))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, pair)
}
