package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agroterra/internal/services"
)

type RecoveryHandler struct {
	recoveries services.RecoveryService
}

func NewRecoveryHandler(recoveries services.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recoveries: recoveries}
}

// @Summary      Start a password reset
// @Description  Emails a reset code; the password can only change after the code is confirmed
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /password/recovery [post]
func (h *RecoveryHandler) Initiate(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.recoveries.Initiate(req.Email); err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reset code sent"})
}

func (h *RecoveryHandler) Resend(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.recoveries.Resend(req.Email); err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reset code sent"})
}

func (h *RecoveryHandler) ConfirmPin(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.recoveries.ConfirmPin(req.Email, req.Code); err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Code confirmed, you may set a new password"})
}

func (h *RecoveryHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.recoveries.ResetPassword(req.Email, req.NewPassword); err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
