package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agroterra/internal/models"
	"agroterra/internal/services"
)

type RegisterHandler struct {
	registrations services.RegistrationService
}

func NewRegisterHandler(registrations services.RegistrationService) *RegisterHandler {
	return &RegisterHandler{registrations: registrations}
}

// @Summary      Register a new account
// @Description  Creates a pending account and emails a confirmation code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        registration  body      models.RegisterRequest  true  "Registration data"
// @Success      201  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]string
// @Router       /register [post]
func (h *RegisterHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acc, err := h.registrations.Register(&req)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Confirmation code sent",
		"account": acc,
	})
}

func (h *RegisterHandler) Confirm(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registrations.Confirm(req.Email, req.Code); err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account confirmed"})
}

func (h *RegisterHandler) Resend(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registrations.Resend(req.Email); err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Confirmation code sent"})
}
