package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agroterra/internal/authz"
	"agroterra/internal/services"
)

type AccountHandler struct {
	accounts services.AccountService
}

func NewAccountHandler(accounts services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// @Summary      Current account profile
// @Tags         Accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.Account
// @Router       /accounts/me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	accountID, _ := getAccountAndRole(c)

	acc, err := h.accounts.GetByID(accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}
	if acc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (h *AccountHandler) Update(c *gin.Context) {
	accountID, _ := getAccountAndRole(c)

	acc, err := h.accounts.GetByID(accountID)
	if err != nil || acc == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.FirstName != "" {
		acc.FirstName = req.FirstName
	}
	if req.LastName != "" {
		acc.LastName = req.LastName
	}

	if err := h.accounts.Update(acc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update account"})
		return
	}
	c.JSON(http.StatusOK, acc)
}

// Deactivate closes either the caller's own account or, for admins, any
// account given by id.
func (h *AccountHandler) Deactivate(c *gin.Context) {
	accountID, roleID := getAccountAndRole(c)

	targetID := accountID
	if raw := c.Param("id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
			return
		}
		if id != accountID && roleID != authz.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		targetID = id
	}

	if err := h.accounts.Deactivate(targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated"})
}

func (h *AccountHandler) LinkTelegram(c *gin.Context) {
	accountID, _ := getAccountAndRole(c)

	var req struct {
		ChatID int64 `json:"chat_id" binding:"required"`
		Enable bool  `json:"enable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accounts.LinkTelegram(accountID, req.ChatID, req.Enable); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link telegram"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Telegram settings updated"})
}
