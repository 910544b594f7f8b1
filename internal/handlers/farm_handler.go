package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agroterra/internal/models"
	"agroterra/internal/services"
)

type FarmHandler struct {
	farms services.FarmService
}

func NewFarmHandler(farms services.FarmService) *FarmHandler {
	return &FarmHandler{farms: farms}
}

// @Summary      Create a farm
// @Tags         Farms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  models.Farm
// @Router       /farms [post]
func (h *FarmHandler) Create(c *gin.Context) {
	var farm models.Farm
	if err := c.ShouldBindJSON(&farm); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accountID, _ := getAccountAndRole(c)
	farm.OwnerID = accountID

	if err := h.farms.Create(&farm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create farm"})
		return
	}
	c.JSON(http.StatusCreated, farm)
}

func (h *FarmHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid farm id"})
		return
	}

	farm, err := h.farms.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load farm"})
		return
	}
	if farm == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "farm not found"})
		return
	}
	c.JSON(http.StatusOK, farm)
}

func (h *FarmHandler) List(c *gin.Context) {
	if mine := c.Query("mine"); mine == "true" {
		accountID, _ := getAccountAndRole(c)
		farms, err := h.farms.ListByOwner(accountID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list farms"})
			return
		}
		c.JSON(http.StatusOK, farms)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	farms, err := h.farms.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list farms"})
		return
	}
	c.JSON(http.StatusOK, farms)
}

func (h *FarmHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid farm id"})
		return
	}

	var farm models.Farm
	if err := c.ShouldBindJSON(&farm); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	farm.ID = id

	if err := h.farms.Update(&farm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update farm"})
		return
	}
	c.JSON(http.StatusOK, farm)
}

func (h *FarmHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid farm id"})
		return
	}

	if err := h.farms.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete farm"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Farm deleted"})
}
