package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agroterra/internal/models"
	"agroterra/internal/services"
)

type CropHandler struct {
	crops services.CropService
}

func NewCropHandler(crops services.CropService) *CropHandler {
	return &CropHandler{crops: crops}
}

func (h *CropHandler) Create(c *gin.Context) {
	var crop models.Crop
	if err := c.ShouldBindJSON(&crop); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if crop.PlotID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plot_id is required"})
		return
	}

	if err := h.crops.Create(&crop); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create crop"})
		return
	}
	c.JSON(http.StatusCreated, crop)
}

func (h *CropHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid crop id"})
		return
	}

	crop, err := h.crops.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load crop"})
		return
	}
	if crop == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "crop not found"})
		return
	}
	c.JSON(http.StatusOK, crop)
}

func (h *CropHandler) ListByPlot(c *gin.Context) {
	plotID, err := strconv.Atoi(c.Query("plot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plot_id query parameter is required"})
		return
	}

	crops, err := h.crops.ListByPlot(plotID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list crops"})
		return
	}
	c.JSON(http.StatusOK, crops)
}

func (h *CropHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid crop id"})
		return
	}

	var crop models.Crop
	if err := c.ShouldBindJSON(&crop); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	crop.ID = id

	if err := h.crops.Update(&crop); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update crop"})
		return
	}
	c.JSON(http.StatusOK, crop)
}

// @Summary      Change crop status
// @Description  Moves a crop along planted -> growing -> harvested; failed is reachable from any live stage
// @Tags         Crops
// @Security     BearerAuth
// @Router       /crops/{id}/status [patch]
func (h *CropHandler) ChangeStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid crop id"})
		return
	}

	var req struct {
		Status models.CropStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crop, err := h.crops.ChangeStatus(id, req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, crop)
}

func (h *CropHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid crop id"})
		return
	}

	if err := h.crops.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete crop"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Crop deleted"})
}
