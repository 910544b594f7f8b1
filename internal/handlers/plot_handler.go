package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agroterra/internal/models"
	"agroterra/internal/services"
)

type PlotHandler struct {
	plots services.PlotService
}

func NewPlotHandler(plots services.PlotService) *PlotHandler {
	return &PlotHandler{plots: plots}
}

func (h *PlotHandler) Create(c *gin.Context) {
	var plot models.Plot
	if err := c.ShouldBindJSON(&plot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if plot.FarmID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "farm_id is required"})
		return
	}

	if err := h.plots.Create(&plot); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create plot"})
		return
	}
	c.JSON(http.StatusCreated, plot)
}

func (h *PlotHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plot id"})
		return
	}

	plot, err := h.plots.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plot"})
		return
	}
	if plot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plot not found"})
		return
	}
	c.JSON(http.StatusOK, plot)
}

func (h *PlotHandler) ListByFarm(c *gin.Context) {
	farmID, err := strconv.Atoi(c.Query("farm_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "farm_id query parameter is required"})
		return
	}

	plots, err := h.plots.ListByFarm(farmID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list plots"})
		return
	}
	c.JSON(http.StatusOK, plots)
}

func (h *PlotHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plot id"})
		return
	}

	var plot models.Plot
	if err := c.ShouldBindJSON(&plot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plot.ID = id

	if err := h.plots.Update(&plot); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update plot"})
		return
	}
	c.JSON(http.StatusOK, plot)
}

func (h *PlotHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plot id"})
		return
	}

	if err := h.plots.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete plot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Plot deleted"})
}
