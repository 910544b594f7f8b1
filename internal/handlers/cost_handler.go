package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"agroterra/internal/models"
	"agroterra/internal/services"
)

type CostHandler struct {
	costs services.CostService
}

func NewCostHandler(costs services.CostService) *CostHandler {
	return &CostHandler{costs: costs}
}

func (h *CostHandler) Create(c *gin.Context) {
	var cost models.Cost
	if err := c.ShouldBindJSON(&cost); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cost.FarmID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "farm_id is required"})
		return
	}

	if err := h.costs.Create(&cost); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cost)
}

func (h *CostHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cost id"})
		return
	}

	cost, err := h.costs.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cost"})
		return
	}
	if cost == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cost not found"})
		return
	}
	c.JSON(http.StatusOK, cost)
}

func (h *CostHandler) FindAll(c *gin.Context) {
	var filter models.CostFilter

	if v, err := strconv.Atoi(c.Query("farm_id")); err == nil {
		filter.FarmID = &v
	}
	if s := c.Query("category"); s != "" {
		cat := models.CostCategory(s)
		filter.Category = &cat
	}
	if s := c.Query("from"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.From = &t
		}
	}
	if s := c.Query("to"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.To = &t
		}
	}

	costs, err := h.costs.FindAll(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list costs"})
		return
	}
	c.JSON(http.StatusOK, costs)
}

func (h *CostHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cost id"})
		return
	}

	var cost models.Cost
	if err := c.ShouldBindJSON(&cost); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cost.ID = id

	if err := h.costs.Update(&cost); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cost)
}

func (h *CostHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cost id"})
		return
	}

	if err := h.costs.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete cost"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cost deleted"})
}
