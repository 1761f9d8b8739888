package controllers

import (
	"net/http"
	"strconv"

	"github.com/freightdesk/backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ShipmentController struct {
	db *gorm.DB
}

func NewShipmentController(db *gorm.DB) *ShipmentController {
	return &ShipmentController{db: db}
}

// GetShipments lists shipments with optional hold/supplier filters
func (sc *ShipmentController) GetShipments(c *gin.Context) {
	query := sc.db.Preload("Supplier").Preload("Branch")

	if onHold := c.Query("onHold"); onHold != "" {
		hold, err := strconv.ParseBool(onHold)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid onHold value"})
			return
		}
		query = query.Where("on_hold = ?", hold)
	}
	if supplierID := c.Query("supplierId"); supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var shipments []models.Shipment
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&shipments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shipments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shipments": shipments})
}

// GetShipment returns a single shipment with its hold state
func (sc *ShipmentController) GetShipment(c *gin.Context) {
	id := c.Param("id")

	var shipment models.Shipment
	if err := sc.db.Preload("Supplier").Preload("Branch").First(&shipment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shipment": shipment})
}
