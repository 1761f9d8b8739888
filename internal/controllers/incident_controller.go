package controllers

import (
	"net/http"
	"strconv"

	"github.com/freightdesk/backend/internal/logger"
	"github.com/freightdesk/backend/internal/models"
	"github.com/freightdesk/backend/internal/services"
	"github.com/gin-gonic/gin"
)

type IncidentController struct {
	incidents *services.IncidentService
	samples   *services.SampleService
	reviews   *services.ReviewService
}

func NewIncidentController(incidents *services.IncidentService, samples *services.SampleService, reviews *services.ReviewService) *IncidentController {
	return &IncidentController{
		incidents: incidents,
		samples:   samples,
		reviews:   reviews,
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// CreateIncident opens a quality incident for a shipment
func (ic *IncidentController) CreateIncident(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.CreateIncidentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	logger.WithUser(userID).Info("Create incident request received", map[string]interface{}{
		"shipment_id": req.ShipmentID,
	})

	incident, err := ic.incidents.Create(userID, req)
	if err != nil {
		respondServiceError(c, err, "incident_controller")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"incident": incident})
}

// GetIncidents lists incidents with optional status/branch filters
func (ic *IncidentController) GetIncidents(c *gin.Context) {
	var status *models.IncidentStatus
	if s := c.Query("status"); s != "" {
		st := models.IncidentStatus(s)
		status = &st
	}
	var branchID *uint
	if b := c.Query("branchId"); b != "" {
		parsed, err := strconv.ParseUint(b, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid branchId"})
			return
		}
		id := uint(parsed)
		branchID = &id
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	incidents, total, err := ic.incidents.List(status, branchID, page, limit)
	if err != nil {
		respondServiceError(c, err, "incident_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"incidents": incidents,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetIncident returns one incident with its grid, media and audit trail
func (ic *IncidentController) GetIncident(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	incident, err := ic.incidents.Get(id)
	if err != nil {
		respondServiceError(c, err, "incident_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"incident": incident})
}

// UpdateIncident merges provided fields into a draft/submitted incident
func (ic *IncidentController) UpdateIncident(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateIncidentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	incident, err := ic.incidents.Update(id, req)
	if err != nil {
		respondServiceError(c, err, "incident_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"incident": incident})
}

// SubmitIncident moves a draft incident to submitted
func (ic *IncidentController) SubmitIncident(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	incident, err := ic.incidents.Submit(id)
	if err != nil {
		respondServiceError(c, err, "incident_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"incident": incident})
}

// RecordSample stores one measurement for a sample slot
func (ic *IncidentController) RecordSample(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	slot := models.SampleSlot(c.Param("slot"))

	var req services.RecordSampleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	card, err := ic.samples.RecordSample(id, slot, req)
	if err != nil {
		respondServiceError(c, err, "incident_controller")
		return
	}

	incident, err := ic.incidents.Get(id)
	if err != nil {
		respondServiceError(c, err, "incident_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"card":     card,
		"incident": incident,
	})
}

// GetSampleCards returns the incident's grid in fixed slot order
func (ic *IncidentController) GetSampleCards(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	cards, err := ic.samples.GetCards(id)
	if err != nil {
		respondServiceError(c, err, "incident_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// ReviewIncident applies a supervisory decision to an incident
func (ic *IncidentController) ReviewIncident(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, idOK := parseID(c, "id")
	if !idOK {
		return
	}

	var req services.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	logger.WithUser(userID).Info("Review action request received", map[string]interface{}{
		"incident_id": id,
		"action":      req.Action,
	})

	incident, err := ic.reviews.Review(id, services.Actor{ID: userID, Role: role}, req)
	if err != nil {
		respondServiceError(c, err, "incident_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"incident": incident})
}

// GetSummaryStats returns incident counts per status and the overall
// average defect percentage
func (ic *IncidentController) GetSummaryStats(c *gin.Context) {
	var branchID *uint
	if b := c.Query("branchId"); b != "" {
		parsed, err := strconv.ParseUint(b, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid branchId"})
			return
		}
		id := uint(parsed)
		branchID = &id
	}

	stats, err := ic.incidents.SummaryStats(branchID)
	if err != nil {
		respondServiceError(c, err, "incident_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
