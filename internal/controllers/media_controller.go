package controllers

import (
	"net/http"

	"github.com/freightdesk/backend/internal/models"
	"github.com/freightdesk/backend/internal/services"
	"github.com/gin-gonic/gin"
)

type MediaController struct {
	media *services.MediaService
}

func NewMediaController(media *services.MediaService) *MediaController {
	return &MediaController{media: media}
}

// AttachMedia stores an uploaded file and records it on the incident
func (mc *MediaController) AttachMedia(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, idOK := parseID(c, "id")
	if !idOK {
		return
	}

	slot := c.PostForm("slot")
	if slot == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Media slot is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	in := services.AttachMediaInput{
		Slot:     slot,
		Filename: fileHeader.Filename,
		File:     file,
	}
	if sampleSlot := c.PostForm("sampleSlot"); sampleSlot != "" {
		s := models.SampleSlot(sampleSlot)
		in.SampleSlot = &s
	}
	if watermark := c.PostForm("watermark"); watermark != "" {
		in.Watermark = &watermark
	}

	media, err := mc.media.Attach(id, userID, in)
	if err != nil {
		respondServiceError(c, err, "media_controller")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"media": media})
}

// GetMedia lists the incident's media records
func (mc *MediaController) GetMedia(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	media, err := mc.media.List(id)
	if err != nil {
		respondServiceError(c, err, "media_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"media": media})
}

// RemoveMedia deletes a media record together with its stored file
func (mc *MediaController) RemoveMedia(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	mediaID, ok := parseID(c, "mediaId")
	if !ok {
		return
	}

	if err := mc.media.Remove(id, mediaID); err != nil {
		respondServiceError(c, err, "media_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Media removed successfully",
	})
}
