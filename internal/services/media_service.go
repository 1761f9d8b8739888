package services

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/freightdesk/backend/internal/logger"
	"github.com/freightdesk/backend/internal/models"
	"github.com/freightdesk/backend/internal/storage"
	"gorm.io/gorm"
)

// MediaService records references to evidentiary files. The bytes live
// in the media store; removing a record also removes the stored file.
type MediaService struct {
	db    *gorm.DB
	store *storage.MediaStore
}

func NewMediaService(db *gorm.DB, store *storage.MediaStore) *MediaService {
	return &MediaService{
		db:    db,
		store: store,
	}
}

type AttachMediaInput struct {
	Slot       string
	SampleSlot *models.SampleSlot
	Watermark  *string
	Filename   string
	File       io.Reader
}

// kindForExt maps an upload's extension to its media kind.
func kindForExt(ext string) (models.MediaKind, error) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".webp", ".heic":
		return models.MediaPhoto, nil
	case ".mp4", ".mov", ".avi", ".webm":
		return models.MediaVideo, nil
	}
	return "", fmt.Errorf("%w: unsupported media type %q", ErrInvalidArgument, ext)
}

// Attach stores the file and records it against the incident. If the
// record insert fails the stored file is removed again.
func (ms *MediaService) Attach(incidentID, uploaderID uint, in AttachMediaInput) (*models.Media, error) {
	if in.Slot == "" {
		return nil, fmt.Errorf("%w: media slot is required", ErrInvalidArgument)
	}
	if in.File == nil || in.Filename == "" {
		return nil, fmt.Errorf("%w: media file is required", ErrInvalidArgument)
	}

	kind, err := kindForExt(filepath.Ext(in.Filename))
	if err != nil {
		return nil, err
	}

	var incident models.Incident
	if err := ms.db.First(&incident, incidentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: incident %d", ErrNotFound, incidentID)
		}
		return nil, fmt.Errorf("failed to load incident: %w", err)
	}

	var sampleCardID *uint
	if in.SampleSlot != nil {
		var card models.SampleCard
		if err := ms.db.Where("incident_id = ? AND slot = ?", incidentID, *in.SampleSlot).First(&card).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: sample card %s of incident %d", ErrNotFound, *in.SampleSlot, incidentID)
			}
			return nil, fmt.Errorf("failed to load sample card: %w", err)
		}
		sampleCardID = &card.ID
	}

	path, url, err := ms.store.Save(in.Filename, in.File)
	if err != nil {
		return nil, err
	}

	media := models.Media{
		IncidentID:   incidentID,
		SampleCardID: sampleCardID,
		Kind:         kind,
		Slot:         in.Slot,
		FilePath:     path,
		FileURL:      url,
		Watermark:    in.Watermark,
		UploadedBy:   uploaderID,
	}

	if err := ms.db.Create(&media).Error; err != nil {
		// Keep store and ledger consistent when the insert fails.
		if rmErr := ms.store.Remove(path); rmErr != nil {
			logger.WithError(rmErr, "media_service").Warn("Failed to remove orphaned media file")
		}
		return nil, fmt.Errorf("failed to create media record: %w", err)
	}

	logger.WithIncident(incidentID).Info("Media attached", map[string]interface{}{
		"media_id": media.ID,
		"kind":     kind,
		"slot":     in.Slot,
	})

	return &media, nil
}

// Remove deletes the media record and the underlying stored file.
func (ms *MediaService) Remove(incidentID, mediaID uint) error {
	var media models.Media
	if err := ms.db.Where("id = ? AND incident_id = ?", mediaID, incidentID).First(&media).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: media %d of incident %d", ErrNotFound, mediaID, incidentID)
		}
		return fmt.Errorf("failed to load media: %w", err)
	}

	if err := ms.db.Delete(&media).Error; err != nil {
		return fmt.Errorf("failed to delete media record: %w", err)
	}

	if err := ms.store.Remove(media.FilePath); err != nil {
		logger.WithError(err, "media_service").Warn("Failed to remove stored media file")
	}

	logger.WithIncident(incidentID).Info("Media removed", map[string]interface{}{
		"media_id": mediaID,
	})
	return nil
}

// List returns the incident's media records, newest first.
func (ms *MediaService) List(incidentID uint) ([]models.Media, error) {
	var media []models.Media
	if err := ms.db.Where("incident_id = ?", incidentID).Order("created_at DESC").Find(&media).Error; err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return media, nil
}
