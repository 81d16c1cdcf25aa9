package service

import (
	"context"
	"fmt"
	"strings"

	"memoryvault/core"
	"memoryvault/models"

	"gorm.io/gorm"
)

// ReasonService handles reveal-on-click reasons
type ReasonService struct {
	db *gorm.DB
}

func NewReasonService(db *gorm.DB) *ReasonService {
	return &ReasonService{db: db}
}

// ListActive returns active reasons in creation order.
func (s *ReasonService) ListActive(ctx context.Context) ([]models.Reason, error) {
	var reasons []models.Reason
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at ASC").Find(&reasons).Error; err != nil {
		return nil, fmt.Errorf("failed to list reasons: %w", err)
	}
	return reasons, nil
}

// ListAll returns every reason, newest first, for the admin panel.
func (s *ReasonService) ListAll(ctx context.Context) ([]models.Reason, error) {
	var reasons []models.Reason
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&reasons).Error; err != nil {
		return nil, fmt.Errorf("failed to list reasons: %w", err)
	}
	return reasons, nil
}

func (s *ReasonService) Create(ctx context.Context, req models.ReasonCreate) (*models.Reason, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, core.Required("content")
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	r := models.Reason{Content: content, IsActive: active}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, fmt.Errorf("failed to create reason: %w", err)
	}
	return &r, nil
}

// Update applies the non-nil fields of req. An unknown id yields (nil, nil).
func (s *ReasonService) Update(ctx context.Context, req models.ReasonUpdate) (*models.Reason, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, ErrIDRequired
	}

	updates := map[string]interface{}{}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, core.Required("content")
		}
		updates["content"] = content
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	var r models.Reason
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Reason{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&r, "id = ?", id).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update reason: %w", err)
	}
	return &r, nil
}

// Delete removes a reason. Unknown ids are not an error.
func (s *ReasonService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.db.WithContext(ctx).Delete(&models.Reason{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete reason: %w", err)
	}
	return nil
}
