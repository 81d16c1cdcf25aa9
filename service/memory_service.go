package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"memoryvault/core"
	"memoryvault/models"

	"gorm.io/gorm"
)

// MemoryService handles timeline entries
type MemoryService struct {
	db *gorm.DB
}

func NewMemoryService(db *gorm.DB) *MemoryService {
	return &MemoryService{db: db}
}

// List returns all memories, most recent memory date first.
func (s *MemoryService) List(ctx context.Context) ([]models.Memory, error) {
	var memories []models.Memory
	if err := s.db.WithContext(ctx).Order("memory_date DESC").Order("created_at DESC").Find(&memories).Error; err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	return memories, nil
}

// ListRecent returns all memories, most recently created first.
func (s *MemoryService) ListRecent(ctx context.Context) ([]models.Memory, error) {
	var memories []models.Memory
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&memories).Error; err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	return memories, nil
}

func (s *MemoryService) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Memory{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count memories: %w", err)
	}
	return n, nil
}

// Get returns a single memory or core.ErrNotFound.
func (s *MemoryService) Get(ctx context.Context, id string) (*models.Memory, error) {
	var m models.Memory
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}
	return &m, nil
}

func (s *MemoryService) Create(ctx context.Context, req models.MemoryCreate) (*models.Memory, error) {
	req.Normalize()
	if req.Title == "" {
		return nil, core.Required("title")
	}
	if req.MemoryDate == "" {
		return nil, core.Required("memoryDate")
	}
	if err := validateMemoryDate(req.MemoryDate); err != nil {
		return nil, err
	}

	m := models.Memory{
		Title:       req.Title,
		Description: req.Description,
		MemoryDate:  req.MemoryDate,
		ImageURL:    req.ImageURL,
		Tags:        models.EncodeTags(req.Tags),
		IsFeatured:  req.IsFeatured,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("failed to create memory: %w", err)
	}
	return &m, nil
}

// Update applies the non-nil fields of req. An unknown id yields (nil, nil).
func (s *MemoryService) Update(ctx context.Context, req models.MemoryUpdate) (*models.Memory, error) {
	req.Normalize()
	if req.ID == "" {
		return nil, ErrIDRequired
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if *req.Title == "" {
			return nil, core.Required("title")
		}
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.MemoryDate != nil {
		if err := validateMemoryDate(*req.MemoryDate); err != nil {
			return nil, err
		}
		updates["memory_date"] = *req.MemoryDate
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Tags != nil {
		updates["tags"] = models.EncodeTags(*req.Tags)
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	updates["updated_at"] = time.Now()

	res := s.db.WithContext(ctx).Model(&models.Memory{}).Where("id = ?", req.ID).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update memory: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	m, err := s.Get(ctx, req.ID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

// Delete removes a memory. Unknown ids are not an error.
func (s *MemoryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.db.WithContext(ctx).Delete(&models.Memory{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete memory: %w", err)
	}
	return nil
}

func validateMemoryDate(v string) error {
	if v == "" {
		return core.Required("memoryDate")
	}
	if _, err := time.Parse(models.MemoryDateLayout, v); err != nil {
		return core.Invalid("memoryDate", "memoryDate must be a YYYY-MM-DD date")
	}
	return nil
}
