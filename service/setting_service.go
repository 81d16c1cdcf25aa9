package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"memoryvault/core"
	"memoryvault/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingService stores feature flags as JSON values.
type SettingService struct {
	db *gorm.DB
}

func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{db: db}
}

func (s *SettingService) List(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	if err := s.db.WithContext(ctx).Order("key ASC").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

// Get returns the setting for key, or nil when it has never been set.
func (s *SettingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrKeyRequired
	}
	var settings []models.Setting
	if err := s.db.WithContext(ctx).Where("key = ?", key).Limit(1).Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	if len(settings) == 0 {
		return nil, nil
	}
	return &settings[0], nil
}

// Upsert creates or replaces the value stored under key. value must be valid JSON.
func (s *SettingService) Upsert(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrKeyRequired
	}
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return nil, core.Required("value")
	}
	if !json.Valid(value) {
		return nil, core.Invalid("value", "value must be valid JSON")
	}

	setting := models.Setting{Key: key, Value: models.JSONValue(value)}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save setting: %w", err)
	}
	return s.Get(ctx, key)
}

// Bool reads key as a boolean flag. Only a stored JSON true counts as true;
// a missing key yields def.
func (s *SettingService) Bool(ctx context.Context, key string, def bool) (bool, error) {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if setting == nil {
		return def, nil
	}
	var v interface{}
	if err := json.Unmarshal(setting.Value, &v); err != nil {
		return false, nil
	}
	b, ok := v.(bool)
	return ok && b, nil
}

func (s *SettingService) ProposalUnlocked(ctx context.Context) (bool, error) {
	return s.Bool(ctx, models.SettingProposalUnlocked, false)
}

func (s *SettingService) BackgroundMusicEnabled(ctx context.Context) (bool, error) {
	return s.Bool(ctx, models.SettingBackgroundMusicEnabled, true)
}
