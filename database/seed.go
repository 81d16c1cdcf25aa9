package database

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"memoryvault/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultSettings are created by EnsureDefaultSettings when absent.
var DefaultSettings = map[string]any{
	models.SettingProposalUnlocked:       false,
	models.SettingBackgroundMusicEnabled: true,
}

// EnsureDefaultSettings inserts DefaultSettings without touching existing values.
func EnsureDefaultSettings(ctx context.Context, db *gorm.DB) error {
	for key, value := range DefaultSettings {
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		setting := models.Setting{Key: key, Value: models.JSONValue(raw)}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&setting).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedDevData populates the database with sample content.
// Idempotent: skips if any memory already exists.
func SeedDevData(ctx context.Context, db *gorm.DB, ownerEmail string) error {
	if err := EnsureDefaultSettings(ctx, db); err != nil {
		return err
	}

	var existing models.Memory
	err := db.WithContext(ctx).First(&existing).Error
	if err == nil {
		log.Println("Seed data already exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ownerEmail != "" {
			now := time.Now()
			owner := models.User{Email: ownerEmail, Role: models.RoleOwner, EmailVerified: &now}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&owner).Error; err != nil {
				return err
			}
		}

		desc := "Coffee that went cold because we never stopped talking."
		memories := []models.Memory{
			{Title: "First date", Description: &desc, MemoryDate: "2023-02-14", Tags: models.EncodeTags([]string{"firsts"}), IsFeatured: true},
			{Title: "Road trip to the coast", MemoryDate: "2023-07-08", Tags: models.EncodeTags([]string{"travel", "summer"})},
			{Title: "Our first apartment", MemoryDate: "2024-03-01", Tags: models.EncodeTags([]string{"home"})},
		}
		if err := tx.Create(&memories).Error; err != nil {
			return err
		}

		reasons := []models.Reason{
			{Content: "The way you laugh at your own jokes before the punchline.", IsActive: true},
			{Content: "You always save me the last bite.", IsActive: true},
			{Content: "You make ordinary Tuesdays feel like holidays.", IsActive: true},
		}
		if err := tx.Create(&reasons).Error; err != nil {
			return err
		}

		event := models.Event{Title: "Our anniversary", TargetDate: nextAnniversary(time.Now(), time.February, 14)}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		log.Printf("Seeded %d memories, %d reasons and 1 event", len(memories), len(reasons))
		return nil
	})
}

func nextAnniversary(now time.Time, month time.Month, day int) time.Time {
	t := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
	if !t.After(now) {
		t = t.AddDate(1, 0, 0)
	}
	return t
}
