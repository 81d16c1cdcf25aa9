package models

import "time"

// Known setting keys read by the home page.
const (
	SettingProposalUnlocked       = "proposal_unlocked"
	SettingBackgroundMusicEnabled = "background_music_enabled"
)

// Setting stores a feature flag or other small value as arbitrary JSON.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     JSONValue `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
