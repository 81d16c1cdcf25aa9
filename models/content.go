package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MemoryDateLayout is the calendar-date format used for Memory.MemoryDate.
const MemoryDateLayout = "2006-01-02"

// Memory is one entry of the timeline.
type Memory struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description *string        `json:"description"`
	MemoryDate  string         `gorm:"not null;size:10;index" json:"memoryDate"`
	ImageURL    *string        `gorm:"column:image_url" json:"imageUrl"`
	Tags        datatypes.JSON `gorm:"not null" json:"tags"`
	IsFeatured  bool           `gorm:"not null;default:false" json:"isFeatured"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// BeforeCreate GORM hook - assign ID and default tags
func (m *Memory) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if len(m.Tags) == 0 {
		m.Tags = datatypes.JSON("[]")
	}
	return nil
}

// TagList decodes the stored tags. Malformed values decode as an empty list.
func (m *Memory) TagList() []string {
	var tags []string
	if err := json.Unmarshal(m.Tags, &tags); err != nil {
		return []string{}
	}
	return tags
}

// EncodeTags converts a tag list into its stored form.
func EncodeTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return datatypes.JSON(b)
}

// MemoryCreate request payload for creating a memory
type MemoryCreate struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	MemoryDate  string   `json:"memoryDate"`
	ImageURL    *string  `json:"imageUrl"`
	Tags        []string `json:"tags"`
	IsFeatured  bool     `json:"isFeatured"`
}

// Normalize trims whitespace from input fields and drops empty tags
func (m *MemoryCreate) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.MemoryDate = strings.TrimSpace(m.MemoryDate)
	m.Tags = normalizeTags(m.Tags)
}

// MemoryUpdate request payload for updating a memory. Nil fields are left untouched.
type MemoryUpdate struct {
	ID          string    `json:"id"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	MemoryDate  *string   `json:"memoryDate"`
	ImageURL    *string   `json:"imageUrl"`
	Tags        *[]string `json:"tags"`
	IsFeatured  *bool     `json:"isFeatured"`
}

// Normalize trims whitespace from input fields
func (m *MemoryUpdate) Normalize() {
	m.ID = strings.TrimSpace(m.ID)
	if m.Title != nil {
		v := strings.TrimSpace(*m.Title)
		m.Title = &v
	}
	if m.MemoryDate != nil {
		v := strings.TrimSpace(*m.MemoryDate)
		m.MemoryDate = &v
	}
	if m.Tags != nil {
		v := normalizeTags(*m.Tags)
		m.Tags = &v
	}
}

func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Reason is a reveal-on-click card on the home page.
type Reason struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsActive  bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate GORM hook - assign ID
func (r *Reason) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ReasonCreate request payload for creating a reason. IsActive defaults to true.
type ReasonCreate struct {
	Content  string `json:"content"`
	IsActive *bool  `json:"isActive"`
}

// ReasonUpdate request payload for updating or toggling a reason
type ReasonUpdate struct {
	ID       string  `json:"id"`
	Content  *string `json:"content"`
	IsActive *bool   `json:"isActive"`
}

// Event is a countdown target.
type Event struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	TargetDate time.Time `gorm:"not null;index" json:"targetDate"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BeforeCreate GORM hook - assign ID
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// EventCreate request payload for creating an event. TargetDate is parsed by the service.
type EventCreate struct {
	Title      string `json:"title"`
	TargetDate string `json:"targetDate"`
}

// Proposal answers
const (
	ProposalYes = "yes"
	ProposalNo  = "no"
)

// ProposalResponse records one answer given in the proposal section.
type ProposalResponse struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Response    string    `gorm:"not null;size:3" json:"response"`
	RespondedAt time.Time `gorm:"not null" json:"respondedAt"`
}

// BeforeCreate GORM hook - assign ID and response time
func (p *ProposalResponse) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.RespondedAt.IsZero() {
		p.RespondedAt = time.Now()
	}
	return nil
}
