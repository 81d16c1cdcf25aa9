package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memoryvault/core"
	"memoryvault/models"

	"gorm.io/gorm"
)

// targetDateLayouts are tried in order. Values without an offset are read as UTC.
var targetDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// EventService handles countdown events
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// List returns all events, soonest first.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := s.db.WithContext(ctx).Order("target_date ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Next returns the first event in target order, or nil when there are none.
func (s *EventService) Next(ctx context.Context) (*models.Event, error) {
	var events []models.Event
	if err := s.db.WithContext(ctx).Order("target_date ASC").Limit(1).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to load next event: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (s *EventService) Create(ctx context.Context, req models.EventCreate) (*models.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, core.Required("title")
	}
	target, err := ParseTargetDate(req.TargetDate)
	if err != nil {
		return nil, err
	}

	e := models.Event{Title: title, TargetDate: target}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &e, nil
}

// Delete removes an event. Unknown ids are not an error.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ParseTargetDate accepts RFC 3339, HTML datetime-local and plain dates.
func ParseTargetDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, core.Required("targetDate")
	}
	for _, layout := range targetDateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, core.Invalid("targetDate", "targetDate must be a date or date-time")
}

// TimeLeft is the countdown breakdown shown for an event.
type TimeLeft struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Passed  bool `json:"passed"`
}

// Countdown splits the time until target. Past targets yield all zeros with Passed set.
func Countdown(now, target time.Time) TimeLeft {
	d := target.Sub(now)
	if d <= 0 {
		return TimeLeft{Passed: true}
	}
	total := int(d / time.Second)
	return TimeLeft{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}
