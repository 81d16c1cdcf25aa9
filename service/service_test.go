package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"memoryvault/core"
	"memoryvault/database"
	"memoryvault/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServices(t *testing.T) *Services {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return NewServices(db)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestMemoryService_RoundTrip(t *testing.T) {
	svc := newTestServices(t).Memories
	ctx := context.Background()

	created, err := svc.Create(ctx, models.MemoryCreate{
		Title:       "Our First Trip",
		Description: strPtr("Paris"),
		MemoryDate:  "2024-05-01",
		Tags:        []string{"travel", "paris"},
		IsFeatured:  true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, "Our First Trip", got.Title)
	assert.Equal(t, "Paris", *got.Description)
	assert.Equal(t, "2024-05-01", got.MemoryDate)
	assert.Equal(t, []string{"travel", "paris"}, got.TagList())
	assert.True(t, got.IsFeatured)
}

func TestMemoryService_CreateValidation(t *testing.T) {
	svc := newTestServices(t).Memories
	ctx := context.Background()

	_, err := svc.Create(ctx, models.MemoryCreate{MemoryDate: "2024-05-01"})
	assert.EqualError(t, err, "title is required")
	_, err = svc.Create(ctx, models.MemoryCreate{Title: "x"})
	assert.EqualError(t, err, "memoryDate is required")
	_, err = svc.Create(ctx, models.MemoryCreate{Title: "x", MemoryDate: "05/01/2024"})
	assert.ErrorIs(t, err, core.ErrInvalidRequest)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryService_OrderedByMemoryDate(t *testing.T) {
	svc := newTestServices(t).Memories
	ctx := context.Background()
	for _, d := range []string{"2023-01-01", "2024-06-01", "2022-12-31"} {
		_, err := svc.Create(ctx, models.MemoryCreate{Title: d, MemoryDate: d})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2024-06-01", list[0].MemoryDate)
	assert.Equal(t, "2023-01-01", list[1].MemoryDate)
	assert.Equal(t, "2022-12-31", list[2].MemoryDate)
}

func TestMemoryService_PartialUpdate(t *testing.T) {
	svc := newTestServices(t).Memories
	ctx := context.Background()

	created, err := svc.Create(ctx, models.MemoryCreate{Title: "Trip", MemoryDate: "2024-05-01", Tags: []string{"a"}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, models.MemoryUpdate{ID: created.ID, IsFeatured: boolPtr(true), Tags: &[]string{"b", " ", "c"}})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Trip", updated.Title)
	assert.True(t, updated.IsFeatured)
	assert.Equal(t, []string{"b", "c"}, updated.TagList())
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = svc.Update(ctx, models.MemoryUpdate{ID: created.ID, Title: strPtr("  ")})
	assert.EqualError(t, err, "title is required")

	missing, err := svc.Update(ctx, models.MemoryUpdate{ID: "missing", Title: strPtr("x")})
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = svc.Update(ctx, models.MemoryUpdate{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestMemoryService_DeleteIdempotent(t *testing.T) {
	svc := newTestServices(t).Memories
	ctx := context.Background()
	created, err := svc.Create(ctx, models.MemoryCreate{Title: "x", MemoryDate: "2024-01-01"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, ""), ErrIDRequired)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestReasonService(t *testing.T) {
	svc := newTestServices(t).Reasons
	ctx := context.Background()

	active, err := svc.Create(ctx, models.ReasonCreate{Content: "Your laugh"})
	require.NoError(t, err)
	assert.True(t, active.IsActive)

	hidden, err := svc.Create(ctx, models.ReasonCreate{Content: "Hidden", IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, hidden.IsActive)

	_, err = svc.Create(ctx, models.ReasonCreate{Content: " "})
	assert.EqualError(t, err, "content is required")

	list, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Your laugh", list[0].Content)

	toggled, err := svc.Update(ctx, models.ReasonUpdate{ID: hidden.ID, IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
	assert.Equal(t, "Hidden", toggled.Content)

	list, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	missing, err := svc.Update(ctx, models.ReasonUpdate{ID: "missing", IsActive: boolPtr(true)})
	assert.NoError(t, err)
	assert.Nil(t, missing)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.Delete(ctx, active.ID))
	require.NoError(t, svc.Delete(ctx, active.ID))
	all, err = svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEventService_OrderAndDelete(t *testing.T) {
	svc := newTestServices(t).Events
	ctx := context.Background()

	next, err := svc.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, next)

	later, err := svc.Create(ctx, models.EventCreate{Title: "Later", TargetDate: "2031-01-01T10:00"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.EventCreate{Title: "Sooner", TargetDate: "2030-06-01"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Sooner", list[0].Title)
	assert.Equal(t, "Later", list[1].Title)

	next, err = svc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sooner", next.Title)

	require.NoError(t, svc.Delete(ctx, later.ID))
	require.NoError(t, svc.Delete(ctx, later.ID))

	_, err = svc.Create(ctx, models.EventCreate{Title: "x"})
	assert.EqualError(t, err, "targetDate is required")
	_, err = svc.Create(ctx, models.EventCreate{TargetDate: "2030-01-01"})
	assert.EqualError(t, err, "title is required")
}

func TestParseTargetDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2030-06-01T18:30:00+02:00", time.Date(2030, 6, 1, 16, 30, 0, 0, time.UTC)},
		{"2030-06-01T18:30:00Z", time.Date(2030, 6, 1, 18, 30, 0, 0, time.UTC)},
		{"2030-06-01T18:30:15", time.Date(2030, 6, 1, 18, 30, 15, 0, time.UTC)},
		{"2030-06-01T18:30", time.Date(2030, 6, 1, 18, 30, 0, 0, time.UTC)},
		{"2030-06-01", time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTargetDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
	}

	_, err := ParseTargetDate("next tuesday")
	assert.ErrorIs(t, err, core.ErrInvalidRequest)
}

func TestCountdown(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	target := now.Add(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second + 500*time.Millisecond)

	assert.Equal(t, TimeLeft{Days: 2, Hours: 3, Minutes: 4, Seconds: 5}, Countdown(now, target))
	assert.Equal(t, TimeLeft{Passed: true}, Countdown(target, now))
	assert.Equal(t, TimeLeft{Passed: true}, Countdown(now, now))
}

func TestSettingService_RoundTrip(t *testing.T) {
	svc := newTestServices(t).Settings
	ctx := context.Background()

	unlocked, err := svc.ProposalUnlocked(ctx)
	require.NoError(t, err)
	assert.False(t, unlocked)

	music, err := svc.BackgroundMusicEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, music)

	s, err := svc.Upsert(ctx, models.SettingProposalUnlocked, json.RawMessage("true"))
	require.NoError(t, err)
	assert.JSONEq(t, "true", string(s.Value))

	unlocked, err = svc.ProposalUnlocked(ctx)
	require.NoError(t, err)
	assert.True(t, unlocked)

	_, err = svc.Upsert(ctx, models.SettingProposalUnlocked, json.RawMessage("false"))
	require.NoError(t, err)
	unlocked, err = svc.ProposalUnlocked(ctx)
	require.NoError(t, err)
	assert.False(t, unlocked)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSettingService_OnlyJSONTrueCounts(t *testing.T) {
	svc := newTestServices(t).Settings
	ctx := context.Background()

	for _, raw := range []string{`"true"`, `1`, `2.5`, `{"on":true}`} {
		s, err := svc.Upsert(ctx, models.SettingProposalUnlocked, json.RawMessage(raw))
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(s.Value))
		all, err := svc.List(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, all)
		unlocked, err := svc.ProposalUnlocked(ctx)
		require.NoError(t, err)
		assert.False(t, unlocked, raw)
	}
}

func TestSettingService_Validation(t *testing.T) {
	svc := newTestServices(t).Settings
	ctx := context.Background()

	_, err := svc.Upsert(ctx, " ", json.RawMessage("true"))
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = svc.Upsert(ctx, "k", json.RawMessage("{nope"))
	assert.ErrorIs(t, err, core.ErrInvalidRequest)
	_, err = svc.Upsert(ctx, "k", nil)
	assert.EqualError(t, err, "value is required")

	missing, err := svc.Get(ctx, "never-set")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProposalService(t *testing.T) {
	svc := newTestServices(t).Proposals
	ctx := context.Background()

	p, err := svc.Respond(ctx, " YES ")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalYes, p.Response)
	assert.False(t, p.RespondedAt.IsZero())

	_, err = svc.Respond(ctx, "maybe")
	assert.ErrorIs(t, err, core.ErrInvalidRequest)
	_, err = svc.Respond(ctx, "")
	assert.EqualError(t, err, "response is required")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
