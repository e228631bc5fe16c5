// Package service holds the time-entry domain rules that sit between
// the tool layer and the provider ports: fail-fast validation before
// any upstream I/O and the by-day / by-project aggregations.
package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/provider"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

// TimeEntry wraps the time-entry ports with validation and grouping.
type TimeEntry struct {
	read  provider.TimeEntryReadPort
	write provider.TimeEntryWritePort
	caps  provider.Capabilities
}

// NewTimeEntry builds the service. write may be nil for read-only
// providers; LogTime then must not be reachable through the tool
// surface.
func NewTimeEntry(read provider.TimeEntryReadPort, write provider.TimeEntryWritePort, caps provider.Capabilities) *TimeEntry {
	return &TimeEntry{read: read, write: write, caps: caps}
}

// LogTime validates and records a work log. Hours convert to seconds
// by truncation: 1.5h is exactly 5400s, 0.0003h is 1s.
func (s *TimeEntry) LogTime(ctx context.Context, issueID int64, hours float64, comment string, spentAt time.Time, metadata map[string]any) (domain.TimeEntry, error) {
	if hours <= 0 {
		return domain.TimeEntry{}, &trackererr.ValidationError{Message: "hours must be greater than zero"}
	}
	if s.caps.RequiresActivity && !hasActivity(metadata) {
		return domain.TimeEntry{}, &trackererr.ValidationError{Message: "activity_id is required by this provider; read provider://activities for valid values"}
	}

	return s.write.LogTime(ctx, issueID, int64(hours*3600), comment, spentAt, metadata)
}

// hasActivity reports whether metadata carries a usable activity id.
// A present key with a null, zero, or blank value does not count.
func hasActivity(metadata map[string]any) bool {
	switch v := metadata["activity_id"].(type) {
	case float64:
		return v != 0
	case int64:
		return v != 0
	case int:
		return v != 0
	case string:
		return strings.TrimSpace(v) != ""
	default:
		return false
	}
}

// Update validates and applies a partial time-entry update.
func (s *TimeEntry) Update(ctx context.Context, entryID int64, update provider.TimeEntryUpdate) error {
	if update.Empty() {
		return trackererr.ErrNoUpdateFields
	}
	if update.Hours != nil && *update.Hours <= 0 {
		return &trackererr.ValidationError{Message: "hours must be greater than zero"}
	}

	return s.write.UpdateTimeEntry(ctx, entryID, update)
}

// Delete removes a time entry.
func (s *TimeEntry) Delete(ctx context.Context, entryID int64) error {
	return s.write.DeleteTimeEntry(ctx, entryID)
}

// List fetches the raw entries for a window.
func (s *TimeEntry) List(ctx context.Context, from, to time.Time, userID string) ([]domain.TimeEntry, error) {
	return s.read.GetTimeEntries(ctx, from, to, userID)
}

// DayBucket aggregates the entries of one calendar day.
type DayBucket struct {
	Date    string             `json:"date"`
	Hours   float64            `json:"hours"`
	Entries []domain.TimeEntry `json:"entries"`
}

// GetEntriesByDay fetches once and groups by spent-at date. Buckets
// come back ascending by date key; lexicographic order of ISO dates
// is chronological order.
func (s *TimeEntry) GetEntriesByDay(ctx context.Context, from, to time.Time, userID string) ([]DayBucket, error) {
	entries, err := s.read.GetTimeEntries(ctx, from, to, userID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*DayBucket)
	for _, entry := range entries {
		key := entry.SpentOn()
		bucket, ok := byDay[key]
		if !ok {
			bucket = &DayBucket{Date: key}
			byDay[key] = bucket
		}
		bucket.Hours += entry.Hours()
		bucket.Entries = append(bucket.Entries, entry)
	}

	keys := make([]string, 0, len(byDay))
	for key := range byDay {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	buckets := make([]DayBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, *byDay[key])
	}

	return buckets, nil
}

// ProjectBucket aggregates the entries of one project.
type ProjectBucket struct {
	ProjectID int64              `json:"project_id"`
	Hours     float64            `json:"hours"`
	Entries   []domain.TimeEntry `json:"entries"`
}

// GetEntriesByProject fetches once and groups by the entry's project
// id. Buckets keep the insertion order of first occurrence.
func (s *TimeEntry) GetEntriesByProject(ctx context.Context, from, to time.Time, userID string) ([]ProjectBucket, error) {
	entries, err := s.read.GetTimeEntries(ctx, from, to, userID)
	if err != nil {
		return nil, err
	}

	index := make(map[int64]int)
	var buckets []ProjectBucket
	for _, entry := range entries {
		i, ok := index[entry.ProjectID]
		if !ok {
			i = len(buckets)
			index[entry.ProjectID] = i
			buckets = append(buckets, ProjectBucket{ProjectID: entry.ProjectID})
		}
		buckets[i].Hours += entry.Hours()
		buckets[i].Entries = append(buckets[i].Entries, entry)
	}

	return buckets, nil
}
