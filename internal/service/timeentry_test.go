package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/provider"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

type fakeTimePorts struct {
	entries []domain.TimeEntry
	logged  []loggedCall
	err     error
}

type loggedCall struct {
	issueID  int64
	seconds  int64
	metadata map[string]any
}

func (f *fakeTimePorts) GetTimeEntries(context.Context, time.Time, time.Time, string) ([]domain.TimeEntry, error) {
	return f.entries, f.err
}

func (f *fakeTimePorts) LogTime(_ context.Context, issueID, seconds int64, _ string, _ time.Time, metadata map[string]any) (domain.TimeEntry, error) {
	f.logged = append(f.logged, loggedCall{issueID: issueID, seconds: seconds, metadata: metadata})

	return domain.TimeEntry{IssueID: issueID, Seconds: seconds}, f.err
}

func (f *fakeTimePorts) UpdateTimeEntry(context.Context, int64, provider.TimeEntryUpdate) error {
	return f.err
}

func (f *fakeTimePorts) DeleteTimeEntry(context.Context, int64) error {
	return f.err
}

func TestLogTimeRejectsNonPositiveHours(t *testing.T) {
	for _, caps := range []provider.Capabilities{
		{RequiresActivity: false},
		{RequiresActivity: true},
	} {
		svc := NewTimeEntry(nil, &fakeTimePorts{}, caps)

		for _, hours := range []float64{0, -1, -0.5} {
			_, err := svc.LogTime(context.Background(), 1, hours, "", time.Now(), nil)

			var valErr *trackererr.ValidationError
			require.ErrorAs(t, err, &valErr)
		}
	}
}

func TestLogTimeRequiresActivityWhenCapabilitySaysSo(t *testing.T) {
	ports := &fakeTimePorts{}
	svc := NewTimeEntry(nil, ports, provider.Capabilities{RequiresActivity: true})

	_, err := svc.LogTime(context.Background(), 1, 1, "", time.Now(), nil)
	var valErr *trackererr.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Empty(t, ports.logged, "validation must fail before any upstream call")

	_, err = svc.LogTime(context.Background(), 1, 1, "", time.Now(), map[string]any{"activity_id": 9})
	require.NoError(t, err)
	require.Len(t, ports.logged, 1)
}

func TestLogTimeRejectsUnusableActivityValues(t *testing.T) {
	ports := &fakeTimePorts{}
	svc := NewTimeEntry(nil, ports, provider.Capabilities{RequiresActivity: true})

	for _, metadata := range []map[string]any{
		{"activity_id": nil},
		{"activity_id": ""},
		{"activity_id": "  "},
		{"activity_id": float64(0)},
		{"activity_id": true},
	} {
		_, err := svc.LogTime(context.Background(), 1, 1, "", time.Now(), metadata)

		var valErr *trackererr.ValidationError
		require.ErrorAs(t, err, &valErr, "metadata %v must not pass the activity check", metadata)
	}
	assert.Empty(t, ports.logged)

	_, err := svc.LogTime(context.Background(), 1, 1, "", time.Now(), map[string]any{"activity_id": "9"})
	require.NoError(t, err)
}

func TestLogTimeAcceptsMissingActivityWhenNotRequired(t *testing.T) {
	ports := &fakeTimePorts{}
	svc := NewTimeEntry(nil, ports, provider.Capabilities{RequiresActivity: false})

	_, err := svc.LogTime(context.Background(), 1, 2, "", time.Now(), nil)
	require.NoError(t, err)
}

func TestLogTimeTruncatesHoursToSeconds(t *testing.T) {
	tests := []struct {
		hours   float64
		seconds int64
	}{
		{1.5, 5400},
		{0.0003, 1},
		{8, 28800},
		{0.25, 900},
	}

	for _, tt := range tests {
		ports := &fakeTimePorts{}
		svc := NewTimeEntry(nil, ports, provider.Capabilities{})

		entry, err := svc.LogTime(context.Background(), 7, tt.hours, "", time.Now(), nil)
		require.NoError(t, err)
		assert.Equal(t, tt.seconds, entry.Seconds, "hours=%v", tt.hours)
	}
}

func TestUpdateRejectsEmptyUpdate(t *testing.T) {
	svc := NewTimeEntry(nil, &fakeTimePorts{}, provider.Capabilities{})

	err := svc.Update(context.Background(), 1, provider.TimeEntryUpdate{})
	assert.ErrorIs(t, err, trackererr.ErrNoUpdateFields)
}

func TestUpdateRejectsNonPositiveHours(t *testing.T) {
	svc := NewTimeEntry(nil, &fakeTimePorts{}, provider.Capabilities{})

	hours := -1.0
	err := svc.Update(context.Background(), 1, provider.TimeEntryUpdate{Hours: &hours})

	var valErr *trackererr.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func day(t *testing.T, date string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)

	return parsed
}

func TestGetEntriesByDay(t *testing.T) {
	ports := &fakeTimePorts{entries: []domain.TimeEntry{
		{ID: 1, ProjectID: 10, Seconds: 3600, SpentAt: day(t, "2024-03-05")},
		{ID: 2, ProjectID: 10, Seconds: 1800, SpentAt: day(t, "2024-03-04")},
		{ID: 3, ProjectID: 20, Seconds: 5400, SpentAt: day(t, "2024-03-05")},
	}}
	svc := NewTimeEntry(ports, nil, provider.Capabilities{})

	buckets, err := svc.GetEntriesByDay(context.Background(), day(t, "2024-03-01"), day(t, "2024-03-07"), "")
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	assert.Equal(t, "2024-03-04", buckets[0].Date)
	assert.InDelta(t, 0.5, buckets[0].Hours, 1e-9)
	require.Len(t, buckets[0].Entries, 1)

	assert.Equal(t, "2024-03-05", buckets[1].Date)
	assert.InDelta(t, 2.5, buckets[1].Hours, 1e-9)
	require.Len(t, buckets[1].Entries, 2)
}

func TestGetEntriesByProjectKeepsFirstOccurrenceOrder(t *testing.T) {
	ports := &fakeTimePorts{entries: []domain.TimeEntry{
		{ID: 1, ProjectID: 20, Seconds: 3600, SpentAt: day(t, "2024-03-05")},
		{ID: 2, ProjectID: 10, Seconds: 1800, SpentAt: day(t, "2024-03-05")},
		{ID: 3, ProjectID: 20, Seconds: 1800, SpentAt: day(t, "2024-03-06")},
	}}
	svc := NewTimeEntry(ports, nil, provider.Capabilities{})

	buckets, err := svc.GetEntriesByProject(context.Background(), day(t, "2024-03-01"), day(t, "2024-03-07"), "")
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	assert.Equal(t, int64(20), buckets[0].ProjectID)
	assert.InDelta(t, 1.5, buckets[0].Hours, 1e-9)
	assert.Equal(t, int64(10), buckets[1].ProjectID)
}
