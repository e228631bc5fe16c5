package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeEntryHours(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    float64
	}{
		{name: "whole hour", seconds: 3600, want: 1},
		{name: "ninety minutes", seconds: 5400, want: 1.5},
		{name: "one second", seconds: 1, want: 1.0 / 3600},
		{name: "zero", seconds: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := TimeEntry{Seconds: tt.seconds}
			assert.InDelta(t, tt.want, entry.Hours(), 1e-12)
		})
	}
}

func TestTimeEntrySpentOn(t *testing.T) {
	entry := TimeEntry{SpentAt: time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)}
	assert.Equal(t, "2024-03-07", entry.SpentOn())
}

func TestProjectParentTree(t *testing.T) {
	root := Project{ID: 1, Name: "Platform"}
	child := Project{ID: 2, Name: "API", Parent: &root}

	assert.Equal(t, int64(1), child.Parent.ID)
	assert.Nil(t, root.Parent)
}

func TestUserCredentialAccessors(t *testing.T) {
	cred := UserCredential{
		Provider:        "redmine",
		OrgConfig:       map[string]string{"base_url": "https://redmine.example.com"},
		UserCredentials: map[string]string{"api_key": "k"},
	}

	assert.Equal(t, "https://redmine.example.com", cred.Org("base_url"))
	assert.Equal(t, "k", cred.Secret("api_key"))
	assert.Empty(t, cred.Org("missing"))
	assert.Empty(t, cred.Secret("missing"))
}
