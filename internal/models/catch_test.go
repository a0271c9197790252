package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatch(t *testing.T) {
	before := time.Now().UTC()
	c := NewCatch("pike")
	after := time.Now().UTC()

	require.NotEmpty(t, c.ID)
	assert.Equal(t, "pike", c.Species)
	assert.Equal(t, SyncStatusNone, c.SyncStatus)
	assert.True(t, c.CapturedAt.Equal(c.UpdatedAt))
	assert.False(t, c.CapturedAt.Before(before))
	assert.False(t, c.CapturedAt.After(after))

	c2 := NewCatch("pike")
	assert.NotEqual(t, c.ID, c2.ID)
}

func TestRemoteKey(t *testing.T) {
	c := &Catch{ID: "c1"}
	assert.Equal(t, "alice_c1", c.RemoteKey("alice"))
}

func TestNeedsSync(t *testing.T) {
	tests := []struct {
		status SyncStatus
		want   bool
	}{
		{SyncStatusNone, true},
		{SyncStatusPending, true},
		{SyncStatusFailed, true},
		{SyncStatusSyncing, false},
		{SyncStatusSynced, false},
	}
	for _, tt := range tests {
		c := &Catch{SyncStatus: tt.status}
		assert.Equal(t, tt.want, c.NeedsSync(), "status %q", tt.status)
	}
}

func TestHasLocation(t *testing.T) {
	assert.False(t, (&Catch{}).HasLocation(), "null island means no location")
	assert.True(t, (&Catch{Latitude: 56.95, Longitude: 24.1}).HasLocation())
	assert.True(t, (&Catch{Latitude: 0, Longitude: 24.1}).HasLocation())
}
