package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"not_started", StatusNotStarted},
		{"in_progress", StatusInProgress},
		{"completed", StatusCompleted},
		{"Completed", StatusUnknown},
		{"", StatusUnknown},
		{"paused", StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.in))
		})
	}
}

func TestStatusString_RoundTrip(t *testing.T) {
	for _, s := range []Status{StatusNotStarted, StatusInProgress, StatusCompleted} {
		assert.Equal(t, s, ParseStatus(s.String()))
	}
	assert.Equal(t, "unknown", StatusUnknown.String())
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := Session{ExpiresAt: now}

	assert.False(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
	assert.True(t, s.Expired(now.Add(time.Second)))
}
