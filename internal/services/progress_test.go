package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/internal/repository"
	"github.com/AnshRaj112/datapath-backend/internal/repository/memory"
)

func newTracker(c *clock) (*ProgressTracker, *memory.Progress) {
	rows := memory.NewProgress()
	tracker := NewProgressTracker(rows, logging.Discard())
	tracker.now = c.now
	return tracker, rows
}

func update(status string, pct int) models.ProgressUpdate {
	return models.ProgressUpdate{
		ItemID:             "topic-1",
		ItemType:           models.ItemTopic,
		Status:             status,
		ProgressPercentage: pct,
	}
}

var learner = &models.User{ID: "u-1", Email: "a@example.com"}

func TestProgressTracker_CreateTimestamps(t *testing.T) {
	tests := []struct {
		status        string
		wantStarted   bool
		wantCompleted bool
	}{
		{status: models.StatusNotStartedValue},
		{status: models.StatusInProgressValue, wantStarted: true},
		{status: models.StatusCompletedValue, wantStarted: true, wantCompleted: true},
		{status: "paused", wantStarted: true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			c := newClock()
			tracker, _ := newTracker(c)

			row, err := tracker.Upsert(context.Background(), learner, update(tt.status, 10))
			require.NoError(t, err)

			assert.Equal(t, tt.status, row.Status)
			assert.Equal(t, c.t, row.UpdatedAt)
			assert.Equal(t, tt.wantStarted, row.StartedAt != nil)
			assert.Equal(t, tt.wantCompleted, row.CompletedAt != nil)
		})
	}
}

func TestProgressTracker_TimestampsAreWriteOnce(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	tracker, rows := newTracker(c)

	_, err := tracker.Upsert(ctx, learner, update(models.StatusNotStartedValue, 0))
	require.NoError(t, err)

	c.advance(time.Hour)
	startedAt := c.t
	row, err := tracker.Upsert(ctx, learner, update(models.StatusInProgressValue, 40))
	require.NoError(t, err)
	require.NotNil(t, row.StartedAt)
	assert.Equal(t, startedAt, *row.StartedAt)
	assert.Nil(t, row.CompletedAt)

	c.advance(time.Hour)
	completedAt := c.t
	row, err = tracker.Upsert(ctx, learner, update(models.StatusCompletedValue, 100))
	require.NoError(t, err)
	require.NotNil(t, row.CompletedAt)
	assert.Equal(t, completedAt, *row.CompletedAt)

	c.advance(time.Hour)
	row, err = tracker.Upsert(ctx, learner, update(models.StatusInProgressValue, 60))
	require.NoError(t, err)
	assert.Equal(t, startedAt, *row.StartedAt)
	assert.Equal(t, completedAt, *row.CompletedAt)
	assert.Equal(t, 60, row.ProgressPercentage)
	assert.Equal(t, c.t, row.UpdatedAt)
	assert.Equal(t, 1, rows.Len())
}

func TestProgressTracker_SkippingInProgressLeavesStartedUnset(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	tracker, _ := newTracker(c)

	_, err := tracker.Upsert(ctx, learner, update(models.StatusNotStartedValue, 0))
	require.NoError(t, err)

	row, err := tracker.Upsert(ctx, learner, update(models.StatusCompletedValue, 100))
	require.NoError(t, err)
	assert.Nil(t, row.StartedAt)
	require.NotNil(t, row.CompletedAt)

	// Completed wins the branch, so a later in_progress is the first to start it.
	c.advance(time.Minute)
	row, err = tracker.Upsert(ctx, learner, update(models.StatusInProgressValue, 50))
	require.NoError(t, err)
	require.NotNil(t, row.StartedAt)
	assert.Equal(t, c.t, *row.StartedAt)
}

func TestProgressTracker_AnyTransitionAllowed(t *testing.T) {
	ctx := context.Background()
	tracker, _ := newTracker(newClock())

	_, err := tracker.Upsert(ctx, learner, update(models.StatusCompletedValue, 100))
	require.NoError(t, err)

	row, err := tracker.Upsert(ctx, learner, models.ProgressUpdate{
		ItemID:   "topic-1",
		ItemType: models.ItemTopic,
		Status:   models.StatusNotStartedValue,
		Notes:    "starting over",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStartedValue, row.Status)
	assert.Equal(t, "starting over", row.Notes)
	assert.Equal(t, 0, row.ProgressPercentage)
	assert.NotNil(t, row.CompletedAt)
}

func TestProgressTracker_Validation(t *testing.T) {
	tracker, rows := newTracker(newClock())

	for _, u := range []models.ProgressUpdate{
		{ItemType: models.ItemTopic, Status: "completed"},
		{ItemID: "topic-1", Status: "completed"},
		{ItemID: "topic-1", ItemType: models.ItemTopic},
	} {
		_, err := tracker.Upsert(context.Background(), learner, u)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "%+v", u)
	}
	assert.Equal(t, 0, rows.Len())
}

// lateProgress hides the row from the first lookup, as if a concurrent
// request inserted it after we looked.
type lateProgress struct {
	*memory.Progress
	hide int
}

func (l *lateProgress) FindByUserAndItem(ctx context.Context, userID, itemID string) (*models.UserProgress, error) {
	if l.hide > 0 {
		l.hide--
		return nil, repository.ErrNotFound
	}
	return l.Progress.FindByUserAndItem(ctx, userID, itemID)
}

func TestProgressTracker_DuplicateCreateFallsBackToUpdate(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	rows := &lateProgress{Progress: memory.NewProgress()}
	tracker := NewProgressTracker(rows, logging.Discard())
	tracker.now = c.now

	first, err := tracker.Upsert(ctx, learner, update(models.StatusInProgressValue, 10))
	require.NoError(t, err)

	rows.hide = 1
	c.advance(time.Minute)
	row, err := tracker.Upsert(ctx, learner, update(models.StatusCompletedValue, 100))
	require.NoError(t, err)

	assert.Equal(t, first.ID, row.ID)
	assert.Equal(t, *first.StartedAt, *row.StartedAt)
	assert.Equal(t, c.t, *row.CompletedAt)
	assert.Equal(t, 1, rows.Len())
}

func TestProgressTracker_ListIsPerUser(t *testing.T) {
	ctx := context.Background()
	tracker, _ := newTracker(newClock())
	other := &models.User{ID: "u-2"}

	_, err := tracker.Upsert(ctx, learner, update(models.StatusInProgressValue, 10))
	require.NoError(t, err)
	_, err = tracker.Upsert(ctx, other, update(models.StatusCompletedValue, 100))
	require.NoError(t, err)

	rows, err := tracker.List(ctx, learner)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u-1", rows[0].UserID)

	none, err := tracker.List(ctx, &models.User{ID: "u-3"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
