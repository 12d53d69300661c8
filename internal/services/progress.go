package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/internal/repository"
)

type ProgressRecords interface {
	FindByUserAndItem(ctx context.Context, userID, itemID string) (*models.UserProgress, error)
	Insert(ctx context.Context, p *models.UserProgress) error
	Apply(ctx context.Context, id string, patch models.ProgressPatch) (*models.UserProgress, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserProgress, error)
}

// ProgressTracker records per-(user, item) progress. Any status may follow
// any other; only the started/completed timestamps are guarded.
type ProgressTracker struct {
	progress ProgressRecords
	log      logging.Logger
	now      func() time.Time
}

func NewProgressTracker(progress ProgressRecords, log logging.Logger) *ProgressTracker {
	return &ProgressTracker{
		progress: progress,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validateUpdate(u models.ProgressUpdate) error {
	switch {
	case strings.TrimSpace(u.ItemID) == "":
		return apperr.Validation("item_id is required")
	case u.ItemType == "":
		return apperr.Validation("item_type is required")
	case u.Status == "":
		return apperr.Validation("status is required")
	}
	return nil
}

// Upsert creates or updates the caller's record for u.ItemID and returns
// the stored row.
func (t *ProgressTracker) Upsert(ctx context.Context, user *models.User, u models.ProgressUpdate) (*models.UserProgress, error) {
	if err := validateUpdate(u); err != nil {
		return nil, err
	}

	existing, err := t.progress.FindByUserAndItem(ctx, user.ID, u.ItemID)
	switch {
	case err == nil:
		return t.update(ctx, existing, u)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperr.Internal("load progress", err)
	}

	created, err := t.create(ctx, user.ID, u)
	if !errors.Is(err, repository.ErrDuplicate) {
		return created, err
	}

	// Another request created the row between our lookup and insert.
	existing, err = t.progress.FindByUserAndItem(ctx, user.ID, u.ItemID)
	if err != nil {
		return nil, apperr.Internal("load progress", err)
	}
	return t.update(ctx, existing, u)
}

func (t *ProgressTracker) create(ctx context.Context, userID string, u models.ProgressUpdate) (*models.UserProgress, error) {
	now := t.now()
	row := &models.UserProgress{
		ID:                 uuid.NewString(),
		UserID:             userID,
		ItemID:             u.ItemID,
		ItemType:           u.ItemType,
		Status:             u.Status,
		ProgressPercentage: u.ProgressPercentage,
		Notes:              u.Notes,
		UpdatedAt:          now,
	}

	st := models.ParseStatus(u.Status)
	if st != models.StatusNotStarted {
		row.StartedAt = &now
	}
	if st == models.StatusCompleted {
		completed := now
		row.CompletedAt = &completed
	}

	err := t.progress.Insert(ctx, row)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, err
	}
	if err != nil {
		return nil, apperr.Internal("create progress", err)
	}
	return row, nil
}

func (t *ProgressTracker) update(ctx context.Context, existing *models.UserProgress, u models.ProgressUpdate) (*models.UserProgress, error) {
	now := t.now()
	patch := models.ProgressPatch{
		Status:             u.Status,
		ProgressPercentage: u.ProgressPercentage,
		Notes:              u.Notes,
		UpdatedAt:          now,
	}

	switch models.ParseStatus(u.Status) {
	case models.StatusCompleted:
		patch.CompletedAt = &now
	case models.StatusInProgress:
		patch.StartedAt = &now
	}

	row, err := t.progress.Apply(ctx, existing.ID, patch)
	if err != nil {
		return nil, apperr.Internal("update progress", err)
	}
	return row, nil
}

// List returns every progress row for user, up to the store's page limit.
func (t *ProgressTracker) List(ctx context.Context, user *models.User) ([]models.UserProgress, error) {
	rows, err := t.progress.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("list progress", err)
	}
	return rows, nil
}
