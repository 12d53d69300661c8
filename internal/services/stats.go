package services

import (
	"context"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/models"
)

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type StatsService struct {
	topics   Counter
	projects Counter
	progress ProgressRecords
}

func NewStatsService(topics, projects Counter, progress ProgressRecords) *StatsService {
	return &StatsService{topics: topics, projects: projects, progress: progress}
}

// ForUser counts the catalog and the user's completed and in-progress items.
func (s *StatsService) ForUser(ctx context.Context, user *models.User) (*models.Stats, error) {
	rows, err := s.progress.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("list progress", err)
	}

	var stats models.Stats
	if stats.TotalTopics, err = s.topics.Count(ctx); err != nil {
		return nil, apperr.Internal("count topics", err)
	}
	if stats.TotalProjects, err = s.projects.Count(ctx); err != nil {
		return nil, apperr.Internal("count projects", err)
	}

	for i := range rows {
		switch rows[i].State() {
		case models.StatusCompleted:
			if rows[i].ItemType == models.ItemTopic {
				stats.CompletedTopics++
			} else if rows[i].ItemType == models.ItemProject {
				stats.CompletedProjects++
			}
		case models.StatusInProgress:
			if rows[i].ItemType == models.ItemTopic {
				stats.InProgressTopics++
			} else if rows[i].ItemType == models.ItemProject {
				stats.InProgressProjects++
			}
		}
	}
	stats.TotalCompleted = stats.CompletedTopics + stats.CompletedProjects
	stats.TotalInProgress = stats.InProgressTopics + stats.InProgressProjects
	return &stats, nil
}
