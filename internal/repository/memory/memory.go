// Package memory holds in-process implementations of the repositories with
// the same uniqueness rules as the Mongo indexes. Safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/internal/repository"
)

type Users struct {
	mu   sync.RWMutex
	byID map[string]models.User
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]models.User)}
}

func (u *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, user := range u.byID {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u *Users) FindByID(_ context.Context, id string) (*models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (u *Users) Insert(_ context.Context, user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byID[user.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range u.byID {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	u.byID[user.ID] = *user
	return nil
}

// Delete removes a user. Only tests use it, to produce orphaned sessions.
func (u *Users) Delete(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.byID, id)
}

func (u *Users) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.byID)
}

type Sessions struct {
	mu      sync.RWMutex
	byToken map[string]models.Session
	deletes int
}

func NewSessions() *Sessions {
	return &Sessions{byToken: make(map[string]models.Session)}
}

func (s *Sessions) Insert(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byToken[session.SessionToken]; ok {
		return repository.ErrDuplicate
	}
	s.byToken[session.SessionToken] = *session
	return nil
}

func (s *Sessions) FindByToken(_ context.Context, token string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byToken[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (s *Sessions) DeleteByToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	delete(s.byToken, token)
	return nil
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byToken)
}

// Deletes counts delete calls, including ones that matched nothing.
func (s *Sessions) Deletes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deletes
}

type Progress struct {
	mu   sync.RWMutex
	byID map[string]models.UserProgress
}

func NewProgress() *Progress {
	return &Progress{byID: make(map[string]models.UserProgress)}
}

func (p *Progress) FindByUserAndItem(_ context.Context, userID, itemID string) (*models.UserProgress, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, row := range p.byID {
		if row.UserID == userID && row.ItemID == itemID {
			found := row
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (p *Progress) Insert(_ context.Context, row *models.UserProgress) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.byID {
		if existing.UserID == row.UserID && existing.ItemID == row.ItemID {
			return repository.ErrDuplicate
		}
	}
	p.byID[row.ID] = *row
	return nil
}

func (p *Progress) Apply(_ context.Context, id string, patch models.ProgressPatch) (*models.UserProgress, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	row, ok := p.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	row.Status = patch.Status
	row.ProgressPercentage = patch.ProgressPercentage
	row.Notes = patch.Notes
	row.UpdatedAt = patch.UpdatedAt
	if patch.StartedAt != nil && row.StartedAt == nil {
		t := *patch.StartedAt
		row.StartedAt = &t
	}
	if patch.CompletedAt != nil && row.CompletedAt == nil {
		t := *patch.CompletedAt
		row.CompletedAt = &t
	}
	p.byID[id] = row
	return &row, nil
}

func (p *Progress) ListByUser(_ context.Context, userID string) ([]models.UserProgress, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rows := []models.UserProgress{}
	for _, row := range p.byID {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (p *Progress) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byID)
}

type Topics struct {
	mu   sync.RWMutex
	byID map[string]models.Topic
}

func NewTopics() *Topics {
	return &Topics{byID: make(map[string]models.Topic)}
}

func (t *Topics) List(_ context.Context, f models.CatalogFilter) ([]models.Topic, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := []models.Topic{}
	for _, topic := range t.byID {
		if matches(f, topic.Difficulty, topic.CareerPaths) {
			out = append(out, topic)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *Topics) Search(_ context.Context, q string, limit int64) ([]models.Topic, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := []models.Topic{}
	for _, topic := range t.byID {
		if int64(len(out)) >= limit {
			break
		}
		if containsFold(topic.Title, q) || containsFold(topic.Description, q) {
			out = append(out, topic)
		}
	}
	return out, nil
}

func (t *Topics) Get(_ context.Context, id string) (*models.Topic, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	topic, ok := t.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &topic, nil
}

func (t *Topics) Insert(_ context.Context, topic *models.Topic) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[topic.ID]; ok {
		return repository.ErrDuplicate
	}
	t.byID[topic.ID] = *topic
	return nil
}

func (t *Topics) Replace(_ context.Context, topic *models.Topic) (*models.Topic, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[topic.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	t.byID[topic.ID] = *topic
	out := *topic
	return &out, nil
}

func (t *Topics) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.byID, id)
	return nil
}

func (t *Topics) Count(_ context.Context) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int64(len(t.byID)), nil
}

func (t *Topics) DeleteAll(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byID = make(map[string]models.Topic)
	return nil
}

type Projects struct {
	mu   sync.RWMutex
	byID map[string]models.Project
}

func NewProjects() *Projects {
	return &Projects{byID: make(map[string]models.Project)}
}

func (p *Projects) List(_ context.Context, f models.CatalogFilter) ([]models.Project, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := []models.Project{}
	for _, project := range p.byID {
		if matches(f, project.Difficulty, project.CareerPaths) {
			out = append(out, project)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p *Projects) Search(_ context.Context, q string, limit int64) ([]models.Project, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := []models.Project{}
	for _, project := range p.byID {
		if int64(len(out)) >= limit {
			break
		}
		if containsFold(project.Title, q) || containsFold(project.Description, q) {
			out = append(out, project)
		}
	}
	return out, nil
}

func (p *Projects) Get(_ context.Context, id string) (*models.Project, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	project, ok := p.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &project, nil
}

func (p *Projects) Insert(_ context.Context, project *models.Project) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byID[project.ID]; ok {
		return repository.ErrDuplicate
	}
	p.byID[project.ID] = *project
	return nil
}

func (p *Projects) Replace(_ context.Context, project *models.Project) (*models.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byID[project.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	p.byID[project.ID] = *project
	out := *project
	return &out, nil
}

func (p *Projects) Delete(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(p.byID, id)
	return nil
}

func (p *Projects) Count(_ context.Context) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int64(len(p.byID)), nil
}

func (p *Projects) DeleteAll(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byID = make(map[string]models.Project)
	return nil
}

func matches(f models.CatalogFilter, difficulty string, careerPaths []string) bool {
	if f.Difficulty != "" && f.Difficulty != difficulty {
		return false
	}
	if f.CareerPath == "" {
		return true
	}
	for _, p := range careerPaths {
		if p == f.CareerPath {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
