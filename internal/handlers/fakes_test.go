package handlers_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"site-crm-backend/internal/models"
)

// memStore is an in-memory database gateway.
type memStore struct {
	mu               sync.Mutex
	seq              int
	projects         map[string]models.Project
	customizations   map[string]models.ProjectCustomization
	personalizations map[string]models.SitePersonalization
	templates        map[string]models.ModelTemplate

	createProjectErr error
}

func newMemStore() *memStore {
	return &memStore{
		projects:         map[string]models.Project{},
		customizations:   map[string]models.ProjectCustomization{},
		personalizations: map[string]models.SitePersonalization{},
		templates:        map[string]models.ModelTemplate{},
	}
}

func (s *memStore) nextID() string {
	s.seq++
	return uuid.NewString()
}

// addProject seeds a project created minutesAgo minutes before a fixed
// reference time.
func (s *memStore) addProject(id, client, st string, minutesAgo int) models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.Project{
		ID:         id,
		ClientName: client,
		Status:     st,
		ClientType: models.ClientTypeEndClient,
		CreatedAt:  time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC).Add(-time.Duration(minutesAgo) * time.Minute),
	}
	s.projects[id] = p
	return p
}

func (s *memStore) status(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects[id].Status
}

func (s *memStore) ListProjects(_ context.Context, f models.ProjectFilter) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Project{}
	for _, p := range s.projects {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Responsible != "" && !strings.Contains(strings.ToLower(p.ResponsibleName), strings.ToLower(f.Responsible)) {
			continue
		}
		if f.Domain != "" && !strings.Contains(strings.ToLower(p.Domain), strings.ToLower(f.Domain)) {
			continue
		}
		if f.From != nil && p.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && p.CreatedAt.After(*f.To) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) GetProject(_ context.Context, id string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *memStore) CreateProject(_ context.Context, p *models.Project) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createProjectErr != nil {
		return nil, s.createProjectErr
	}
	created := *p
	created.ID = s.nextID()
	created.CreatedAt = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Minute)
	s.projects[created.ID] = created
	return &created, nil
}

func (s *memStore) UpdateProject(_ context.Context, p *models.Project) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return nil, models.ErrNotFound
	}
	s.projects[p.ID] = *p
	updated := *p
	return &updated, nil
}

func (s *memStore) UpdateProjectStatus(_ context.Context, id, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return models.ErrNotFound
	}
	if p.Status != from {
		return models.ErrStatusConflict
	}
	p.Status = to
	s.projects[id] = p
	return nil
}

func (s *memStore) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *memStore) CountProjects(_ context.Context, st string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.projects {
		if st == "" || p.Status == st {
			n++
		}
	}
	return n, nil
}

func (s *memStore) ListCustomizations(_ context.Context, projectID string) ([]models.ProjectCustomization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ProjectCustomization{}
	for _, c := range s.customizations {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) CreateCustomization(_ context.Context, c *models.ProjectCustomization) (*models.ProjectCustomization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *c
	created.ID = s.nextID()
	s.customizations[created.ID] = created
	return &created, nil
}

func (s *memStore) UpdateCustomizationStatus(_ context.Context, id, st string, completedAt *time.Time) (*models.ProjectCustomization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customizations[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c.Status = st
	if completedAt != nil && c.CompletedAt == nil {
		c.CompletedAt = completedAt
	}
	s.customizations[id] = c
	return &c, nil
}

func (s *memStore) DeleteCustomization(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customizations[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.customizations, id)
	return nil
}

func (s *memStore) DeleteCustomizationsByProject(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.customizations {
		if c.ProjectID == projectID {
			delete(s.customizations, id)
		}
	}
	return nil
}

func (s *memStore) CreatePersonalization(_ context.Context, p *models.SitePersonalization) (*models.SitePersonalization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *p
	created.ID = s.nextID()
	s.personalizations[created.ID] = created
	return &created, nil
}

func (s *memStore) GetPersonalization(_ context.Context, id string) (*models.SitePersonalization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.personalizations[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *memStore) ListTemplates(_ context.Context) ([]models.ModelTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ModelTemplate{}
	for _, t := range s.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetTemplate(_ context.Context, id string) (*models.ModelTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (s *memStore) CreateTemplate(_ context.Context, t *models.ModelTemplate) (*models.ModelTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *t
	if created.ID == "" {
		created.ID = s.nextID()
	}
	s.templates[created.ID] = created
	return &created, nil
}

func (s *memStore) UpdateTemplate(_ context.Context, t *models.ModelTemplate) (*models.ModelTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[t.ID]; !ok {
		return nil, models.ErrNotFound
	}
	s.templates[t.ID] = *t
	updated := *t
	return &updated, nil
}

func (s *memStore) DeleteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.templates, id)
	return nil
}

// memBucket is an object store that records uploaded paths.
type memBucket struct {
	mu    sync.Mutex
	paths []string
}

func (b *memBucket) Upload(_ context.Context, path string, _ []byte, _ string) (models.ObjectRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths = append(b.paths, path)
	return models.ObjectRef(path), nil
}

func (b *memBucket) CreateSignedURL(path string, _ time.Duration) (string, error) {
	return "https://files.test/signed/" + path, nil
}

func (b *memBucket) Probe(_ context.Context, path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.paths {
		if p == path {
			return true
		}
	}
	return false
}
