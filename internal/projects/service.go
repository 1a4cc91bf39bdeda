// Package projects holds the project list, its filters and CRUD.
package projects

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"site-crm-backend/internal/models"
	"site-crm-backend/internal/status"
)

// Store is the part of the database gateway the project service needs.
type Store interface {
	ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	DeleteCustomizationsByProject(ctx context.Context, projectID string) error
	CountProjects(ctx context.Context, status string) (int, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// List runs the server-side query and then narrows the rows by the
// free-text search. On error the result is empty, never stale.
func (s *Service) List(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	if s.store == nil {
		return []models.Project{}, models.ErrGatewayNotReady
	}

	rows, err := s.store.ListProjects(ctx, f)
	if err != nil {
		return []models.Project{}, fmt.Errorf("failed to list projects: %w", err)
	}
	return ApplySearch(rows, f.Search), nil
}

// ApplySearch keeps rows whose client name, template or responsible name
// contains term, ignoring case.
func ApplySearch(rows []models.Project, term string) []models.Project {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}

	out := make([]models.Project, 0, len(rows))
	for _, p := range rows {
		if matchesSearch(p, term) {
			out = append(out, p)
		}
	}
	return out
}

func matchesSearch(p models.Project, lowered string) bool {
	return strings.Contains(strings.ToLower(p.ClientName), lowered) ||
		strings.Contains(strings.ToLower(p.Template), lowered) ||
		strings.Contains(strings.ToLower(p.ResponsibleName), lowered)
}

// Matches evaluates the whole filter against one row, the same way the
// server query plus ApplySearch would.
func Matches(p models.Project, f models.ProjectFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Responsible != "" && !containsFold(p.ResponsibleName, f.Responsible) {
		return false
	}
	if f.Domain != "" && !containsFold(p.Domain, f.Domain) {
		return false
	}
	if f.From != nil && p.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && p.CreatedAt.After(*f.To) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" && !matchesSearch(p, term) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (s *Service) Get(ctx context.Context, id string) (*models.Project, error) {
	if s.store == nil {
		return nil, models.ErrGatewayNotReady
	}
	return s.store.GetProject(ctx, id)
}

func (s *Service) Create(ctx context.Context, req models.ProjectRequest) (*models.Project, error) {
	if s.store == nil {
		return nil, models.ErrGatewayNotReady
	}

	p := fromRequest(req)
	if p.Status == "" {
		p.Status = status.Default()
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	created, err := s.store.CreateProject(ctx, p)
	if err != nil {
		return nil, err
	}
	log.Printf("[Projects] Created %s (%s)", created.ID, created.ClientName)
	return created, nil
}

// Update rewrites the editable fields of an existing project. Status is
// changed through the board only.
func (s *Service) Update(ctx context.Context, id string, req models.ProjectRequest) (*models.Project, error) {
	if s.store == nil {
		return nil, models.ErrGatewayNotReady
	}

	existing, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	p := fromRequest(req)
	p.ID = existing.ID
	p.Status = existing.Status
	p.PersonalizationID = existing.PersonalizationID
	p.CreatedAt = existing.CreatedAt
	if err := validate(p); err != nil {
		return nil, err
	}

	return s.store.UpdateProject(ctx, p)
}

// Delete removes the project's customizations and then the project. The two
// steps are not atomic; a failed project delete leaves the customizations
// gone.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return models.ErrGatewayNotReady
	}

	if err := s.store.DeleteCustomizationsByProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customizations of project %s: %w", id, err)
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Printf("[Projects] Customizations of %s were deleted but the project delete failed: %v", id, err)
		}
		return err
	}

	log.Printf("[Projects] Deleted %s", id)
	return nil
}

func fromRequest(req models.ProjectRequest) *models.Project {
	return &models.Project{
		ClientName:      strings.TrimSpace(req.ClientName),
		Template:        strings.TrimSpace(req.Template),
		ResponsibleName: strings.TrimSpace(req.ResponsibleName),
		Domain:          strings.TrimSpace(req.Domain),
		ClientType:      strings.TrimSpace(req.ClientType),
		PartnerLink:     strings.TrimSpace(req.PartnerLink),
		BlasterLink:     strings.TrimSpace(req.BlasterLink),
		Status:          strings.TrimSpace(req.Status),
	}
}

func validate(p *models.Project) error {
	fields := map[string]string{}
	if p.ClientName == "" {
		fields["client_name"] = "client name is required"
	}
	switch p.ClientType {
	case "", models.ClientTypePartner, models.ClientTypeEndClient:
	default:
		fields["client_type"] = fmt.Sprintf("client type must be %q or %q", models.ClientTypePartner, models.ClientTypeEndClient)
	}
	if !status.IsPipeline(p.Status) && p.Status != status.InCustomization {
		fields["status"] = fmt.Sprintf("unknown status %q", p.Status)
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}
