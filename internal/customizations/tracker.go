// Package customizations tracks change requests made against a project
// after it was created.
package customizations

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"site-crm-backend/internal/models"
	"site-crm-backend/internal/status"
)

const minDescriptionLength = 5

type Store interface {
	ListCustomizations(ctx context.Context, projectID string) ([]models.ProjectCustomization, error)
	CreateCustomization(ctx context.Context, c *models.ProjectCustomization) (*models.ProjectCustomization, error)
	UpdateCustomizationStatus(ctx context.Context, id, status string, completedAt *time.Time) (*models.ProjectCustomization, error)
	DeleteCustomization(ctx context.Context, id string) error
}

// ProjectStore is used for the parent project side effect.
type ProjectStore interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	UpdateProjectStatus(ctx context.Context, id, from, to string) error
}

type Tracker struct {
	store    Store
	projects ProjectStore
	now      func() time.Time
}

func NewTracker(store Store, projects ProjectStore) *Tracker {
	return &Tracker{store: store, projects: projects, now: time.Now}
}

// WithClock replaces the time source used for requested_at and
// completed_at.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// List returns the project's customizations, newest request first.
func (t *Tracker) List(ctx context.Context, projectID string) ([]models.ProjectCustomization, error) {
	return t.store.ListCustomizations(ctx, projectID)
}

// Create validates and inserts a customization in Solicitado. It has no
// effect on the parent project; see Request.
func (t *Tracker) Create(ctx context.Context, projectID string, req models.CreateCustomizationRequest) (*models.ProjectCustomization, error) {
	description := strings.TrimSpace(req.Description)
	priority := strings.TrimSpace(req.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}

	fields := map[string]string{}
	if utf8.RuneCountInString(description) < minDescriptionLength {
		fields["description"] = fmt.Sprintf("description must have at least %d characters", minDescriptionLength)
	}
	if !contains(models.Priorities, priority) {
		fields["priority"] = fmt.Sprintf("priority must be one of %s", strings.Join(models.Priorities, ", "))
	}
	if len(fields) > 0 {
		return nil, &models.ValidationError{Fields: fields}
	}

	return t.store.CreateCustomization(ctx, &models.ProjectCustomization{
		ProjectID:   projectID,
		Description: description,
		Priority:    priority,
		Status:      models.CustomizationRequested,
		RequestedAt: t.now(),
		Notes:       strings.TrimSpace(req.Notes),
	})
}

type RequestResult struct {
	Customization *models.ProjectCustomization `json:"customization"`
	// ProjectStatus is the parent's status after the side effect ran.
	ProjectStatus string `json:"project_status,omitempty"`
}

// Request creates a customization and then moves the parent project to
// Em Customização unless it is already there. The two writes are separate:
// a failed project update is logged and the customization stays.
func (t *Tracker) Request(ctx context.Context, projectID string, req models.CreateCustomizationRequest) (*RequestResult, error) {
	created, err := t.Create(ctx, projectID, req)
	if err != nil {
		return nil, err
	}

	result := &RequestResult{Customization: created}
	project, err := t.projects.GetProject(ctx, projectID)
	if err != nil {
		log.Printf("[Customizations] Created %s but could not load project %s: %v", created.ID, projectID, err)
		return result, nil
	}

	result.ProjectStatus = project.Status
	if project.Status == status.InCustomization {
		return result, nil
	}

	if err := t.projects.UpdateProjectStatus(ctx, projectID, project.Status, status.InCustomization); err != nil {
		log.Printf("[Customizations] Created %s but could not move project %s to %q: %v",
			created.ID, projectID, status.InCustomization, err)
		return result, nil
	}
	result.ProjectStatus = status.InCustomization
	return result, nil
}

// UpdateStatus allows any transition. Moving to Concluído stamps
// completed_at unless it is already set.
func (t *Tracker) UpdateStatus(ctx context.Context, id, newStatus string) (*models.ProjectCustomization, error) {
	if !contains(models.CustomizationStatuses, newStatus) {
		return nil, models.NewValidationError("status",
			fmt.Sprintf("status must be one of %s", strings.Join(models.CustomizationStatuses, ", ")))
	}

	var completedAt *time.Time
	if newStatus == models.CustomizationDone {
		now := t.now()
		completedAt = &now
	}
	return t.store.UpdateCustomizationStatus(ctx, id, newStatus, completedAt)
}

func (t *Tracker) Delete(ctx context.Context, id string) error {
	return t.store.DeleteCustomization(ctx, id)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
