// Package templates resolves the model segment of a public form URL and
// manages the model templates.
package templates

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"site-crm-backend/internal/models"
)

// ErrCustomURLTaken means another template already uses the custom URL.
var ErrCustomURLTaken = errors.New("custom url already in use")

const DefaultModelID = "modelo-1"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Fallbacks are compiled in for forms whose model is not in the database.
var Fallbacks = []models.ModelTemplate{
	{ID: "modelo-1", Name: "Clássico", Description: "Layout tradicional com seções bem definidas"},
	{ID: "modelo-2", Name: "Moderno", Description: "Visual arrojado com destaque para imagens"},
	{ID: "modelo-3", Name: "Minimalista", Description: "Design limpo focado no conteúdo"},
}

// legacySlugs maps custom URLs used before templates lived in the database.
var legacySlugs = map[string]string{
	"classico":    "modelo-1",
	"moderno":     "modelo-2",
	"minimalista": "modelo-3",
}

type Source string

const (
	SourceCustomURL Source = "custom_url"
	SourceID        Source = "id"
	SourceFallback  Source = "fallback"
	SourceDefault   Source = "default"
)

type Resolution struct {
	Template models.ModelTemplate `json:"template"`
	Source   Source               `json:"source"`
	// NotFound is set when the segment matched nothing and the default
	// model is shown instead.
	NotFound bool `json:"not_found"`
}

type Store interface {
	ListTemplates(ctx context.Context) ([]models.ModelTemplate, error)
	GetTemplate(ctx context.Context, id string) (*models.ModelTemplate, error)
	CreateTemplate(ctx context.Context, t *models.ModelTemplate) (*models.ModelTemplate, error)
	UpdateTemplate(ctx context.Context, t *models.ModelTemplate) (*models.ModelTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
}

type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Resolve never fails: custom_url, then id, then the compiled-in list and
// its legacy slugs, then the default model flagged as not found.
func (r *Registry) Resolve(ctx context.Context, segment string) *Resolution {
	segment = strings.TrimSpace(segment)

	if r.store != nil && segment != "" {
		all, err := r.store.ListTemplates(ctx)
		if err != nil {
			log.Printf("[Templates] Failed to load templates, using fallbacks: %v", err)
		}
		for _, t := range all {
			if t.CustomURL != "" && t.CustomURL == segment {
				return &Resolution{Template: t, Source: SourceCustomURL}
			}
		}
		for _, t := range all {
			if t.ID == segment {
				return &Resolution{Template: t, Source: SourceID}
			}
		}
	}

	if t, ok := fallback(segment); ok {
		return &Resolution{Template: t, Source: SourceFallback}
	}
	if id, ok := legacySlugs[strings.ToLower(segment)]; ok {
		t, _ := fallback(id)
		return &Resolution{Template: t, Source: SourceFallback}
	}

	t, _ := fallback(DefaultModelID)
	return &Resolution{Template: t, Source: SourceDefault, NotFound: true}
}

func fallback(id string) (models.ModelTemplate, bool) {
	for _, t := range Fallbacks {
		if t.ID == id {
			return t, true
		}
	}
	return models.ModelTemplate{}, false
}

func (r *Registry) List(ctx context.Context) ([]models.ModelTemplate, error) {
	if r.store == nil {
		return nil, models.ErrGatewayNotReady
	}
	return r.store.ListTemplates(ctx)
}

func (r *Registry) Get(ctx context.Context, id string) (*models.ModelTemplate, error) {
	if r.store == nil {
		return nil, models.ErrGatewayNotReady
	}
	return r.store.GetTemplate(ctx, id)
}

// CheckCustomURL scans every template for customURL, skipping excludeID.
// The check is advisory; two concurrent saves can still both pass.
func (r *Registry) CheckCustomURL(ctx context.Context, customURL, excludeID string) error {
	if r.store == nil {
		return models.ErrGatewayNotReady
	}
	customURL = NormalizeSlug(customURL)
	if customURL == "" {
		return nil
	}
	if !slugPattern.MatchString(customURL) {
		return models.NewValidationError("custom_url", "custom url may only contain lowercase letters, numbers and hyphens")
	}

	all, err := r.store.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("failed to check custom url: %w", err)
	}
	for _, t := range all {
		if t.ID != excludeID && t.CustomURL == customURL {
			return ErrCustomURLTaken
		}
	}
	return nil
}

func (r *Registry) Create(ctx context.Context, req models.TemplateRequest) (*models.ModelTemplate, error) {
	t, err := r.prepare(ctx, "", req)
	if err != nil {
		return nil, err
	}
	created, err := r.store.CreateTemplate(ctx, t)
	if err != nil {
		return nil, err
	}
	log.Printf("[Templates] Created %s (%s)", created.ID, created.Slug())
	return created, nil
}

func (r *Registry) Update(ctx context.Context, id string, req models.TemplateRequest) (*models.ModelTemplate, error) {
	t, err := r.prepare(ctx, id, req)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return r.store.UpdateTemplate(ctx, t)
}

func (r *Registry) Delete(ctx context.Context, id string) error {
	if r.store == nil {
		return models.ErrGatewayNotReady
	}
	return r.store.DeleteTemplate(ctx, id)
}

func (r *Registry) prepare(ctx context.Context, id string, req models.TemplateRequest) (*models.ModelTemplate, error) {
	if r.store == nil {
		return nil, models.ErrGatewayNotReady
	}
	t := &models.ModelTemplate{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		CustomURL:   NormalizeSlug(req.CustomURL),
	}
	if t.Name == "" {
		return nil, models.NewValidationError("name", "name is required")
	}
	if err := r.CheckCustomURL(ctx, t.CustomURL, id); err != nil {
		return nil, err
	}
	return t, nil
}

// NormalizeSlug trims and lowercases a custom URL.
func NormalizeSlug(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), "/"))
}

// ShareURL is the public form link for t.
func ShareURL(baseURL string, t models.ModelTemplate) string {
	return strings.TrimSuffix(baseURL, "/") + "/formulario/" + t.Slug()
}
