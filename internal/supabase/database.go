package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"site-crm-backend/internal/database"
	"site-crm-backend/internal/models"
)

const projectColumns = `id, client_name, COALESCE(template, ''), COALESCE(responsible_name, ''),
	COALESCE(domain, ''), COALESCE(client_type, ''), COALESCE(partner_link, ''),
	COALESCE(blaster_link, ''), personalization_id, status, created_at`

const customizationColumns = `id, project_id, description, priority, status, requested_at,
	completed_at, COALESCE(notes, '')`

const personalizationColumns = `id, office_nome, responsavel_nome, telefone, email, endereco,
	COALESCE(instagram, ''), COALESCE(facebook, ''), COALESCE(linkedin, ''), COALESCE(site, ''),
	COALESCE(fonte, ''), COALESCE(paleta_cores, ''), descricao, COALESCE(slogan, ''),
	possui_planos, COALESCE(planos, ''), servicos, COALESCE(depoimentos, ''), botao_whatsapp,
	possui_mapa, COALESCE(link_mapa, ''), COALESCE(modelo, ''), logo_url, depoimento_urls,
	midia_urls, created_at`

const templateColumns = `id, name, COALESCE(description, ''), COALESCE(image_url, ''),
	COALESCE(custom_url, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// DatabaseClient talks to the Supabase Postgres instance directly.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// DB exposes the pool for the migrator.
func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

// ---- projects ----

func projectQuery(f models.ProjectFilter) *database.Query {
	q := database.Select("projects", projectColumns)
	if f.Status != "" {
		q.Eq("status", f.Status)
	}
	if f.Responsible != "" {
		q.ILike("responsible_name", f.Responsible)
	}
	if f.Domain != "" {
		q.ILike("domain", f.Domain)
	}
	if f.From != nil {
		q.Gte("created_at", *f.From)
	}
	if f.To != nil {
		q.Lte("created_at", *f.To)
	}
	return q.Order("created_at", true)
}

// ListProjects applies the server-side part of the filter. Search is left
// to the caller.
func (d *DatabaseClient) ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	query, args := projectQuery(f).Build()

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

func (d *DatabaseClient) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p, err := scanProject(d.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (d *DatabaseClient) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	created, err := scanProject(d.db.QueryRowContext(ctx, `
		INSERT INTO projects (client_name, template, responsible_name, domain, client_type,
			partner_link, blaster_link, personalization_id, status)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''),
			NULLIF($6, ''), NULLIF($7, ''), $8, $9)
		RETURNING `+projectColumns,
		p.ClientName, p.Template, p.ResponsibleName, p.Domain, p.ClientType,
		p.PartnerLink, p.BlasterLink, nullString(p.PersonalizationID), p.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return created, nil
}

// UpdateProject rewrites the editable fields. id, status and created_at are
// left alone.
func (d *DatabaseClient) UpdateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	updated, err := scanProject(d.db.QueryRowContext(ctx, `
		UPDATE projects
		SET client_name = $2, template = NULLIF($3, ''), responsible_name = NULLIF($4, ''),
			domain = NULLIF($5, ''), client_type = NULLIF($6, ''), partner_link = NULLIF($7, ''),
			blaster_link = NULLIF($8, '')
		WHERE id = $1
		RETURNING `+projectColumns,
		p.ID, p.ClientName, p.Template, p.ResponsibleName, p.Domain, p.ClientType,
		p.PartnerLink, p.BlasterLink,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return updated, nil
}

// UpdateProjectStatus is a compare-and-set on status when from is not
// empty. A missing row is ErrNotFound, a moved row is ErrStatusConflict.
func (d *DatabaseClient) UpdateProjectStatus(ctx context.Context, id, from, to string) error {
	var (
		res sql.Result
		err error
	)
	if from == "" {
		res, err = d.db.ExecContext(ctx, `UPDATE projects SET status = $2 WHERE id = $1`, id, to)
	} else {
		res, err = d.db.ExecContext(ctx,
			`UPDATE projects SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	}
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := d.GetProject(ctx, id); err != nil {
		return err
	}
	return models.ErrStatusConflict
}

func (d *DatabaseClient) DeleteProject(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountProjects runs the count-only query; an empty status counts all rows.
func (d *DatabaseClient) CountProjects(ctx context.Context, status string) (int, error) {
	q := database.Select("projects")
	if status != "" {
		q.Eq("status", status)
	}
	query, args := q.BuildCount()

	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	var personalizationID sql.NullString
	err := row.Scan(
		&p.ID, &p.ClientName, &p.Template, &p.ResponsibleName,
		&p.Domain, &p.ClientType, &p.PartnerLink,
		&p.BlasterLink, &personalizationID, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if personalizationID.Valid {
		p.PersonalizationID = &personalizationID.String
	}
	return &p, nil
}

// ---- customizations ----

func (d *DatabaseClient) ListCustomizations(ctx context.Context, projectID string) ([]models.ProjectCustomization, error) {
	query, args := database.Select("project_customizations", customizationColumns).
		Eq("project_id", projectID).
		Order("requested_at", true).
		Build()

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customizations: %w", err)
	}
	defer rows.Close()

	items := make([]models.ProjectCustomization, 0)
	for rows.Next() {
		c, err := scanCustomization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customization: %w", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list customizations: %w", err)
	}
	return items, nil
}

func (d *DatabaseClient) GetCustomization(ctx context.Context, id string) (*models.ProjectCustomization, error) {
	c, err := scanCustomization(d.db.QueryRowContext(ctx,
		`SELECT `+customizationColumns+` FROM project_customizations WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customization: %w", err)
	}
	return c, nil
}

func (d *DatabaseClient) CreateCustomization(ctx context.Context, c *models.ProjectCustomization) (*models.ProjectCustomization, error) {
	created, err := scanCustomization(d.db.QueryRowContext(ctx, `
		INSERT INTO project_customizations (project_id, description, priority, status, requested_at, notes)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING `+customizationColumns,
		c.ProjectID, c.Description, c.Priority, c.Status, c.RequestedAt, c.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create customization: %w", err)
	}
	return created, nil
}

// UpdateCustomizationStatus only fills completed_at when it is still NULL.
func (d *DatabaseClient) UpdateCustomizationStatus(ctx context.Context, id, status string, completedAt *time.Time) (*models.ProjectCustomization, error) {
	updated, err := scanCustomization(d.db.QueryRowContext(ctx, `
		UPDATE project_customizations
		SET status = $2, completed_at = COALESCE(completed_at, $3)
		WHERE id = $1
		RETURNING `+customizationColumns,
		id, status, completedAt,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update customization: %w", err)
	}
	return updated, nil
}

func (d *DatabaseClient) DeleteCustomization(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM project_customizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customization: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (d *DatabaseClient) DeleteCustomizationsByProject(ctx context.Context, projectID string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM project_customizations WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project customizations: %w", err)
	}
	return nil
}

func scanCustomization(row rowScanner) (*models.ProjectCustomization, error) {
	var c models.ProjectCustomization
	var completedAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.ProjectID, &c.Description, &c.Priority, &c.Status, &c.RequestedAt,
		&completedAt, &c.Notes,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		c.CompletedAt = &completedAt.Time
	}
	return &c, nil
}

// ---- personalizations ----

func (d *DatabaseClient) CreatePersonalization(ctx context.Context, p *models.SitePersonalization) (*models.SitePersonalization, error) {
	testimonials, err := json.Marshal(nonNilRefs(p.TestimonialRefs))
	if err != nil {
		return nil, fmt.Errorf("failed to encode testimonial refs: %w", err)
	}
	media, err := json.Marshal(nonNilMedia(p.MediaRefs))
	if err != nil {
		return nil, fmt.Errorf("failed to encode media refs: %w", err)
	}

	var logo sql.NullString
	if p.Logo != nil {
		logo = sql.NullString{String: string(*p.Logo), Valid: true}
	}

	created, err := scanPersonalization(d.db.QueryRowContext(ctx, `
		INSERT INTO site_personalizacoes (
			office_nome, responsavel_nome, telefone, email, endereco,
			instagram, facebook, linkedin, site, fonte, paleta_cores,
			descricao, slogan, possui_planos, planos, servicos, depoimentos,
			botao_whatsapp, possui_mapa, link_mapa, modelo,
			logo_url, depoimento_urls, midia_urls
		) VALUES (
			$1, $2, $3, $4, $5,
			NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''),
			$12, NULLIF($13, ''), $14, NULLIF($15, ''), $16, NULLIF($17, ''),
			$18, $19, NULLIF($20, ''), NULLIF($21, ''),
			$22, $23, $24
		)
		RETURNING `+personalizationColumns,
		p.OfficeName, p.ResponsibleName, p.Phone, p.Email, p.Address,
		p.Instagram, p.Facebook, p.Linkedin, p.Website, p.Font, p.ColorPalette,
		p.Description, p.Slogan, p.HasPlans, p.Plans, p.Services, p.Testimonials,
		p.WhatsappButton, p.HasMap, p.MapLink, p.Model,
		logo, testimonials, media,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create personalization: %w", err)
	}
	return created, nil
}

func (d *DatabaseClient) GetPersonalization(ctx context.Context, id string) (*models.SitePersonalization, error) {
	p, err := scanPersonalization(d.db.QueryRowContext(ctx,
		`SELECT `+personalizationColumns+` FROM site_personalizacoes WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get personalization: %w", err)
	}
	return p, nil
}

func scanPersonalization(row rowScanner) (*models.SitePersonalization, error) {
	var p models.SitePersonalization
	var logo sql.NullString
	var testimonials, media []byte
	err := row.Scan(
		&p.ID, &p.OfficeName, &p.ResponsibleName, &p.Phone, &p.Email, &p.Address,
		&p.Instagram, &p.Facebook, &p.Linkedin, &p.Website,
		&p.Font, &p.ColorPalette, &p.Description, &p.Slogan,
		&p.HasPlans, &p.Plans, &p.Services, &p.Testimonials, &p.WhatsappButton,
		&p.HasMap, &p.MapLink, &p.Model, &logo, &testimonials,
		&media, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if logo.Valid {
		ref := models.ObjectRef(logo.String)
		p.Logo = &ref
	}
	if err := json.Unmarshal(testimonials, &p.TestimonialRefs); err != nil {
		return nil, fmt.Errorf("failed to decode testimonial refs: %w", err)
	}
	if err := json.Unmarshal(media, &p.MediaRefs); err != nil {
		return nil, fmt.Errorf("failed to decode media refs: %w", err)
	}
	return &p, nil
}

// ---- model templates ----

func (d *DatabaseClient) ListTemplates(ctx context.Context) ([]models.ModelTemplate, error) {
	query, args := database.Select("model_templates", templateColumns).Order("created_at", true).Build()

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]models.ModelTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (d *DatabaseClient) GetTemplate(ctx context.Context, id string) (*models.ModelTemplate, error) {
	t, err := scanTemplate(d.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM model_templates WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

func (d *DatabaseClient) CreateTemplate(ctx context.Context, t *models.ModelTemplate) (*models.ModelTemplate, error) {
	created, err := scanTemplate(d.db.QueryRowContext(ctx, `
		INSERT INTO model_templates (name, description, image_url, custom_url)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
		RETURNING `+templateColumns,
		t.Name, t.Description, t.ImageURL, t.CustomURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return created, nil
}

func (d *DatabaseClient) UpdateTemplate(ctx context.Context, t *models.ModelTemplate) (*models.ModelTemplate, error) {
	updated, err := scanTemplate(d.db.QueryRowContext(ctx, `
		UPDATE model_templates
		SET name = $2, description = NULLIF($3, ''), image_url = NULLIF($4, ''),
			custom_url = NULLIF($5, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING `+templateColumns,
		t.ID, t.Name, t.Description, t.ImageURL, t.CustomURL,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return updated, nil
}

func (d *DatabaseClient) DeleteTemplate(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM model_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanTemplate(row rowScanner) (*models.ModelTemplate, error) {
	var t models.ModelTemplate
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.ImageURL, &t.CustomURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nonNilRefs(refs []models.ObjectRef) []models.ObjectRef {
	if refs == nil {
		return []models.ObjectRef{}
	}
	return refs
}

func nonNilMedia(refs []models.MediaRef) []models.MediaRef {
	if refs == nil {
		return []models.MediaRef{}
	}
	return refs
}
