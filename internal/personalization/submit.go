package personalization

import (
	"context"
	"errors"
	"fmt"
	"log"

	"site-crm-backend/internal/models"
	"site-crm-backend/internal/status"
	"site-crm-backend/internal/upload"
)

// ErrFilesConfirmationRequired is returned when nothing is attached and the
// submitter has not confirmed that this is intended.
var ErrFilesConfirmationRequired = errors.New("no files attached: confirm to continue without files")

const (
	ConfirmationPath = "/confirmacao"

	logoFolder        = "logos"
	testimonialFolder = "depoimentos"
	mediaFolder       = "midias"
)

type Store interface {
	CreatePersonalization(ctx context.Context, p *models.SitePersonalization) (*models.SitePersonalization, error)
	CreateProject(ctx context.Context, p *models.Project) (*models.Project, error)
}

type Uploader interface {
	Validate(file upload.File) error
	Upload(ctx context.Context, file upload.File, folder string, progress upload.ProgressFunc) (models.ObjectRef, error)
}

type Result struct {
	Personalization *models.SitePersonalization `json:"personalization"`
	Project         *models.Project             `json:"project,omitempty"`
	Redirect        string                      `json:"redirect,omitempty"`
}

type Submitter struct {
	store     Store
	uploader  Uploader
	validator *Validator
}

func NewSubmitter(store Store, uploader Uploader) *Submitter {
	return &Submitter{store: store, uploader: uploader, validator: NewValidator()}
}

// Submit validates, uploads the files one after another, stores the
// personalization and then creates its project. Nothing is rolled back: a
// failed project insert leaves the personalization in place and the
// returned Result still carries it.
func (s *Submitter) Submit(ctx context.Context, form Form, files Attachments) (*Result, error) {
	return s.SubmitWithProgress(ctx, form, files, nil)
}

// SubmitWithProgress is Submit reporting the cumulative upload progress of
// all attachments together, in percent.
func (s *Submitter) SubmitWithProgress(ctx context.Context, form Form, files Attachments, progress upload.ProgressFunc) (*Result, error) {
	form.Normalize()
	if err := s.validator.Validate(form); err != nil {
		return nil, err
	}
	if files.Empty() && !form.ConfirmNoFiles {
		return nil, ErrFilesConfirmationRequired
	}
	if s.store == nil {
		return nil, models.ErrGatewayNotReady
	}
	// Every size is checked before anything is stored.
	all := files.Files()
	for _, f := range all {
		if err := s.uploader.Validate(f); err != nil {
			return nil, err
		}
	}

	tracker := newProgressTracker(len(all), progress)

	var logo *models.ObjectRef
	if files.Logo != nil {
		ref, err := s.uploader.Upload(ctx, *files.Logo, logoFolder, tracker.next())
		if err != nil {
			return nil, err
		}
		logo = &ref
	}

	testimonials := make([]models.ObjectRef, 0, len(files.Testimonials))
	for _, f := range files.Testimonials {
		ref, err := s.uploader.Upload(ctx, f, testimonialFolder, tracker.next())
		if err != nil {
			return nil, err
		}
		testimonials = append(testimonials, ref)
	}

	media := make([]models.MediaRef, 0, len(files.Media))
	for _, m := range files.Media {
		ref, err := s.uploader.Upload(ctx, m.File, mediaFolder, tracker.next())
		if err != nil {
			return nil, err
		}
		media = append(media, models.MediaRef{Ref: ref, Caption: m.Caption})
	}

	personalization, err := s.store.CreatePersonalization(ctx, form.Record(logo, testimonials, media))
	if err != nil {
		return nil, fmt.Errorf("failed to save personalization: %w", err)
	}
	log.Printf("[Personalization] Saved %s for %q (%d files)",
		personalization.ID, personalization.OfficeName, len(testimonials)+len(media)+boolToInt(logo != nil))

	result := &Result{Personalization: personalization}
	personalizationID := personalization.ID
	project, err := s.store.CreateProject(ctx, &models.Project{
		ClientName:        form.OfficeName,
		ResponsibleName:   form.ResponsibleName,
		Template:          form.Model,
		Status:            status.Default(),
		ClientType:        models.ClientTypeEndClient,
		PersonalizationID: &personalizationID,
	})
	if err != nil {
		log.Printf("[Personalization] %s saved without a project: %v", personalization.ID, err)
		return result, fmt.Errorf("failed to create project for personalization %s: %w", personalization.ID, err)
	}

	result.Project = project
	result.Redirect = ConfirmationPath
	return result, nil
}

// progressTracker folds per-file percentages into one cumulative figure.
// Each file weighs the same and the reported value never goes down.
type progressTracker struct {
	total    int
	index    int
	reported int
	report   upload.ProgressFunc
}

func newProgressTracker(total int, report upload.ProgressFunc) *progressTracker {
	return &progressTracker{total: total, index: -1, reported: -1, report: report}
}

// next returns the callback for the following file.
func (p *progressTracker) next() upload.ProgressFunc {
	p.index++
	if p.report == nil {
		return nil
	}
	index := p.index
	return func(percent int) {
		overall := (index*100 + percent) / p.total
		if overall > p.reported {
			p.reported = overall
			p.report(overall)
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
