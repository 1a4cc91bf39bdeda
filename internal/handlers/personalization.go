package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/personalization"
	"site-crm-backend/internal/templates"
	"site-crm-backend/internal/upload"
)

// Multipart file fields of the public form. Captions are matched to media
// files by position.
const (
	fieldLogo         = "logo"
	fieldTestimonials = "depoimentoImagens"
	fieldMedia        = "midias"
	fieldCaptions     = "legendas"

	multipartMemory = 32 << 20
)

type PersonalizationHandler struct {
	registry  *templates.Registry
	submitter *personalization.Submitter
}

func NewPersonalizationHandler(registry *templates.Registry, submitter *personalization.Submitter) *PersonalizationHandler {
	return &PersonalizationHandler{
		registry:  registry,
		submitter: submitter,
	}
}

// GetForm godoc
// @Summary     Resolve a public form
// @Description Resolves a model identifier or custom URL to the template that brands the form. Unknown identifiers fall back to the default model with not_found set.
// @Tags        public
// @Produce     json
// @Param       modelo path string true "Custom URL, template ID or model ID"
// @Success     200 {object} models.FormTemplateResponse
// @Router      /formulario/{modelo} [get]
func (h *PersonalizationHandler) GetForm(c *gin.Context) {
	res := h.registry.Resolve(c.Request.Context(), c.Param("modelo"))
	c.JSON(http.StatusOK, models.FormTemplateResponse{
		Template: res.Template,
		Source:   string(res.Source),
		NotFound: res.NotFound,
	})
}

// Submit godoc
// @Summary     Submit a personalization
// @Description Validates the form, uploads the files one by one with retry, stores the personalization and creates its project in Recebido.
// @Description
// @Description Without any file the request is rejected with 422 unless confirmar_sem_arquivos is true.
// @Description If the project cannot be created the personalization is kept and returned with a warning.
// @Tags        public
// @Accept      multipart/form-data
// @Produce     json
// @Param       modelo path string true "Custom URL, template ID or model ID"
// @Param       officeNome formData string true "Office name"
// @Param       responsavelNome formData string true "Responsible name"
// @Param       telefone formData string true "Phone (at least 10 digits)"
// @Param       email formData string true "Email"
// @Param       endereco formData string true "Address"
// @Param       descricao formData string true "Description"
// @Param       servicos formData string true "Services"
// @Param       logo formData file false "Logo"
// @Param       depoimentoImagens formData file false "Testimonial images (multiple)"
// @Param       midias formData file false "Media files (multiple)"
// @Param       legendas formData string false "Media captions, one per media file in order"
// @Param       confirmar_sem_arquivos formData bool false "Submit without files"
// @Success     201 {object} models.PersonalizationResponse
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     413 {object} models.ErrorResponse
// @Failure     422 {object} models.FilesConfirmationResponse
// @Failure     500 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /formulario/{modelo} [post]
func (h *PersonalizationHandler) Submit(c *gin.Context) {
	if h.submitter == nil {
		databaseUnavailable(c)
		return
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	var form personalization.Form
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid form", Message: err.Error()})
		return
	}
	if form.Model == "" {
		form.Model = h.registry.Resolve(c.Request.Context(), c.Param("modelo")).Template.ID
	}

	files, err := readAttachments(c.Request.MultipartForm)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read files", Message: err.Error()})
		return
	}

	office := form.OfficeName
	result, err := h.submitter.SubmitWithProgress(c.Request.Context(), form, files, func(percent int) {
		log.Printf("[Personalization] Uploading files for %q: %d%%", office, percent)
	})
	if err != nil {
		if result != nil && result.Personalization != nil {
			c.JSON(http.StatusCreated, models.PersonalizationResponse{
				Personalization: *result.Personalization,
				Redirect:        personalization.ConfirmationPath,
				Warning:         err.Error(),
			})
			return
		}
		respondError(c, "failed to submit personalization", err)
		return
	}

	c.JSON(http.StatusCreated, models.PersonalizationResponse{
		Personalization: *result.Personalization,
		ProjectID:       result.Project.ID,
		Redirect:        result.Redirect,
	})
}

// Confirmation godoc
// @Summary     Submission confirmation
// @Tags        public
// @Produce     json
// @Success     200 {object} models.ConfirmationResponse
// @Router      /confirmacao [get]
func Confirmation(c *gin.Context) {
	c.JSON(http.StatusOK, models.ConfirmationResponse{
		Title:   "Formulário enviado",
		Message: "Recebemos suas informações. Nossa equipe entrará em contato em breve.",
	})
}

func readAttachments(form *multipart.Form) (personalization.Attachments, error) {
	var files personalization.Attachments
	if form == nil {
		return files, nil
	}

	if headers := form.File[fieldLogo]; len(headers) > 0 {
		logo, err := readFile(headers[0])
		if err != nil {
			return files, err
		}
		files.Logo = &logo
	}

	for _, fh := range form.File[fieldTestimonials] {
		f, err := readFile(fh)
		if err != nil {
			return files, err
		}
		files.Testimonials = append(files.Testimonials, f)
	}

	captions := form.Value[fieldCaptions]
	for i, fh := range form.File[fieldMedia] {
		f, err := readFile(fh)
		if err != nil {
			return files, err
		}
		m := personalization.MediaFile{File: f}
		if i < len(captions) {
			m.Caption = captions[i]
		}
		files.Media = append(files.Media, m)
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader) (upload.File, error) {
	src, err := fh.Open()
	if err != nil {
		return upload.File{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return upload.File{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return upload.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
