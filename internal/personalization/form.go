// Package personalization validates and stores the public site
// personalization form.
package personalization

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/upload"
)

const minPhoneDigits = 10

// Form is the submitted business data. Tags name the multipart fields.
type Form struct {
	OfficeName      string `json:"officeNome" form:"officeNome" validate:"min=2"`
	ResponsibleName string `json:"responsavelNome" form:"responsavelNome" validate:"min=2"`
	Phone           string `json:"telefone" form:"telefone" validate:"phone"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Address         string `json:"endereco" form:"endereco" validate:"min=5"`
	Instagram       string `json:"instagram" form:"instagram"`
	Facebook        string `json:"facebook" form:"facebook"`
	Linkedin        string `json:"linkedin" form:"linkedin"`
	Website         string `json:"site" form:"site"`
	Font            string `json:"fonte" form:"fonte"`
	ColorPalette    string `json:"paletaCores" form:"paletaCores"`
	Description     string `json:"descricao" form:"descricao" validate:"min=10"`
	Slogan          string `json:"slogan" form:"slogan"`
	HasPlans        bool   `json:"possuiPlanos" form:"possuiPlanos"`
	Plans           string `json:"planos" form:"planos"`
	Services        string `json:"servicos" form:"servicos" validate:"min=5"`
	Testimonials    string `json:"depoimentos" form:"depoimentos"`
	WhatsappButton  *bool  `json:"botaoWhatsapp" form:"botaoWhatsapp"`
	HasMap          bool   `json:"possuiMapa" form:"possuiMapa"`
	MapLink         string `json:"linkMapa" form:"linkMapa" validate:"omitempty,url"`
	Model           string `json:"modelo" form:"modelo"`

	// ConfirmNoFiles acknowledges a submission without any attachment.
	ConfirmNoFiles bool `json:"confirmarSemArquivos" form:"confirmar_sem_arquivos"`
}

type MediaFile struct {
	File    upload.File
	Caption string
}

// Attachments are the files sent with the form, in submission order.
type Attachments struct {
	Logo         *upload.File
	Testimonials []upload.File
	Media        []MediaFile
}

func (a Attachments) Empty() bool {
	return a.Logo == nil && len(a.Testimonials) == 0 && len(a.Media) == 0
}

// Files lists every attachment in upload order: logo, testimonials, media.
func (a Attachments) Files() []upload.File {
	files := make([]upload.File, 0, len(a.Testimonials)+len(a.Media)+1)
	if a.Logo != nil {
		files = append(files, *a.Logo)
	}
	files = append(files, a.Testimonials...)
	for _, m := range a.Media {
		files = append(files, m.File)
	}
	return files
}

var messages = map[string]string{
	"required": "this field is required",
	"email":    "enter a valid email address",
	"url":      "enter a valid link",
	"phone":    fmt.Sprintf("phone must have at least %d digits", minPhoneDigits),
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return countDigits(fl.Field().String()) >= minPhoneDigits
	})
	return &Validator{validate: v}
}

// Normalize trims every text field and applies the toggle defaults. The map
// link only survives when the map is enabled.
func (f *Form) Normalize() {
	for _, s := range []*string{
		&f.OfficeName, &f.ResponsibleName, &f.Phone, &f.Email, &f.Address,
		&f.Instagram, &f.Facebook, &f.Linkedin, &f.Website, &f.Font,
		&f.ColorPalette, &f.Description, &f.Slogan, &f.Plans, &f.Services,
		&f.Testimonials, &f.MapLink, &f.Model,
	} {
		*s = strings.TrimSpace(*s)
	}
	if f.WhatsappButton == nil {
		enabled := true
		f.WhatsappButton = &enabled
	}
	if !f.HasMap {
		f.MapLink = ""
	}
}

// Validate reports every violated rule keyed by the JSON field name.
func (v *Validator) Validate(f Form) error {
	err := v.validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &models.ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Tag() == "min" {
		return fmt.Sprintf("must have at least %s characters", fe.Param())
	}
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	return "invalid value"
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// Record maps the form and the stored file references to a row.
func (f Form) Record(logo *models.ObjectRef, testimonials []models.ObjectRef, media []models.MediaRef) *models.SitePersonalization {
	whatsapp := true
	if f.WhatsappButton != nil {
		whatsapp = *f.WhatsappButton
	}
	return &models.SitePersonalization{
		OfficeName:      f.OfficeName,
		ResponsibleName: f.ResponsibleName,
		Phone:           f.Phone,
		Email:           f.Email,
		Address:         f.Address,
		Instagram:       f.Instagram,
		Facebook:        f.Facebook,
		Linkedin:        f.Linkedin,
		Website:         f.Website,
		Font:            f.Font,
		ColorPalette:    f.ColorPalette,
		Description:     f.Description,
		Slogan:          f.Slogan,
		HasPlans:        f.HasPlans,
		Plans:           f.Plans,
		Services:        f.Services,
		Testimonials:    f.Testimonials,
		WhatsappButton:  whatsapp,
		HasMap:          f.HasMap,
		MapLink:         f.MapLink,
		Model:           f.Model,
		Logo:            logo,
		TestimonialRefs: testimonials,
		MediaRefs:       media,
	}
}
