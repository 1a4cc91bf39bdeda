// Package brief renders the plain-text production brief the site team
// works from.
package brief

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"site-crm-backend/internal/models"
)

type ProjectGetter interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
}

type PersonalizationGetter interface {
	GetPersonalization(ctx context.Context, id string) (*models.SitePersonalization, error)
}

var siteCommand = template.Must(template.New("site").Funcs(template.FuncMap{
	"yesno": func(b bool) string {
		if b {
			return "Sim"
		}
		return "Não"
	},
	"orDash": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	},
}).Parse(`CRIAR SITE: {{.Project.ClientName}}
Modelo: {{orDash .Project.Template}}
Domínio: {{orDash .Project.Domain}}
Responsável: {{orDash .Project.ResponsibleName}}
{{- with .Personalization}}

== Empresa ==
Nome: {{.OfficeName}}
Contato: {{.ResponsibleName}} | {{.Phone}} | {{.Email}}
Endereço: {{.Address}}
Slogan: {{orDash .Slogan}}

== Sobre ==
{{.Description}}

== Serviços ==
{{.Services}}
{{- if .HasPlans}}

== Planos ==
{{orDash .Plans}}
{{- end}}
{{- if .Testimonials}}

== Depoimentos ==
{{.Testimonials}}
{{- end}}

== Redes ==
Instagram: {{orDash .Instagram}}
Facebook: {{orDash .Facebook}}
LinkedIn: {{orDash .Linkedin}}
Site atual: {{orDash .Website}}

== Visual ==
Fonte: {{orDash .Font}}
Paleta: {{orDash .ColorPalette}}
Logo: {{if .Logo}}{{.Logo}}{{else}}-{{end}}
{{- range $i, $m := .MediaRefs}}
Mídia {{$i}}: {{$m.Ref}}{{if $m.Caption}} ({{$m.Caption}}){{end}}
{{- end}}
{{- range $i, $d := .TestimonialRefs}}
Imagem de depoimento {{$i}}: {{$d}}
{{- end}}

== Configurações ==
Botão WhatsApp: {{yesno .WhatsappButton}}
Mapa: {{yesno .HasMap}}{{if .HasMap}} {{orDash .MapLink}}{{end}}
{{- else}}

Sem formulário de personalização vinculado.
{{- end}}
`))

type Generator struct {
	projects         ProjectGetter
	personalizations PersonalizationGetter
}

func NewGenerator(projects ProjectGetter, personalizations PersonalizationGetter) *Generator {
	return &Generator{projects: projects, personalizations: personalizations}
}

// SiteCommand loads the project and its personalization, if any, and
// renders the brief.
func (g *Generator) SiteCommand(ctx context.Context, projectID string) (string, error) {
	project, err := g.projects.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}

	var personalization *models.SitePersonalization
	if project.PersonalizationID != nil {
		personalization, err = g.personalizations.GetPersonalization(ctx, *project.PersonalizationID)
		if err != nil {
			return "", fmt.Errorf("failed to load personalization for brief: %w", err)
		}
	}
	return Render(project, personalization)
}

// Render accepts a nil personalization.
func Render(project *models.Project, personalization *models.SitePersonalization) (string, error) {
	var buf bytes.Buffer
	err := siteCommand.Execute(&buf, struct {
		Project         *models.Project
		Personalization *models.SitePersonalization
	}{project, personalization})
	if err != nil {
		return "", fmt.Errorf("failed to render site command: %w", err)
	}
	return buf.String(), nil
}
