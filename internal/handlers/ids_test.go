package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"site-crm-backend/internal/brief"
	"site-crm-backend/internal/handlers"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/services"
)

func TestMalformedPathID(t *testing.T) {
	store := newMemStore()
	store.addProject(projectA, "Acme", "Recebido", 0)

	projectsRouter := newProjectsFixture().router
	customizationsRouter := newCustomizationsRouter(store)
	templatesRouter := newTemplatesRouter(store)

	briefRouter := newRouter()
	briefRouter.GET("/projects/:id/site-command", handlers.NewBriefHandler(brief.NewGenerator(store, store)).GetSiteCommand)

	mediaRouter := newRouter()
	mediaRouter.GET("/personalizations/:id/media",
		handlers.NewMediaHandler(services.NewMediaService(store, &memBucket{}, 0)).GetMedia)

	cases := []struct {
		name   string
		router http.Handler
		method string
		path   string
		body   interface{}
		want   string
	}{
		{"get project", projectsRouter, "GET", "/projects/abc", nil, "invalid project id"},
		{"update project", projectsRouter, "PUT", "/projects/abc", models.ProjectRequest{ClientName: "Acme"}, "invalid project id"},
		{"delete project", projectsRouter, "DELETE", "/projects/abc", nil, "invalid project id"},
		{"project status", projectsRouter, "PATCH", "/projects/abc/status", models.StatusTransitionRequest{Status: "Criando site"}, "invalid project id"},
		{"site command", briefRouter, "GET", "/projects/abc/site-command", nil, "invalid project id"},
		{"list customizations", customizationsRouter, "GET", "/projects/abc/customizations", nil, "invalid project id"},
		{"request customization", customizationsRouter, "POST", "/projects/abc/customizations",
			models.CreateCustomizationRequest{Description: "Add dark mode", Priority: "Alta"}, "invalid project id"},
		{"customization status", customizationsRouter, "PATCH", "/customizations/abc", models.CustomizationStatusRequest{Status: "Concluído"}, "invalid customization id"},
		{"delete customization", customizationsRouter, "DELETE", "/customizations/abc", nil, "invalid customization id"},
		{"get template", templatesRouter, "GET", "/templates/abc", nil, "invalid template id"},
		{"update template", templatesRouter, "PUT", "/templates/abc", models.TemplateRequest{Name: "Contábil"}, "invalid template id"},
		{"delete template", templatesRouter, "DELETE", "/templates/abc", nil, "invalid template id"},
		{"share url", templatesRouter, "GET", "/templates/abc/share-url", nil, "invalid template id"},
		{"media", mediaRouter, "GET", "/personalizations/abc/media", nil, "invalid personalization id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(tc.router, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp models.ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, tc.want, resp.Error)
		})
	}

	assert.Empty(t, store.customizations)
	assert.Equal(t, "Recebido", store.status(projectA))
}
