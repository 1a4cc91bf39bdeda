package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"site-crm-backend/internal/brief"
	"site-crm-backend/internal/handlers"
	"site-crm-backend/internal/models"
)

func TestGetSiteCommand(t *testing.T) {
	store := newMemStore()
	persID := personalizationA
	store.personalizations[persID] = models.SitePersonalization{
		ID:          persID,
		OfficeName:  "Studio X",
		Description: "Escritório de contabilidade",
		Services:    "Contabilidade",
	}
	p := store.addProject(projectA, "Studio X", "Criando site", 0)
	p.PersonalizationID = &persID
	store.projects[projectA] = p
	store.addProject(projectB, "Beta", "Recebido", 0)

	h := handlers.NewBriefHandler(brief.NewGenerator(store, store))
	router := newRouter()
	router.GET("/projects/:id/site-command", h.GetSiteCommand)

	w := doJSON(router, "GET", "/projects/"+projectA+"/site-command", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SiteCommandResponse
	decode(t, w, &resp)
	assert.Contains(t, resp.Command, "CRIAR SITE: Studio X")
	assert.Contains(t, resp.Command, "Escritório de contabilidade")

	w = doJSON(router, "GET", "/projects/"+projectB+"/site-command", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Contains(t, resp.Command, "Sem formulário de personalização vinculado.")

	w = doJSON(router, "GET", "/projects/"+unknownID+"/site-command", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
