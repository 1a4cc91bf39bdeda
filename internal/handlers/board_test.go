package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"site-crm-backend/internal/board"
	"site-crm-backend/internal/handlers"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/projects"
)

func newBoardRouter(store *memStore) (*board.Board, http.Handler) {
	b := board.New(projects.NewLister(projects.NewService(store)), store)
	h := handlers.NewBoardHandler(b)

	router := newRouter()
	router.GET("/board", h.GetBoard)
	router.POST("/board/move", h.Move)
	return b, router
}

func TestGetBoard_ColumnsInPipelineOrder(t *testing.T) {
	store := newMemStore()
	store.addProject(projectA, "Acme", "Recebido", 2)
	store.addProject(projectB, "Beta", "Site pronto", 1)
	store.addProject(projectC, "Gamma", "Em Customização", 0)
	_, router := newBoardRouter(store)

	w := doJSON(router, "GET", "/board", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view board.View
	decode(t, w, &view)
	require.Len(t, view.Columns, 5)
	assert.Equal(t, "Recebido", view.Columns[0].Status)
	assert.Equal(t, 1, view.Columns[0].Count)
	assert.Equal(t, projectA, view.Columns[0].Cards[0].ID)
	assert.Len(t, view.Columns[0].Cards[0].Shortcuts, 4)
	assert.Equal(t, "Site pronto", view.Columns[4].Status)
	assert.Equal(t, 1, view.Columns[4].Count)

	total := 0
	for _, col := range view.Columns {
		total += col.Count
	}
	assert.Equal(t, 2, total)
}

func TestGetBoard_FiltersAreKept(t *testing.T) {
	store := newMemStore()
	p1 := store.addProject(projectA, "Acme", "Recebido", 1)
	p1.ResponsibleName = "Ana"
	store.projects[projectA] = p1
	store.addProject(projectB, "Beta", "Recebido", 0)
	b, router := newBoardRouter(store)

	w := doJSON(router, "GET", "/board?responsible=ana", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view board.View
	decode(t, w, &view)
	assert.Equal(t, 1, view.Columns[0].Count)

	// Unchanged filters do not re-fetch, so a row added behind the
	// board's back only shows up after a reload.
	p3 := store.addProject(projectC, "Gamma", "Recebido", 0)
	p3.ResponsibleName = "Ana"
	store.projects[projectC] = p3

	w = doJSON(router, "GET", "/board?responsible=ana", nil)
	decode(t, w, &view)
	assert.Equal(t, 1, view.Columns[0].Count)

	require.NoError(t, b.Reload(context.Background()))
	w = doJSON(router, "GET", "/board?responsible=ana", nil)
	decode(t, w, &view)
	assert.Equal(t, 2, view.Columns[0].Count)
}

func TestMove_Drag(t *testing.T) {
	store := newMemStore()
	store.addProject(projectA, "Acme", "Recebido", 0)
	b, router := newBoardRouter(store)
	require.NoError(t, b.Reload(context.Background()))

	w := doJSON(router, "POST", "/board/move", models.MoveRequest{
		ProjectID: projectA,
		Status:    "Configurando Domínio",
		Source:    "drag",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ProjectStatusResponse
	decode(t, w, &resp)
	assert.True(t, resp.Changed)
	assert.Equal(t, "Configurando Domínio", store.status(projectA))
	assert.False(t, b.Updating())
	assert.Empty(t, b.Dragging())

	view := b.View()
	assert.Equal(t, 0, view.Columns[0].Count)
	assert.Equal(t, 1, view.Columns[2].Count)
}

func TestMove_DropOnSameColumn(t *testing.T) {
	store := newMemStore()
	store.addProject(projectA, "Acme", "Recebido", 0)
	b, router := newBoardRouter(store)
	require.NoError(t, b.Reload(context.Background()))

	w := doJSON(router, "POST", "/board/move", models.MoveRequest{ProjectID: projectA, Status: "Recebido", Source: "drag"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ProjectStatusResponse
	decode(t, w, &resp)
	assert.False(t, resp.Changed)
}

func TestMove_UnknownProject(t *testing.T) {
	store := newMemStore()
	b, router := newBoardRouter(store)
	require.NoError(t, b.Reload(context.Background()))

	w := doJSON(router, "POST", "/board/move", models.MoveRequest{ProjectID: "nope", Status: "Recebido"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMove_MissingFields(t *testing.T) {
	_, router := newBoardRouter(newMemStore())

	w := doJSON(router, "POST", "/board/move", map[string]string{"status": "Recebido"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
