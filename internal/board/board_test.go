package board_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"site-crm-backend/internal/board"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/projects"
	"site-crm-backend/internal/status"
)

type listStore struct {
	rows []models.Project
}

func (s *listStore) ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	out := make([]models.Project, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *listStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return nil, models.ErrNotFound
}

func (s *listStore) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	return p, nil
}

func (s *listStore) UpdateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	return p, nil
}

func (s *listStore) DeleteProject(ctx context.Context, id string) error { return nil }

func (s *listStore) DeleteCustomizationsByProject(ctx context.Context, projectID string) error {
	return nil
}

func (s *listStore) CountProjects(ctx context.Context, st string) (int, error) { return 0, nil }

type fakeWriter struct {
	calls   int
	err     error
	block   chan struct{}
	started chan struct{}
	from    string
}

func (w *fakeWriter) UpdateProjectStatus(ctx context.Context, id, from, to string) error {
	w.calls++
	w.from = from
	if w.started != nil {
		close(w.started)
	}
	if w.block != nil {
		<-w.block
	}
	return w.err
}

func newBoard(t *testing.T, writer board.StatusWriter) (*board.Board, *projects.Lister) {
	t.Helper()
	rows := []models.Project{
		{ID: "1", ClientName: "Studio X", Status: status.Received, CreatedAt: time.Now()},
		{ID: "2", ClientName: "Padaria Sol", Status: status.Received, CreatedAt: time.Now().Add(-time.Hour)},
		{ID: "3", ClientName: "Loja", Status: status.InCustomization, CreatedAt: time.Now().Add(-2 * time.Hour)},
	}
	lister := projects.NewLister(projects.NewService(&listStore{rows: rows}))
	require.NoError(t, lister.Reload(context.Background()))
	return board.New(lister, writer), lister
}

func TestMove_SameStatusIsNoop(t *testing.T) {
	writer := &fakeWriter{}
	b, _ := newBoard(t, writer)

	for _, src := range []board.Source{board.SourceDrag, board.SourceButton} {
		res, err := b.Move(context.Background(), "1", status.Received, src)
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Empty(t, res.Message)
	}
	assert.Equal(t, 0, writer.calls)
}

func TestMove_SuccessReplacesOnlyStatus(t *testing.T) {
	writer := &fakeWriter{}
	b, lister := newBoard(t, writer)
	before := lister.Items()

	res, err := b.Move(context.Background(), "1", status.CreatingSite, board.SourceDrag)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Status updated to Criando site", res.Message)
	assert.Equal(t, status.Received, writer.from)

	after := lister.Items()
	require.Len(t, after, len(before))
	matches := 0
	for i := range after {
		if after[i].ID == "1" {
			matches++
			assert.Equal(t, status.CreatingSite, after[i].Status)
			after[i].Status = before[i].Status
		}
		assert.Equal(t, before[i], after[i])
	}
	assert.Equal(t, 1, matches)
	assert.False(t, b.Updating())
	assert.Empty(t, b.Dragging())
}

func TestMove_FailureLeavesStateUnchanged(t *testing.T) {
	writer := &fakeWriter{err: errors.New("network down")}
	b, lister := newBoard(t, writer)
	before := lister.Items()

	_, err := b.Move(context.Background(), "1", status.SiteReady, board.SourceDrag)
	require.Error(t, err)
	assert.Equal(t, before, lister.Items())
	assert.Equal(t, 1, writer.calls)
	assert.False(t, b.Updating())
	assert.Empty(t, b.Dragging())
}

func TestMove_ConflictSurfaces(t *testing.T) {
	b, _ := newBoard(t, &fakeWriter{err: models.ErrStatusConflict})

	_, err := b.Move(context.Background(), "1", status.SiteReady, board.SourceButton)
	assert.ErrorIs(t, err, models.ErrStatusConflict)
}

func TestMove_RejectsConcurrentTransition(t *testing.T) {
	writer := &fakeWriter{block: make(chan struct{}), started: make(chan struct{})}
	b, _ := newBoard(t, writer)

	done := make(chan error, 1)
	go func() {
		_, err := b.Move(context.Background(), "1", status.CreatingSite, board.SourceDrag)
		done <- err
	}()
	<-writer.started

	assert.True(t, b.Updating())
	assert.Equal(t, "1", b.Dragging())
	_, err := b.Move(context.Background(), "2", status.CreatingSite, board.SourceButton)
	assert.ErrorIs(t, err, board.ErrTransitionInProgress)

	close(writer.block)
	require.NoError(t, <-done)
	assert.False(t, b.Updating())
}

func TestMove_UnknownProjectAndStatus(t *testing.T) {
	b, _ := newBoard(t, &fakeWriter{})

	_, err := b.Move(context.Background(), "missing", status.SiteReady, board.SourceButton)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = b.Move(context.Background(), "1", "Arquivado", board.SourceButton)
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestView_ColumnsInPipelineOrder(t *testing.T) {
	b, _ := newBoard(t, &fakeWriter{})

	view := b.View()
	require.Len(t, view.Columns, 5)
	for i, v := range status.Values() {
		assert.Equal(t, v, view.Columns[i].Status)
	}
	assert.Equal(t, 2, view.Columns[0].Count)
	assert.Len(t, view.Columns[0].Cards, 2)

	total := 0
	for _, c := range view.Columns {
		total += c.Count
	}
	// The project in customization has no column.
	assert.Equal(t, 2, total)
}

func TestShortcuts_ExcludeCurrentAndTruncate(t *testing.T) {
	shortcuts := board.Shortcuts(status.Received)
	require.Len(t, shortcuts, 4)
	for _, s := range shortcuts {
		assert.NotEqual(t, status.Received, s.Status)
	}
	assert.Equal(t, "Configuran...", board.ShortLabel(status.ConfiguringDomain))
	assert.Equal(t, "Recebido", board.ShortLabel(status.Received))
	assert.Equal(t, "Site pronto"[:10]+"...", board.ShortLabel(status.SiteReady))
}

func changeEvent(t *testing.T, kind string, before, after *models.Project) models.ChangeEvent {
	t.Helper()
	ev := models.ChangeEvent{Table: "projects", EventType: kind}
	if before != nil {
		raw, err := json.Marshal(before)
		require.NoError(t, err)
		ev.Old = raw
	}
	if after != nil {
		raw, err := json.Marshal(after)
		require.NoError(t, err)
		ev.New = raw
	}
	return ev
}

func TestHandleChange(t *testing.T) {
	b, lister := newBoard(t, &fakeWriter{})

	p, _ := lister.Get("2")
	updated := p
	updated.Status = status.AwaitingDNS
	b.HandleChange(changeEvent(t, models.ChangeUpdate, &p, &updated))
	got, _ := lister.Get("2")
	assert.Equal(t, status.AwaitingDNS, got.Status)

	inserted := models.Project{ID: "9", ClientName: "Novo", Status: status.Received, CreatedAt: time.Now().Add(time.Minute)}
	b.HandleChange(changeEvent(t, models.ChangeInsert, nil, &inserted))
	assert.Equal(t, "9", lister.Items()[0].ID)

	b.HandleChange(changeEvent(t, models.ChangeDelete, &inserted, nil))
	_, ok := lister.Get("9")
	assert.False(t, ok)

	b.HandleChange(models.ChangeEvent{Table: "projects", EventType: models.ChangeUpdate, New: json.RawMessage(`{"id":`)})
	assert.Len(t, lister.Items(), 3)
}
