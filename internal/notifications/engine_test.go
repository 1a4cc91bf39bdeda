package notifications_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"site-crm-backend/internal/localstate"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/notifications"
	"site-crm-backend/internal/socket"
	"site-crm-backend/internal/status"
)

type recorder struct {
	types []socket.MessageType
}

func (r *recorder) Broadcast(msgType socket.MessageType, payload interface{}) {
	r.types = append(r.types, msgType)
}

type clock struct {
	at time.Time
}

func (c *clock) now() time.Time { return c.at }

func newEngine(t *testing.T) (*notifications.Engine, *localstate.MemoryStore, *clock, *recorder) {
	t.Helper()
	store := localstate.NewMemoryStore()
	clk := &clock{at: time.Date(2024, 6, 1, 10, 0, 5, 0, time.UTC)}
	rec := &recorder{}
	engine := notifications.NewEngine(store, rec, time.Minute).WithClock(clk.now)
	require.NoError(t, engine.Load(context.Background()))
	return engine, store, clk, rec
}

func statusChange(t *testing.T, id, from, to string) models.ChangeEvent {
	t.Helper()
	before, err := json.Marshal(models.Project{ID: id, ClientName: "Studio X", Status: from})
	require.NoError(t, err)
	after, err := json.Marshal(models.Project{ID: id, ClientName: "Studio X", Status: to})
	require.NoError(t, err)
	return models.ChangeEvent{Table: "projects", EventType: models.ChangeUpdate, Old: before, New: after}
}

func TestDuplicateDeliveryCollapses(t *testing.T) {
	engine, _, clk, rec := newEngine(t)
	ev := statusChange(t, "p1", status.Received, status.CreatingSite)

	engine.HandleChange(ev)
	clk.at = clk.at.Add(20 * time.Second)
	engine.HandleChange(ev)

	list := engine.List()
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationInfo, list[0].Type)
	assert.Equal(t, "Studio X moved from Recebido to Criando site", list[0].Description)
	assert.Equal(t, []socket.MessageType{socket.MessageNotification}, rec.types)
}

func TestDismissedNeverReturns(t *testing.T) {
	engine, _, _, _ := newEngine(t)
	ev := statusChange(t, "p1", status.Received, status.CreatingSite)

	engine.HandleChange(ev)
	id := engine.List()[0].ID
	require.NoError(t, engine.Dismiss(context.Background(), id))

	engine.HandleChange(ev)
	assert.Empty(t, engine.List())
}

func TestNewWindowIsANewNotification(t *testing.T) {
	engine, _, clk, _ := newEngine(t)
	ev := statusChange(t, "p1", status.Received, status.CreatingSite)

	engine.HandleChange(ev)
	clk.at = clk.at.Add(2 * time.Minute)
	engine.HandleChange(ev)

	assert.Len(t, engine.List(), 2)
}

func TestIgnoresNonStatusChanges(t *testing.T) {
	engine, _, _, _ := newEngine(t)

	engine.HandleChange(statusChange(t, "p1", status.Received, status.Received))
	insert := statusChange(t, "p2", status.Received, status.CreatingSite)
	insert.EventType = models.ChangeInsert
	engine.HandleChange(insert)

	assert.Empty(t, engine.List())
}

func TestSiteReadyIsSuccess(t *testing.T) {
	engine, _, _, _ := newEngine(t)
	engine.HandleChange(statusChange(t, "p1", status.AwaitingDNS, status.SiteReady))
	assert.Equal(t, models.NotificationSuccess, engine.List()[0].Type)
}

func TestMarkAsReadKeepsPosition(t *testing.T) {
	engine, _, _, _ := newEngine(t)
	engine.HandleChange(statusChange(t, "p1", status.Received, status.CreatingSite))
	engine.HandleChange(statusChange(t, "p2", status.Received, status.CreatingSite))
	before := engine.List()

	require.NoError(t, engine.MarkAsRead(context.Background(), before[1].ID))
	after := engine.List()
	require.Len(t, after, 2)
	assert.Equal(t, before[1].ID, after[1].ID)
	assert.True(t, after[1].Read)
	assert.Equal(t, 1, engine.UnreadCount())

	assert.ErrorIs(t, engine.MarkAsRead(context.Background(), "missing"), models.ErrNotFound)
}

func TestClearAllDismissesEverything(t *testing.T) {
	engine, store, _, _ := newEngine(t)
	a := statusChange(t, "p1", status.Received, status.CreatingSite)
	b := statusChange(t, "p2", status.Received, status.CreatingSite)
	engine.HandleChange(a)
	engine.HandleChange(b)

	require.NoError(t, engine.ClearAll(context.Background()))
	assert.Empty(t, engine.List())

	engine.HandleChange(a)
	engine.HandleChange(b)
	assert.Empty(t, engine.List())

	var dismissed []string
	require.NoError(t, store.Load(context.Background(), notifications.KeyDismissed, &dismissed))
	assert.Len(t, dismissed, 2)
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	engine, store, clk, _ := newEngine(t)
	engine.HandleChange(statusChange(t, "p1", status.Received, status.CreatingSite))
	engine.HandleChange(statusChange(t, "p2", status.Received, status.CreatingSite))
	list := engine.List()
	require.NoError(t, engine.Dismiss(context.Background(), list[0].ID))
	require.NoError(t, engine.MarkAsRead(context.Background(), list[1].ID))

	restarted := notifications.NewEngine(store, nil, time.Minute).WithClock(clk.now)
	require.NoError(t, restarted.Load(context.Background()))

	got := restarted.List()
	require.Len(t, got, 1)
	assert.Equal(t, list[1].ID, got[0].ID)
	assert.True(t, got[0].Read)

	restarted.HandleChange(statusChange(t, "p2", status.Received, status.CreatingSite))
	assert.Len(t, restarted.List(), 1)
}

func TestID_Deterministic(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	a := notifications.ID("p1", "Recebido", "Criando site", at, time.Minute)
	b := notifications.ID("p1", "Recebido", "Criando site", at.Add(59*time.Second), time.Minute)
	c := notifications.ID("p1", "Criando site", "Recebido", at, time.Minute)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
