// Package board is the Kanban view over the project list: one column per
// pipeline status and guarded status transitions.
package board

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"site-crm-backend/internal/models"
	"site-crm-backend/internal/projects"
	"site-crm-backend/internal/status"
)

// ErrTransitionInProgress is returned while another move is in flight.
var ErrTransitionInProgress = errors.New("another status change is in progress")

type Source string

const (
	SourceDrag   Source = "drag"
	SourceButton Source = "button"
)

// ParseSource maps the request value; anything unknown is a button press.
func ParseSource(s string) Source {
	if Source(s) == SourceDrag {
		return SourceDrag
	}
	return SourceButton
}

// StatusWriter performs the remote compare-and-set on a project's status.
type StatusWriter interface {
	UpdateProjectStatus(ctx context.Context, id, from, to string) error
}

type MoveResult struct {
	Project models.Project `json:"project"`
	Changed bool           `json:"changed"`
	// Message is the toast text; empty for a no-op.
	Message string `json:"message,omitempty"`
}

type Board struct {
	lister *projects.Lister
	writer StatusWriter

	mu       sync.Mutex
	updating bool
	dragging string
}

func New(lister *projects.Lister, writer StatusWriter) *Board {
	return &Board{lister: lister, writer: writer}
}

// Move transitions one project to target. Moving to the current status is
// a no-op without a remote call. Only one move runs at a time. On failure
// the held list is left exactly as it was.
func (b *Board) Move(ctx context.Context, projectID, target string, source Source) (*MoveResult, error) {
	current, ok := b.lister.Get(projectID)
	if !ok {
		return nil, models.ErrNotFound
	}
	if current.Status == target {
		return &MoveResult{Project: current}, nil
	}
	if !status.IsPipeline(target) {
		return nil, models.NewValidationError("status", fmt.Sprintf("unknown status %q", target))
	}
	if b.writer == nil {
		return nil, models.ErrGatewayNotReady
	}

	b.mu.Lock()
	if b.updating {
		b.mu.Unlock()
		return nil, ErrTransitionInProgress
	}
	b.updating = true
	if source == SourceDrag {
		b.dragging = projectID
	}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.updating = false
		b.dragging = ""
		b.mu.Unlock()
	}()

	if err := b.writer.UpdateProjectStatus(ctx, projectID, current.Status, target); err != nil {
		log.Printf("[Board] Failed to move %s from %q to %q: %v", projectID, current.Status, target, err)
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	b.lister.ReplaceStatus(projectID, target)
	current.Status = target
	log.Printf("[Board] Moved %s to %q (%s)", projectID, target, source)

	return &MoveResult{
		Project: current,
		Changed: true,
		Message: fmt.Sprintf("Status updated to %s", target),
	}, nil
}

func (b *Board) Updating() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updating
}

// Dragging is the id of the card being dragged, if any.
func (b *Board) Dragging() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dragging
}

// Reload re-fetches the held list with its current filters.
func (b *Board) Reload(ctx context.Context) error {
	return b.lister.Reload(ctx)
}

// SetFilters narrows the board. The list is only re-fetched when the
// filters actually change.
func (b *Board) SetFilters(ctx context.Context, f models.ProjectFilter) (bool, error) {
	return b.lister.SetFilters(ctx, f)
}

// Track applies a locally made change to the held list so the board does
// not wait for the change feed.
func (b *Board) Track(p models.Project) {
	b.lister.Upsert(p)
}

func (b *Board) Forget(id string) {
	b.lister.Remove(id)
}

// HandleChange applies one change-feed event to the held list.
func (b *Board) HandleChange(event models.ChangeEvent) {
	before, after, err := event.ProjectRows()
	if err != nil {
		log.Printf("[Board] Ignoring undecodable %s event: %v", event.EventType, err)
		return
	}

	switch event.EventType {
	case models.ChangeInsert, models.ChangeUpdate:
		if after != nil {
			b.lister.Upsert(*after)
		}
	case models.ChangeDelete:
		if before != nil {
			b.lister.Remove(before.ID)
		}
	}
}
