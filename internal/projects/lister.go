package projects

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"site-crm-backend/internal/models"
)

// Lister holds the current filters, the rows they selected and a loading
// flag. It is shared by every dashboard view in the process.
type Lister struct {
	service *Service

	mu      sync.RWMutex
	filters models.ProjectFilter
	items   []models.Project
	loading bool
	loaded  bool
	gen     uint64
	// pending holds local edits made while a reload is in flight. They
	// are replayed over the fetched rows, which may predate them.
	pending []edit
}

type edit struct {
	id      string
	status  string
	project *models.Project
	remove  bool
}

func NewLister(service *Service) *Lister {
	return &Lister{service: service, items: []models.Project{}}
}

// SetFilters re-fetches when f differs from the current filters. It
// reports whether a fetch happened.
func (l *Lister) SetFilters(ctx context.Context, f models.ProjectFilter) (bool, error) {
	l.mu.Lock()
	if l.loaded && l.filters.Equal(f) {
		l.mu.Unlock()
		return false, nil
	}
	l.filters = f
	l.mu.Unlock()

	return true, l.Reload(ctx)
}

// Reload fetches with the current filters. A failed fetch empties the list.
// A missing database is not reported.
func (l *Lister) Reload(ctx context.Context) error {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	filters := l.filters
	l.loading = true
	l.pending = nil
	l.mu.Unlock()

	rows, err := l.service.List(ctx, filters)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		// A newer reload owns the state.
		return err
	}
	l.loading = false
	l.loaded = true
	pending := l.pending
	l.pending = nil
	if err != nil {
		l.items = []models.Project{}
		if errors.Is(err, models.ErrGatewayNotReady) {
			return nil
		}
		log.Printf("[Projects] Failed to load list: %v", err)
		return err
	}
	l.items = rows
	for _, e := range pending {
		switch {
		case e.remove:
			l.remove(e.id)
		case e.project != nil:
			l.upsert(*e.project)
		default:
			l.replaceStatus(e.id, e.status)
		}
	}
	return nil
}

func (l *Lister) record(e edit) {
	if l.loading {
		l.pending = append(l.pending, e)
	}
}

func (l *Lister) Items() []models.Project {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Project, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Lister) Filters() models.ProjectFilter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filters
}

func (l *Lister) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Get returns the held copy of one project.
func (l *Lister) Get(id string) (models.Project, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, p := range l.items {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

// ReplaceStatus sets the status of the one held project with id, leaving
// every other field alone.
func (l *Lister) ReplaceStatus(id, newStatus string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(edit{id: id, status: newStatus})
	return l.replaceStatus(id, newStatus)
}

func (l *Lister) replaceStatus(id, newStatus string) bool {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i].Status = newStatus
			return true
		}
	}
	return false
}

// Upsert replaces the held row with the same id, or inserts p in
// created_at order when it passes the current filters. A held row that no
// longer matches is dropped.
func (l *Lister) Upsert(p models.Project) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(edit{id: p.ID, project: &p})
	l.upsert(p)
}

func (l *Lister) upsert(p models.Project) {
	matches := Matches(p, l.filters)
	for i := range l.items {
		if l.items[i].ID != p.ID {
			continue
		}
		if matches {
			l.items[i] = p
		} else {
			l.items = append(l.items[:i], l.items[i+1:]...)
		}
		return
	}
	if !matches {
		return
	}

	l.items = append(l.items, p)
	sort.SliceStable(l.items, func(i, j int) bool {
		return l.items[i].CreatedAt.After(l.items[j].CreatedAt)
	})
}

func (l *Lister) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(edit{id: id, remove: true})
	return l.remove(id)
}

func (l *Lister) remove(id string) bool {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}
