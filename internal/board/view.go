package board

import (
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/status"
)

const shortcutLabelLength = 10

type Shortcut struct {
	Status string `json:"status"`
	Label  string `json:"label"`
}

type Card struct {
	models.Project
	Shortcuts []Shortcut `json:"shortcuts"`
}

type Column struct {
	Status string `json:"status"`
	Color  string `json:"color"`
	Icon   string `json:"icon"`
	Count  int    `json:"count"`
	Cards  []Card `json:"cards"`
}

type View struct {
	Columns  []Column `json:"columns"`
	Updating bool     `json:"updating"`
	Dragging string   `json:"dragging,omitempty"`
	Loading  bool     `json:"loading"`
}

// View groups the held projects into the pipeline columns, in pipeline
// order. Projects outside the pipeline are not shown.
func (b *Board) View() View {
	entries := status.All()
	columns := make([]Column, len(entries))
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		columns[i] = Column{Status: e.Value, Color: e.Color, Icon: e.Icon, Cards: []Card{}}
		index[e.Value] = i
	}

	for _, p := range b.lister.Items() {
		i, ok := index[p.Status]
		if !ok {
			continue
		}
		columns[i].Cards = append(columns[i].Cards, Card{Project: p, Shortcuts: Shortcuts(p.Status)})
		columns[i].Count++
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return View{
		Columns:  columns,
		Updating: b.updating,
		Dragging: b.dragging,
		Loading:  b.lister.Loading(),
	}
}

// Shortcuts lists every pipeline status other than current.
func Shortcuts(current string) []Shortcut {
	out := make([]Shortcut, 0, len(status.All()))
	for _, e := range status.All() {
		if e.Value == current {
			continue
		}
		out = append(out, Shortcut{Status: e.Value, Label: ShortLabel(e.Value)})
	}
	return out
}

// ShortLabel truncates s to ten characters followed by an ellipsis.
func ShortLabel(s string) string {
	r := []rune(s)
	if len(r) <= shortcutLabelLength {
		return s
	}
	return string(r[:shortcutLabelLength]) + "..."
}
