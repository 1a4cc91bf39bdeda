package models

import "encoding/json"

const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

// ChangeEvent is one row change delivered by the realtime feed.
type ChangeEvent struct {
	Table     string          `json:"table"`
	EventType string          `json:"type"`
	Old       json.RawMessage `json:"old"`
	New       json.RawMessage `json:"new"`
}

// ProjectRows decodes the old and new images of a projects change. Either
// may be nil depending on the event type.
func (e ChangeEvent) ProjectRows() (before, after *Project, err error) {
	if len(e.Old) > 0 && string(e.Old) != "null" {
		before = &Project{}
		if err = json.Unmarshal(e.Old, before); err != nil {
			return nil, nil, err
		}
	}
	if len(e.New) > 0 && string(e.New) != "null" {
		after = &Project{}
		if err = json.Unmarshal(e.New, after); err != nil {
			return nil, nil, err
		}
	}
	return before, after, nil
}
