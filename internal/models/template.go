package models

import "time"

// ModelTemplate brands a public personalization form.
type ModelTemplate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CustomURL   string    `json:"custom_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Slug is the path segment used in share links.
func (t ModelTemplate) Slug() string {
	if t.CustomURL != "" {
		return t.CustomURL
	}
	return t.ID
}
