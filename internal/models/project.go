package models

import "time"

const (
	ClientTypePartner   = "parceiro"
	ClientTypeEndClient = "cliente_final"
)

// Project is a client website-production job.
type Project struct {
	ID                string    `json:"id"`
	ClientName        string    `json:"client_name"`
	Template          string    `json:"template,omitempty"`
	ResponsibleName   string    `json:"responsible_name,omitempty"`
	Domain            string    `json:"domain,omitempty"`
	ClientType        string    `json:"client_type,omitempty"`
	PartnerLink       string    `json:"partner_link,omitempty"`
	BlasterLink       string    `json:"blaster_link,omitempty"`
	PersonalizationID *string   `json:"personalization_id"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProjectFilter holds the server-side predicates plus the free-text search
// applied after fetching.
type ProjectFilter struct {
	Status      string     `json:"status,omitempty"`
	Responsible string     `json:"responsible,omitempty"`
	Domain      string     `json:"domain,omitempty"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	Search      string     `json:"search,omitempty"`
}

// Equal reports whether two filters select the same rows.
func (f ProjectFilter) Equal(o ProjectFilter) bool {
	return f.Status == o.Status &&
		f.Responsible == o.Responsible &&
		f.Domain == o.Domain &&
		f.Search == o.Search &&
		timeEqual(f.From, o.From) &&
		timeEqual(f.To, o.To)
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
