package models

import "time"

const (
	CustomizationRequested  = "Solicitado"
	CustomizationInProgress = "Em andamento"
	CustomizationDone       = "Concluído"
	CustomizationCancelled  = "Cancelado"
)

const (
	PriorityLow    = "Baixa"
	PriorityMedium = "Média"
	PriorityHigh   = "Alta"
	PriorityUrgent = "Urgente"
)

var CustomizationStatuses = []string{
	CustomizationRequested,
	CustomizationInProgress,
	CustomizationDone,
	CustomizationCancelled,
}

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

type ProjectCustomization struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Notes       string     `json:"notes,omitempty"`
}
