package models

type ProjectRequest struct {
	ClientName      string `json:"client_name"`
	Template        string `json:"template"`
	ResponsibleName string `json:"responsible_name"`
	Domain          string `json:"domain"`
	ClientType      string `json:"client_type"`
	PartnerLink     string `json:"partner_link"`
	BlasterLink     string `json:"blaster_link"`
	// Status is only honoured on create; transitions go through the board.
	Status string `json:"status,omitempty"`
}

type StatusTransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// MoveRequest is a drag-and-drop or button transition on the board.
type MoveRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
	// Source is "drag" or "button"; defaults to "button".
	Source string `json:"source,omitempty" example:"drag"`
}

type CreateCustomizationRequest struct {
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty" example:"Média"`
	Notes       string `json:"notes,omitempty"`
}

type CustomizationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TemplateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	CustomURL   string `json:"custom_url"`
}

type CustomURLCheckRequest struct {
	CustomURL string `json:"custom_url" binding:"required"`
	// ExcludeID skips the template being edited.
	ExcludeID string `json:"exclude_id,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// RedirectTo is the path originally requested before login.
	RedirectTo string `json:"redirect_to,omitempty"`
}
