package models

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AuthErrorResponse is a 401 with the login route that returns to the
// page that was originally requested.
type AuthErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect"`
}

type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Redirect     string `json:"redirect"`
}

type SessionResponse struct {
	UserID string `json:"user_id"`
}

type ProjectListResponse struct {
	Projects []Project     `json:"projects"`
	Total    int           `json:"total"`
	Filters  ProjectFilter `json:"filters"`
}

type ProjectStatusResponse struct {
	Project Project `json:"project"`
	Changed bool    `json:"changed"`
	Message string  `json:"message"`
}

type StatusInfo struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	Pipeline bool   `json:"pipeline"`
}

type StatusListResponse struct {
	Statuses []StatusInfo `json:"statuses"`
}

type CustomizationListResponse struct {
	Customizations []ProjectCustomization `json:"customizations"`
}

type CustomizationRequestResponse struct {
	Customization ProjectCustomization `json:"customization"`
	// ProjectStatus is the parent project's status after the request.
	ProjectStatus string `json:"project_status"`
}

type TemplateListResponse struct {
	Templates []ModelTemplate `json:"templates"`
}

type CustomURLCheckResponse struct {
	CustomURL string `json:"custom_url"`
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

type ShareURLResponse struct {
	TemplateID string `json:"template_id"`
	URL        string `json:"url"`
}

// FormTemplateResponse is what the public form shows for a path segment.
type FormTemplateResponse struct {
	Template ModelTemplate `json:"template"`
	Source   string        `json:"source"`
	NotFound bool          `json:"not_found"`
}

type PersonalizationResponse struct {
	Personalization SitePersonalization `json:"personalization"`
	ProjectID       string              `json:"project_id,omitempty"`
	Redirect        string              `json:"redirect"`
	Warning         string              `json:"warning,omitempty"`
}

// FilesConfirmationResponse asks the submitter to confirm sending the
// form without any files.
type FilesConfirmationResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

type ConfirmationResponse struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread"`
}

type SiteCommandResponse struct {
	ProjectID string `json:"project_id"`
	Command   string `json:"command"`
}
