package models

import "time"

// ObjectRef is a bucket-relative path of a file kept in object storage.
type ObjectRef string

// MediaRef is a stored media file paired with its caption.
type MediaRef struct {
	Ref     ObjectRef `json:"url"`
	Caption string    `json:"legenda"`
}

// SitePersonalization is one public form submission. Records are
// immutable once created.
type SitePersonalization struct {
	ID              string      `json:"id"`
	OfficeName      string      `json:"office_nome"`
	ResponsibleName string      `json:"responsavel_nome"`
	Phone           string      `json:"telefone"`
	Email           string      `json:"email"`
	Address         string      `json:"endereco"`
	Instagram       string      `json:"instagram,omitempty"`
	Facebook        string      `json:"facebook,omitempty"`
	Linkedin        string      `json:"linkedin,omitempty"`
	Website         string      `json:"site,omitempty"`
	Font            string      `json:"fonte,omitempty"`
	ColorPalette    string      `json:"paleta_cores,omitempty"`
	Description     string      `json:"descricao"`
	Slogan          string      `json:"slogan,omitempty"`
	HasPlans        bool        `json:"possui_planos"`
	Plans           string      `json:"planos,omitempty"`
	Services        string      `json:"servicos"`
	Testimonials    string      `json:"depoimentos,omitempty"`
	WhatsappButton  bool        `json:"botao_whatsapp"`
	HasMap          bool        `json:"possui_mapa"`
	MapLink         string      `json:"link_mapa,omitempty"`
	Model           string      `json:"modelo,omitempty"`
	Logo            *ObjectRef  `json:"logo_url"`
	TestimonialRefs []ObjectRef `json:"depoimento_urls"`
	MediaRefs       []MediaRef  `json:"midia_urls"`
	CreatedAt       time.Time   `json:"created_at"`
}
