package services

import (
	"context"
	"log"
	"time"

	"site-crm-backend/internal/models"
)

// Signer issues retrieval URLs for stored objects.
type Signer interface {
	CreateSignedURL(path string, ttl time.Duration) (string, error)
	Probe(ctx context.Context, path string) bool
}

type PersonalizationGetter interface {
	GetPersonalization(ctx context.Context, id string) (*models.SitePersonalization, error)
}

type MediaLink struct {
	Path    string `json:"path"`
	URL     string `json:"url,omitempty"`
	Caption string `json:"caption,omitempty"`
	Error   string `json:"error,omitempty"`
}

type MediaLinks struct {
	PersonalizationID string      `json:"personalization_id"`
	Logo              *MediaLink  `json:"logo"`
	Testimonials      []MediaLink `json:"testimonials"`
	Media             []MediaLink `json:"media"`
	ExpiresAt         time.Time   `json:"expires_at"`
}

// MediaService hands out time-limited links to the files of a
// personalization submission.
type MediaService struct {
	store  PersonalizationGetter
	signer Signer
	ttl    time.Duration
}

func NewMediaService(store PersonalizationGetter, signer Signer, ttl time.Duration) *MediaService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MediaService{store: store, signer: signer, ttl: ttl}
}

// Links signs every file of the personalization. A file that cannot be
// signed is returned with its error instead of failing the whole call.
func (s *MediaService) Links(ctx context.Context, personalizationID string) (*MediaLinks, error) {
	p, err := s.store.GetPersonalization(ctx, personalizationID)
	if err != nil {
		return nil, err
	}

	links := &MediaLinks{
		PersonalizationID: p.ID,
		Testimonials:      make([]MediaLink, 0, len(p.TestimonialRefs)),
		Media:             make([]MediaLink, 0, len(p.MediaRefs)),
		ExpiresAt:         time.Now().Add(s.ttl),
	}
	if p.Logo != nil {
		link := s.sign(*p.Logo, "")
		links.Logo = &link
	}
	for _, ref := range p.TestimonialRefs {
		links.Testimonials = append(links.Testimonials, s.sign(ref, ""))
	}
	for _, m := range p.MediaRefs {
		links.Media = append(links.Media, s.sign(m.Ref, m.Caption))
	}
	return links, nil
}

func (s *MediaService) sign(ref models.ObjectRef, caption string) MediaLink {
	link := MediaLink{Path: string(ref), Caption: caption}
	url, err := s.signer.CreateSignedURL(string(ref), s.ttl)
	if err != nil {
		log.Printf("[Media] Failed to sign %s: %v", ref, err)
		link.Error = "file unavailable"
		return link
	}
	link.URL = url
	return link
}

// Exists is a best-effort check; false may also mean the storage host was
// unreachable.
func (s *MediaService) Exists(ctx context.Context, path string) bool {
	return s.signer.Probe(ctx, path)
}
