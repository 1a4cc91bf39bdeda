package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/services"
)

type fakeSigner struct {
	ttls    []time.Duration
	missing map[string]bool
}

func (f *fakeSigner) CreateSignedURL(path string, ttl time.Duration) (string, error) {
	f.ttls = append(f.ttls, ttl)
	if strings.Contains(path, "broken") {
		return "", errors.New("object not found")
	}
	return "https://cdn.example.com/" + path + "?token=x", nil
}

func (f *fakeSigner) Probe(ctx context.Context, path string) bool {
	return !f.missing[path]
}

type fakeStore struct {
	p *models.SitePersonalization
}

func (f *fakeStore) GetPersonalization(ctx context.Context, id string) (*models.SitePersonalization, error) {
	if f.p == nil || f.p.ID != id {
		return nil, models.ErrNotFound
	}
	return f.p, nil
}

func TestLinks_SignsEveryFile(t *testing.T) {
	logo := models.ObjectRef("logos/1_logo.png")
	store := &fakeStore{p: &models.SitePersonalization{
		ID:              "pers-1",
		Logo:            &logo,
		TestimonialRefs: []models.ObjectRef{"depoimentos/1_a.jpg", "depoimentos/2_broken.jpg"},
		MediaRefs:       []models.MediaRef{{Ref: "midias/1_fachada.jpg", Caption: "Fachada"}},
	}}
	signer := &fakeSigner{}

	links, err := services.NewMediaService(store, signer, 30*time.Minute).Links(context.Background(), "pers-1")
	require.NoError(t, err)

	require.NotNil(t, links.Logo)
	assert.Equal(t, "https://cdn.example.com/logos/1_logo.png?token=x", links.Logo.URL)
	require.Len(t, links.Testimonials, 2)
	assert.Empty(t, links.Testimonials[1].URL)
	assert.Equal(t, "file unavailable", links.Testimonials[1].Error)
	require.Len(t, links.Media, 1)
	assert.Equal(t, "Fachada", links.Media[0].Caption)

	for _, ttl := range signer.ttls {
		assert.Equal(t, 30*time.Minute, ttl)
	}
}

func TestLinks_NoLogo(t *testing.T) {
	store := &fakeStore{p: &models.SitePersonalization{ID: "pers-1"}}

	links, err := services.NewMediaService(store, &fakeSigner{}, 0).Links(context.Background(), "pers-1")
	require.NoError(t, err)
	assert.Nil(t, links.Logo)
	assert.Empty(t, links.Testimonials)
	assert.Empty(t, links.Media)
}

func TestLinks_NotFound(t *testing.T) {
	_, err := services.NewMediaService(&fakeStore{}, &fakeSigner{}, time.Hour).Links(context.Background(), "x")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestExists(t *testing.T) {
	signer := &fakeSigner{missing: map[string]bool{"logos/gone.png": true}}
	svc := services.NewMediaService(&fakeStore{}, signer, time.Hour)

	assert.True(t, svc.Exists(context.Background(), "logos/here.png"))
	assert.False(t, svc.Exists(context.Background(), "logos/gone.png"))
}
