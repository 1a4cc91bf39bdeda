package supabase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageClient_Absolute(t *testing.T) {
	s := NewStorageClient("https://abc.supabase.co/", "key", "site-personalizacoes")

	assert.Equal(t,
		"https://abc.supabase.co/storage/v1/object/sign/site-personalizacoes/logos/a.png?token=t",
		s.absolute("/object/sign/site-personalizacoes/logos/a.png?token=t"))
	assert.Equal(t, "https://cdn.example/x.png", s.absolute("https://cdn.example/x.png"))
	assert.Equal(t, "site-personalizacoes", s.Bucket())
}

func TestStorageFailure_ParsesErrorBody(t *testing.T) {
	sdkErr := errors.New(`{"statusCode":"409","error":"Duplicate","message":"The resource already exists"}`)

	failure := storageFailure("logos/1700000403123_a.png", sdkErr)

	assert.Equal(t, 409, failure.StatusCode)
	assert.Equal(t, "Duplicate: The resource already exists", failure.Message)
	assert.Equal(t, "logos/1700000403123_a.png", failure.Path)
	assert.ErrorIs(t, failure, sdkErr)
}

func TestStorageFailure_PlainMessage(t *testing.T) {
	failure := storageFailure("logos/a.png", errors.New("new row violates row-level security policy"))

	assert.Equal(t, 0, failure.StatusCode)
	assert.Equal(t, "new row violates row-level security policy", failure.Message)
}
