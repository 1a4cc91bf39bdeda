package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/upload"
)

type StorageClient struct {
	client     *storage.Client
	bucket     string
	baseURL    string
	httpClient *http.Client
}

func NewStorageClient(supabaseURL, apiKey, bucket string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", apiKey, nil)

	return &StorageClient{
		client:     client,
		bucket:     bucket,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *StorageClient) Bucket() string {
	return s.bucket
}

// Upload stores data at path inside the bucket. The storage SDK has no
// context support, so ctx only bounds how long we wait for it.
func (s *StorageClient) Upload(ctx context.Context, path string, data []byte, contentType string) (models.ObjectRef, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := false

	done := make(chan error, 1)
	go func() {
		_, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
		done <- err
	}()

	select {
	case <-ctx.Done():
		return "", &upload.StorageError{Path: path, Message: "timed out", Err: ctx.Err()}
	case err := <-done:
		if err != nil {
			return "", storageFailure(path, err)
		}
	}

	return models.ObjectRef(path), nil
}

// storageErrorBody is the JSON error the storage API answers with. Some SDK
// versions surface it verbatim as the error text.
type storageErrorBody struct {
	StatusCode json.Number `json:"statusCode"`
	Error      string      `json:"error"`
	Message    string      `json:"message"`
}

func storageFailure(path string, err error) *upload.StorageError {
	failure := &upload.StorageError{Path: path, Message: err.Error(), Err: err}

	var body storageErrorBody
	if json.Unmarshal([]byte(err.Error()), &body) == nil {
		if code, convErr := body.StatusCode.Int64(); convErr == nil {
			failure.StatusCode = int(code)
		}
		switch {
		case body.Error != "" && body.Message != "":
			failure.Message = body.Error + ": " + body.Message
		case body.Message != "":
			failure.Message = body.Message
		case body.Error != "":
			failure.Message = body.Error
		}
	}
	return failure
}

// CreateSignedURL returns a time-limited retrieval URL for path.
func (s *StorageClient) CreateSignedURL(path string, ttl time.Duration) (string, error) {
	resp, err := s.client.CreateSignedUrl(s.bucket, path, int(ttl.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", path, err)
	}
	return s.absolute(resp.SignedURL), nil
}

func (s *StorageClient) GetPublicURL(path string) string {
	return s.absolute(s.client.GetPublicUrl(s.bucket, path).SignedURL)
}

// Probe is a best-effort existence check through the public URL. Any
// error counts as missing.
func (s *StorageClient) Probe(ctx context.Context, path string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.GetPublicURL(path), nil)
	if err != nil {
		return false
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// absolute turns the relative URLs some storage API versions return into
// full URLs.
func (s *StorageClient) absolute(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return s.baseURL + "/storage/v1" + "/" + strings.TrimPrefix(u, "/")
}
