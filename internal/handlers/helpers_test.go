package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	projectA         = "6f1c2a40-0b7e-4d2a-9c1e-1a2b3c4d5e01"
	projectB         = "6f1c2a40-0b7e-4d2a-9c1e-1a2b3c4d5e02"
	projectC         = "6f1c2a40-0b7e-4d2a-9c1e-1a2b3c4d5e03"
	projectD         = "6f1c2a40-0b7e-4d2a-9c1e-1a2b3c4d5e04"
	customizationA   = "8a3d5e60-2c4f-4b6a-8d0e-2b3c4d5e6f01"
	customizationB   = "8a3d5e60-2c4f-4b6a-8d0e-2b3c4d5e6f02"
	personalizationA = "9b4e6f70-3d5a-4c7b-9e1f-3c4d5e6f7a01"
	templateA        = "ac5f7a80-4e6b-4d8c-8f2a-4d5e6f7a8b01"
	templateB        = "ac5f7a80-4e6b-4d8c-8f2a-4d5e6f7a8b02"
	unknownID        = "00000000-0000-4000-8000-000000000000"
)

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
