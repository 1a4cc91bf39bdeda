package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"site-crm-backend/internal/handlers"
	"site-crm-backend/internal/models"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", handlers.HealthHandler)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestListStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/statuses", handlers.ListStatuses)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/statuses", nil))

	var response models.StatusListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Statuses, 6)
	assert.Equal(t, "Recebido", response.Statuses[0].Name)
	assert.Equal(t, "Site pronto", response.Statuses[4].Name)
	assert.True(t, response.Statuses[4].Pipeline)
	assert.Equal(t, "Em Customização", response.Statuses[5].Name)
	assert.False(t, response.Statuses[5].Pipeline)
}
