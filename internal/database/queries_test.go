package database_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"site-crm-backend/internal/database"
)

func TestQuery_BuildWithFilters(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := database.Select("projects", "id", "client_name").
		Eq("status", "Recebido").
		ILike("responsible_name", "ana").
		Gte("created_at", from).
		Order("created_at", true)

	sql, args := q.Build()
	assert.Equal(t,
		"SELECT id, client_name FROM projects WHERE status = $1 AND responsible_name ILIKE $2 AND created_at >= $3 ORDER BY created_at DESC",
		sql)
	assert.Equal(t, []interface{}{"Recebido", "%ana%", from}, args)
}

func TestQuery_NoFilters(t *testing.T) {
	sql, args := database.Select("model_templates").Order("name", false).Build()
	assert.Equal(t, "SELECT * FROM model_templates ORDER BY name ASC", sql)
	assert.Empty(t, args)
}

func TestQuery_ILikeEscapesWildcards(t *testing.T) {
	_, args := database.Select("projects").ILike("domain", "50%_off").Build()
	assert.Equal(t, []interface{}{`%50\%\_off%`}, args)
}

func TestQuery_BuildCount(t *testing.T) {
	sql, args := database.Select("projects").Eq("status", "Site pronto").BuildCount()
	assert.Equal(t, "SELECT COUNT(*) FROM projects WHERE status = $1", sql)
	assert.Equal(t, []interface{}{"Site pronto"}, args)
}
