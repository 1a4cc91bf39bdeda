package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"site-crm-backend/internal/database"
)

func TestMigrationNames_Sorted(t *testing.T) {
	names, err := database.MigrationNames()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"001_initial_schema.sql",
		"002_project_change_feed.sql",
	}, names)
}
