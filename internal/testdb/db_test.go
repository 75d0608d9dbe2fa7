package testdb_test

import (
	"testing"

	"github.com/phrazzld/task-tracker/internal/testdb"
	"github.com/stretchr/testify/assert"
)

func TestGetTestDatabaseURL(t *testing.T) {
	t.Run("prefers DATABASE_URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://a")
		t.Setenv("TASKTRACKER_TEST_DB_URL", "postgres://b")
		assert.Equal(t, "postgres://a", testdb.GetTestDatabaseURL())
		assert.True(t, testdb.IsIntegrationTestEnvironment())
	})

	t.Run("falls back to test URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("TASKTRACKER_TEST_DB_URL", "postgres://b")
		assert.Equal(t, "postgres://b", testdb.GetTestDatabaseURL())
	})

	t.Run("empty when unset", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("TASKTRACKER_TEST_DB_URL", "")
		assert.Empty(t, testdb.GetTestDatabaseURL())
		assert.False(t, testdb.IsIntegrationTestEnvironment())
	})
}
