package corpusstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario E: opening a fresh store applies every declared migration, and
// the member table ends up with a roles column defaulting to '[]'.
func TestOpenAppliesAllMigrations(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	version, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, latestVersion(), version)

	schemas, err := s.TableSchemas(context.Background())
	require.NoError(t, err)

	var memberSchema *TableSchema
	for i := range schemas {
		if schemas[i].Name == "member" {
			memberSchema = &schemas[i]
		}
	}
	require.NotNil(t, memberSchema)

	var hasRoles bool
	for _, col := range memberSchema.Columns {
		if col.Name == "roles" {
			hasRoles = true
		}
	}
	assert.True(t, hasRoles, "member table should have a roles column")

	pending, err := s.PendingMigrations()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// Applying migrations twice against the same database must be a no-op:
// reopening an already-migrated file leaves the same schema_version.
func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/corpus.db"

	s1, err := Open(path)
	require.NoError(t, err)
	v1, err := s1.SchemaVersion()
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	v2, err := s2.SchemaVersion()
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, latestVersion(), v2)
}

func TestCorpusCRUD(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	c := Corpus{ID: "c1", Name: "Test Group", Platform: "line", ChatType: ChatTypeGroup}
	require.NoError(t, s.CreateCorpus(ctx, c))

	got, err := s.GetCorpus(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Test Group", got.Name)
	assert.False(t, got.Partial)

	require.NoError(t, s.MarkPartial(ctx, "c1", true))
	got, err = s.GetCorpus(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, got.Partial)

	list, err := s.ListCorpora(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteCorpus(ctx, "c1"))
	list, err = s.ListCorpora(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
