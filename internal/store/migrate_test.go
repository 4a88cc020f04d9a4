package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMigrationFilename(t *testing.T) {
	version, name, err := parseMigrationFilename("0004_task_dispatch_outbox.sql")
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)
	assert.Equal(t, "task_dispatch_outbox", name)
}

func TestParseMigrationFilename_Malformed(t *testing.T) {
	_, _, err := parseMigrationFilename("notversioned.sql")
	assert.Error(t, err)

	_, _, err = parseMigrationFilename("abc_engines.sql")
	assert.Error(t, err)
}

func TestLoadMigrations_OrderedAndNonEmpty(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].version, migrations[i].version)
	}

	names := make([]string, len(migrations))
	for i, m := range migrations {
		names[i] = m.name
		assert.NotEmpty(t, m.checksum)
		assert.NotEmpty(t, m.sql)
	}
	assert.Contains(t, names, "task_dispatch_outbox")
}
