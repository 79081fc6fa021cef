package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/cdr-converter/db/migrations"
)

func TestDiscoverUpMigrations_SortedByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0010_later_up.sql":    {Data: []byte("SELECT 1")},
		"0002_second_up.sql":   {Data: []byte("SELECT 1")},
		"0002_second_down.sql": {Data: []byte("SELECT 1")},
		"notes.txt":            {Data: []byte("x")},
		"abc_up.sql":           {Data: []byte("SELECT 1")},
	}

	files, err := discoverUpMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, int64(2), files[0].Version)
	assert.Equal(t, int64(10), files[1].Version)
}

func TestDiscoverUpMigrations_Embedded(t *testing.T) {
	files, err := discoverUpMigrations(migrations.FS)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "0001_cdr_records_up.sql", files[0].Path)
	assert.Equal(t, "0002_conversion_runs_up.sql", files[1].Path)
}

func TestRunnerSource(t *testing.T) {
	_, err := Runner{}.source()
	assert.Error(t, err)

	src, err := Runner{Dir: "/definitely/missing", FS: migrations.FS}.source()
	require.NoError(t, err)
	assert.Equal(t, migrations.FS, src)

	dir := t.TempDir()
	src, err = Runner{Dir: dir, FS: migrations.FS}.source()
	require.NoError(t, err)
	assert.NotEqual(t, migrations.FS, src)
}
