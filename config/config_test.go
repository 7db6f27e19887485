package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/jasondata/datasource"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("JASONDATA_TEST_NONE", "")
	require.NoError(t, err)

	assert.False(t, cfg.CaseSensitive)
	assert.Equal(t, "strict", cfg.NotEqual)
	assert.Equal(t, "INFO", cfg.Log.Level)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, datasource.NotEqualStrict, opts.NotEqual)
	assert.NotNil(t, opts.Logger)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JDTEST_CASE_SENSITIVE", "true")
	t.Setenv("JDTEST_NOT_EQUAL", "startsWith")
	t.Setenv("JDTEST_LOG_LEVEL", "DEBUG")

	cfg, err := Load("JDTEST_", "")
	require.NoError(t, err)
	assert.True(t, cfg.CaseSensitive)
	assert.Equal(t, "DEBUG", cfg.Log.Level)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, datasource.NotEqualAsStartsWith, opts.NotEqual)
	assert.True(t, opts.CaseSensitive)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jasondata.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not_equal: startsWith\nlog:\n  format: json\n"), 0o600))
	t.Setenv("JDFILE_LOG_FORMAT", "text")

	cfg, err := Load("JDFILE", path)
	require.NoError(t, err)
	assert.Equal(t, "startsWith", cfg.NotEqual)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("JDMISSING", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestOptionsRejectsUnknownMode(t *testing.T) {
	_, err := Config{NotEqual: "sometimes"}.Options()
	assert.Error(t, err)
}

func TestOptionsDriveDataSource(t *testing.T) {
	t.Setenv("JDDS_NOT_EQUAL", "startsWith")
	cfg, err := Load("JDDS", "")
	require.NoError(t, err)
	opts, err := cfg.Options()
	require.NoError(t, err)

	ds := datasource.New([]datasource.Row{"apple", "banana"}, datasource.WithOptions(opts))
	got, err := ds.Filter([]datasource.FilterClause{{Value: "app", Symbol: datasource.SymbolNotEqual}}, "", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []datasource.Row{"apple"}, got)
}
