package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	created, err := Prepare(path, false)
	require.NoError(t, err)
	assert.True(t, created)
	data, _ := os.ReadFile(path)
	assert.Equal(t, "{ }", string(data))

	require.NoError(t, os.WriteFile(path, []byte(`{"a.trt": {}}`), 0644))
	created, err = Prepare(path, false)
	require.NoError(t, err)
	assert.False(t, created)
	data, _ = os.ReadFile(path)
	assert.Equal(t, `{"a.trt": {}}`, string(data), "existing store must be left alone")

	created, err = Prepare(path, true)
	require.NoError(t, err)
	assert.True(t, created)
	data, _ = os.ReadFile(path)
	assert.Equal(t, "{ }", string(data))
}

func TestPrepare_Directory(t *testing.T) {
	_, err := Prepare(t.TempDir(), true)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("/data", "results.json"), Resolve("/data", ""))
	assert.Equal(t, filepath.Join("/data", "out.json"), Resolve("/data", "out.json"))
	assert.Equal(t, "/tmp/r.json", Resolve("/data", "/tmp/r.json"))
}
