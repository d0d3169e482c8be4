package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ptrskay3/pysprint-cli/internal/config"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644))
	}
}

func names(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "c.trt", "a.trt", "b.txt", "notes.md", "skip.trt", "x_randomfile.trt", "noext")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.trt"), 0755))
	touch(t, filepath.Join(dir, "sub.trt"), "deep.trt")

	opts := config.LoadOptions{
		Extensions:      config.StringList{"trt", ".txt"},
		SkipFiles:       config.StringList{"skip.trt"},
		ExcludePatterns: config.StringList{"*_randomfile.trt"},
	}
	files, err := Discover(dir, opts)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"a.trt", "b.txt", "c.trt"}, names(files)); diff != "" {
		t.Errorf("discovered files mismatch (-want +got):\n%s", diff)
	}
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f), f)
	}
}

func TestDiscover_ExcludeMatchesAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ifg1.trt", "ifg2.trt", "ref1.trt")

	opts := config.LoadOptions{
		Extensions:      config.StringList{"trt"},
		ExcludePatterns: config.StringList{"ref?.trt"},
	}
	files, err := Discover(dir, opts)
	require.NoError(t, err)
	assert.Len(t, files, 3, "pattern without a leading * cannot match an absolute path")

	opts.ExcludePatterns = config.StringList{"*/ref?.trt"}
	files, err = Discover(dir, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"ifg1.trt", "ifg2.trt"}, names(files))
}

func TestDiscover_UnreadableDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), config.LoadOptions{Extensions: config.StringList{"trt"}})
	var derr *DiscoveryError
	require.True(t, errors.As(err, &derr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWildMatch(t *testing.T) {
	tests := []struct {
		pattern, s string
		want       bool
	}{
		{"*", "", true},
		{"*", "/a/b/c", true},
		{"*.trt", "/data/x.trt", true},
		{"*.trt", "/data/x.TRT", false},
		{"?", "ab", false},
		{"a?c", "abc", true},
		{"a*b*c", "a/xx/b/yy/c", true},
		{"a*b*c", "a/xx/b/yy/cd", false},
		{"*_sam*", "/m/run_sample.txt", true},
		{"abc", "abc", true},
		{"abc", "abcd", false},
		{"", "", true},
		{"a*c", "a*bc", true},
		{"a*c", "a*b", false},
		{"*", "*", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WildMatch(tt.pattern, tt.s), "%q ~ %q", tt.pattern, tt.s)
	}
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("/a/b.trt", []string{"trt"}))
	assert.True(t, HasExtension("b.txt", []string{".txt"}))
	assert.False(t, HasExtension("b", []string{""}))
	assert.False(t, HasExtension("b.py", []string{"trt"}))
}
