package logtail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithEmptyPathStaysEmpty(t *testing.T) {
	tail, err := New("", 10)
	require.NoError(t, err)
	assert.Empty(t, tail.Lines())
}

func TestNewLoadsExistingContentImmediately(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.log")
	require.NoError(t, os.WriteFile(path, []byte("line1\nline2\nline3\n"), 0o644))

	tail, err := New(path, 10)
	require.NoError(t, err)
	defer tail.Close()

	assert.Equal(t, []string{"line1", "line2", "line3"}, tail.Lines())
}

func TestNewBoundsToMaxLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.log")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\nd\ne\n"), 0o644))

	tail, err := New(path, 2)
	require.NoError(t, err)
	defer tail.Close()

	assert.Equal(t, []string{"d", "e"}, tail.Lines())
}

func TestReloadPicksUpAppendedBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.log")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o644))

	tail, err := New(path, 10)
	require.NoError(t, err)
	defer tail.Close()
	require.Equal(t, []string{"first"}, tail.Lines())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("second\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	tail.reload()
	assert.Equal(t, []string{"first", "second"}, tail.Lines())
}

func TestReloadMissingFileLeavesLinesUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.log")

	tail, err := New(path, 10)
	require.NoError(t, err)
	defer tail.Close()
	assert.Empty(t, tail.Lines())
}
