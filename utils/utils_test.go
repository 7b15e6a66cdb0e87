package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvDuration(t *testing.T) {
	const key = "IMGSCRAPER_TEST_WAIT"

	t.Run("fallback when unset", func(t *testing.T) {
		t.Setenv(key, "")
		assert.Equal(t, 5*time.Second, GetEnvDuration(key, 5*time.Second))
	})

	t.Run("parses ISO 8601", func(t *testing.T) {
		t.Setenv(key, "PT1M30S")
		assert.Equal(t, 90*time.Second, GetEnvDuration(key, 5*time.Second))
	})

	t.Run("fallback when invalid", func(t *testing.T) {
		t.Setenv(key, "five seconds")
		assert.Equal(t, 5*time.Second, GetEnvDuration(key, 5*time.Second))
	})
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.download")
	dst := filepath.Join(dir, "1.jpeg")
	require.NoError(t, os.WriteFile(src, []byte("image"), 0o644))

	require.NoError(t, MoveFile(src, dst))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "image", string(content))
}

func TestMoveFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := MoveFile(filepath.Join(dir, "nope"), filepath.Join(dir, "1.jpeg"))
	assert.Error(t, err)
}

// crossDevice makes every rename fail the way it does between filesystems.
func crossDevice(t *testing.T) {
	t.Helper()
	rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errors.New("invalid cross-device link")}
	}
	t.Cleanup(func() { rename = os.Rename })
}

func TestMoveFile_CopyFallback(t *testing.T) {
	crossDevice(t)

	t.Run("copies and removes the source", func(t *testing.T) {
		srcDir, dstDir := t.TempDir(), t.TempDir()
		src := filepath.Join(srcDir, "src.download")
		dst := filepath.Join(dstDir, "1.jpeg")
		require.NoError(t, os.WriteFile(src, []byte("image"), 0o644))

		require.NoError(t, MoveFile(src, dst))

		_, err := os.Stat(src)
		assert.True(t, os.IsNotExist(err))
		content, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "image", string(content))
	})

	t.Run("keeps an existing destination", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "src.download")
		dst := filepath.Join(dir, "1.jpeg")
		require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))
		require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))

		err := MoveFile(src, dst)
		require.Error(t, err)
		assert.True(t, os.IsExist(err))

		content, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "old", string(content))
		_, err = os.Stat(src)
		assert.NoError(t, err)
	})

	t.Run("removes a partial destination when the copy fails", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "src.download")
		dst := filepath.Join(dir, "1.jpeg")
		// Opening a directory works, reading from it does not.
		require.NoError(t, os.Mkdir(src, 0o755))

		require.Error(t, MoveFile(src, dst))

		_, err := os.Stat(dst)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(src)
		assert.NoError(t, err)
	})

	t.Run("missing source", func(t *testing.T) {
		dir := t.TempDir()
		err := MoveFile(filepath.Join(dir, "nope"), filepath.Join(dir, "1.jpeg"))
		require.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})
}
