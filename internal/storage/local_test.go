package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "http://cdn.test/uploads/", zap.NewNop())
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "postImages/abc123", strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/uploads/postImages/abc123", url)

	data, err := os.ReadFile(filepath.Join(dir, "postImages", "abc123"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestLocalStorageStaysInsideBase(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(dir, "base"), "http://cdn.test", zap.NewNop())
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "../../escape", strings.NewReader("x"), 1, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/escape", url)
	assert.FileExists(t, filepath.Join(dir, "base", "escape"))
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(Options{Driver: "ftp"}, zap.NewNop())
	assert.Error(t, err)

	_, err = New(Options{Driver: "s3"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := New(Options{Driver: "s3", S3Region: "us-west-2"}, zap.NewNop())
	require.Error(t, err)
	assert.EqualError(t, err, "S3_BUCKET is not set")
}

func TestLocalStorageErrorsNameTheStep(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewLocalStorage(filepath.Join(blocker, "nested"), "http://cdn.test", zap.NewNop())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "create storage dir: "), err.Error())
}
