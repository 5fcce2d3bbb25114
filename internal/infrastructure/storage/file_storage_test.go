package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveAndRead(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())
	ctx := context.Background()

	t.Run("saves file and creates parent directories", func(t *testing.T) {
		err := fs.Save(ctx, "b1/test.jpg", []byte("jpeg"))

		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(tempDir, "b1", "test.jpg"))
		assert.True(t, fs.Exists(ctx, "b1/test.jpg"))

		content, err := fs.Read(ctx, "b1/test.jpg")
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg"), content)
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		require.NoError(t, fs.Save(ctx, "b2/file.png", []byte("original")))
		require.NoError(t, fs.Save(ctx, "b2/file.png", []byte("updated")))

		content, err := os.ReadFile(filepath.Join(tempDir, "b2", "file.png"))
		require.NoError(t, err)
		assert.Equal(t, []byte("updated"), content)
	})

	t.Run("read of a missing file fails", func(t *testing.T) {
		_, err := fs.Read(ctx, "nope/missing.jpg")
		assert.Error(t, err)
		assert.False(t, fs.Exists(ctx, "nope/missing.jpg"))
	})
}

func TestLocalFileStorage_RejectsTraversal(t *testing.T) {
	fs := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	err := fs.Save(ctx, "../../etc/passwd", []byte("x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes base directory")
	assert.False(t, fs.Exists(ctx, "../outside.jpg"))
}

func TestLocalFileStorage_Delete(t *testing.T) {
	fs := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()
	require.NoError(t, fs.Save(ctx, "b1/test.jpg", []byte("jpeg")))

	require.NoError(t, fs.Delete(ctx, "b1/test.jpg"))
	assert.False(t, fs.Exists(ctx, "b1/test.jpg"))

	// deleting again is a no-op
	assert.NoError(t, fs.Delete(ctx, "b1/test.jpg"))
}

func TestProofPath(t *testing.T) {
	assert.Equal(t, "47qAX/test.jpg", ProofPath("47qAX", "test.jpg"))
	assert.Equal(t, "id/etcpasswd", ProofPath("id", "../etc/passwd"))
	assert.Equal(t, "id/ma_facture_1.jpeg", ProofPath("id", "ma facture 1.jpeg"))
}
