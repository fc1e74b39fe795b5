// manager_test.go - Tests for the document store
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `<robot name="solo"><link name="only"/></robot>`

func createTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestNewLocalStore(t *testing.T) {
	t.Run("creates upload directory", func(t *testing.T) {
		uploadDir := filepath.Join(t.TempDir(), "data", "uploads")

		_, err := NewLocalStore(uploadDir)
		require.NoError(t, err)

		info, err := os.Stat(uploadDir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("fails when path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "taken")
		require.NoError(t, os.WriteFile(file, nil, 0644))

		_, err := NewLocalStore(file)
		assert.Error(t, err)
	})
}

func TestLocalStore_Save(t *testing.T) {
	t.Run("saves document from reader", func(t *testing.T) {
		store := createTestStore(t)

		info, err := store.Save("solo.urdf", strings.NewReader(sampleDoc))
		require.NoError(t, err)

		assert.NotEmpty(t, info.ID)
		assert.Equal(t, "solo.urdf", info.Name)
		assert.Equal(t, int64(len(sampleDoc)), info.Size)
		assert.Equal(t, "uploaded", info.Status)
		assert.WithinDuration(t, time.Now(), info.UploadedAt, time.Minute)
		assert.Equal(t, Digest([]byte(sampleDoc)), info.Digest)
		assert.Len(t, info.Digest, 64)

		path, err := store.GetFilePath(info.ID)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, sampleDoc, string(data))
	})

	t.Run("same content same digest", func(t *testing.T) {
		store := createTestStore(t)

		a, err := store.SaveBytes("a.urdf", []byte(sampleDoc))
		require.NoError(t, err)
		b, err := store.Save("b.urdf", strings.NewReader(sampleDoc))
		require.NoError(t, err)
		c, err := store.SaveBytes("c.urdf", []byte(sampleDoc+" "))
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
		assert.Equal(t, a.Digest, b.Digest)
		assert.NotEqual(t, a.Digest, c.Digest)
	})

	t.Run("read error removes partial file", func(t *testing.T) {
		store := createTestStore(t)

		_, err := store.Save("broken.urdf", &failingReader{})
		require.Error(t, err)

		entries, err := os.ReadDir(store.uploadDir)
		require.NoError(t, err)
		assert.Empty(t, entries)

		list, _ := store.List(0)
		assert.Empty(t, list)
	})
}

func TestLocalStore_Get(t *testing.T) {
	store := createTestStore(t)
	saved, err := store.SaveBytes("solo.urdf", []byte(sampleDoc))
	require.NoError(t, err)

	got, err := store.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, err = store.Get("missing")
	assert.True(t, errors.Is(err, ErrFileNotFound))
}

func TestLocalStore_List(t *testing.T) {
	store := createTestStore(t)
	for _, name := range []string{"a.urdf", "b.urdf", "c.urdf"} {
		_, err := store.SaveBytes(name, []byte(sampleDoc))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	t.Run("newest first", func(t *testing.T) {
		list, err := store.List(10)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "c.urdf", list[0].Name)
		assert.Equal(t, "a.urdf", list[2].Name)
	})

	t.Run("limits results", func(t *testing.T) {
		list, err := store.List(2)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("zero limit returns all", func(t *testing.T) {
		list, err := store.List(0)
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})
}

func TestLocalStore_Delete(t *testing.T) {
	store := createTestStore(t)
	saved, err := store.SaveBytes("solo.urdf", []byte(sampleDoc))
	require.NoError(t, err)
	path, _ := store.GetFilePath(saved.ID)

	require.NoError(t, store.Delete(saved.ID))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = store.Get(saved.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)

	assert.ErrorIs(t, store.Delete(saved.ID), ErrFileNotFound)
}

func TestLocalStore_Rename(t *testing.T) {
	store := createTestStore(t)
	saved, err := store.SaveBytes("solo.urdf", []byte(sampleDoc))
	require.NoError(t, err)

	renamed, err := store.Rename(saved.ID, "renamed.urdf")
	require.NoError(t, err)
	assert.Equal(t, "renamed.urdf", renamed.Name)
	assert.Equal(t, saved.Digest, renamed.Digest)

	_, err = store.Rename("missing", "x")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStore_GetFilePath(t *testing.T) {
	store := createTestStore(t)
	saved, err := store.SaveBytes("solo.urdf", []byte(sampleDoc))
	require.NoError(t, err)

	path, err := store.GetFilePath(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.uploadDir, saved.ID), path)

	_, err = store.GetFilePath("missing")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStore_ConcurrentAccess(t *testing.T) {
	store := createTestStore(t)

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(n int) {
			content := sampleDoc + strings.Repeat(" ", n)
			if _, err := store.Save("robot.urdf", strings.NewReader(content)); err != nil {
				t.Errorf("Failed to save file: %v", err)
			}
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	files, err := store.List(20)
	require.NoError(t, err)
	assert.Len(t, files, 10)
}

// failingReader fails on the first read.
type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
