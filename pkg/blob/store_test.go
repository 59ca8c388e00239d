package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := "2025/restaurant-inspections/categories.csv"

	_, _, err := s.Get(ctx, key)
	require.Error(t, err)
	assert.True(t, IsNotFound(err), "missing key should map to ErrNotFound, got %v", err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = s.Head(ctx, key)
	assert.True(t, IsNotFound(err))

	info, err := s.Put(ctx, key, strings.NewReader("facility,address,city,ai_category\n"), PutOptions{ContentType: "text/csv"})
	require.NoError(t, err)
	assert.Equal(t, key, info.Key)
	assert.Equal(t, int64(34), info.Size)

	// Put overwrites.
	_, err = s.Put(ctx, key, strings.NewReader("v2"), PutOptions{})
	require.NoError(t, err)

	body, err := ReadAll(ctx, s, key)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(body))

	head, err := s.Head(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), head.Size)

	_, err = s.Put(ctx, "2025/restaurant-inspections/food-codes.csv", strings.NewReader("x"), PutOptions{})
	require.NoError(t, err)
	_, err = s.Put(ctx, "other/file.csv", strings.NewReader("y"), PutOptions{})
	require.NoError(t, err)

	list, err := s.List(ctx, "2025/")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2025/restaurant-inspections/categories.csv", list[0].Key)
	assert.Equal(t, "2025/restaurant-inspections/food-codes.csv", list[1].Key)

	deleted, err := s.Delete(ctx, key)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, rc, err := s.Get(ctx, key)
	if rc != nil {
		_, _ = io.Copy(io.Discard, rc)
		_ = rc.Close()
	}
	assert.True(t, IsNotFound(err))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	assert.Equal(t, DriverMemory, s.Driver())
	exerciseStore(t, s)

	deleted, err := s.Delete(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFSStore(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())
	exerciseStore(t, s)

	deleted, err := s.Delete(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFSStore_RejectsTraversal(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	for _, key := range []string{"", "/etc/passwd", "../outside.csv", "a/../../b"} {
		_, err := s.Put(ctx, key, strings.NewReader("x"), PutOptions{})
		assert.Error(t, err, "key %q", key)
	}
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "2025/restaurant-inspections/categories.csv", JoinKey("2025/restaurant-inspections/", "categories.csv"))
	assert.Equal(t, "2025/x/food-codes.csv", JoinKey("/2025/x", "/food-codes.csv"))
	assert.Equal(t, "categories.csv", JoinKey("", "categories.csv"))
}
