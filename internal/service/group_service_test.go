package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splityuk/splityuk/internal/storage"
	"github.com/splityuk/splityuk/internal/storage/sqlite"
)

func newGroupService(t *testing.T) (*GroupService, storage.Store) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splityuk-group-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGroupService(store, logger), store
}

func TestGroupLifecycle(t *testing.T) {
	svc, store := newGroupService(t)
	ctx := context.Background()
	user := registerUser(t, store, "ayu@example.com")

	group, err := svc.CreateGroup(ctx, user.ID, "Anak Kos", []string{"Ayu", "Budi", "Citra"})
	require.NoError(t, err)
	assert.Len(t, group.Members, 3)

	got, err := svc.GetGroup(ctx, group.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anak Kos", got.Name)

	_, err = svc.GetGroup(ctx, group.ID, "someone-else")
	assert.ErrorIs(t, err, ErrForbidden)

	groups, err := svc.ListGroups(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	err = svc.DeleteGroup(ctx, group.ID, "someone-else")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteGroup(ctx, group.ID, user.ID))
	_, err = svc.GetGroup(ctx, group.ID, user.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateGroupValidation(t *testing.T) {
	svc, store := newGroupService(t)
	ctx := context.Background()
	user := registerUser(t, store, "ayu@example.com")

	_, err := svc.CreateGroup(ctx, user.ID, "", []string{"Ayu"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateGroup(ctx, user.ID, "Anak Kos", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateGroup(ctx, user.ID, "Anak Kos", []string{"Ayu", ""})
	assert.ErrorIs(t, err, ErrValidation)
}
