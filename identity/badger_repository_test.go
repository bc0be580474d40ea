package identity

import (
	"chat-rooms/domain"
	"chat-rooms/errors"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBadgerRepository_LoadEmpty(t *testing.T) {
	req := require.New(t)
	db, err := OpenBadger(t.TempDir(), "tab-1")
	req.NoError(err)
	defer db.Close()

	_, err = NewBadgerRepository(db, slog.Default()).Load(context.Background())
	req.ErrorIs(err, errors.ErrIdentityNotFound)
}

func TestBadgerRepository_SurvivesReopen(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	// Given a first run persisted an identity
	db, err := OpenBadger(dir, "tab-1")
	req.NoError(err)
	first := NewStore(slog.Default(), NewBadgerRepository(db, slog.Default())).GetOrCreate(ctx)
	req.NoError(db.Close())

	// When the same scope is opened again
	db, err = OpenBadger(dir, "tab-1")
	req.NoError(err)
	defer db.Close()
	second := NewStore(slog.Default(), NewBadgerRepository(db, slog.Default())).GetOrCreate(ctx)

	// Then the identity is the same
	req.Equal(first, second)
}

func TestBadgerRepository_ScopesAreIsolated(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	db1, err := OpenBadger(dir, "tab-1")
	req.NoError(err)
	defer db1.Close()
	db2, err := OpenBadger(dir, "tab-2")
	req.NoError(err)
	defer db2.Close()

	first := NewStore(slog.Default(), NewBadgerRepository(db1, slog.Default())).GetOrCreate(ctx)
	second := NewStore(slog.Default(), NewBadgerRepository(db2, slog.Default())).GetOrCreate(ctx)

	req.NotEqual(first, second)
}

func TestBadgerRepository_SaveThenLoad(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db, err := OpenBadger(t.TempDir(), "tab-1")
	req.NoError(err)
	defer db.Close()
	repository := NewBadgerRepository(db, slog.Default())

	req.NoError(repository.Save(ctx, "c1"))

	id, err := repository.Load(ctx)
	req.NoError(err)
	req.Equal(domain.ClientID("c1"), id)
}

func TestOpenBadger_RequiresScope(t *testing.T) {
	_, err := OpenBadger(t.TempDir(), "")
	require.ErrorIs(t, err, errors.ErrIdentityUnavailable)
}
