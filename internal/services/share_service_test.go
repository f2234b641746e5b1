package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/osezele-ek/MiniDrive/internal/core"
)

const shareTTL = 12 * time.Hour

// shareFixture wires a ShareService onto a controllable clock.
type shareFixture struct {
	svc     *ShareService
	files   *FileService
	folders *FolderService
	db      *memDB
	clock   time.Time
}

func newShareFixture(t *testing.T) *shareFixture {
	t.Helper()
	db := newMemDB()
	storage := newMemStorage()
	files := NewFileService(db, storage, &recordingQueue{}, zap.NewNop())
	folders := NewFolderService(db, files, zap.NewNop())

	fx := &shareFixture{
		svc:     NewShareService(db, shareTTL),
		files:   files,
		folders: folders,
		db:      db,
		clock:   time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
	fx.svc.now = func() time.Time { return fx.clock }
	return fx
}

func (fx *shareFixture) advance(d time.Duration) { fx.clock = fx.clock.Add(d) }

func TestShareFileTokenLifetime(t *testing.T) {
	fx := newShareFixture(t)
	ctx := context.Background()

	file, err := fx.files.Upload(ctx, "u1", nil, "a.txt", []byte("x"), "")
	require.NoError(t, err)

	tok, err := fx.svc.ShareFile(ctx, "u1", file.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.clock.Add(shareTTL), tok.Expiry)

	got, err := fx.svc.ResolveFile(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)

	// Still live one second before expiry.
	fx.advance(shareTTL - time.Second)
	_, err = fx.svc.ResolveFile(ctx, tok.Token)
	assert.NoError(t, err)

	// Exactly at expiry the token is dead.
	fx.advance(time.Second)
	_, err = fx.svc.ResolveFile(ctx, tok.Token)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestShareFileForeignForbidden(t *testing.T) {
	fx := newShareFixture(t)
	ctx := context.Background()

	file, err := fx.files.Upload(ctx, "u1", nil, "a.txt", []byte("x"), "")
	require.NoError(t, err)

	_, err = fx.svc.ShareFile(ctx, "u2", file.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestResolveUnknownToken(t *testing.T) {
	fx := newShareFixture(t)

	_, err := fx.svc.ResolveFile(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = fx.svc.ResolveFolder(context.Background(), "no-such-token", "")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResolveFolderSubtreeBoundary(t *testing.T) {
	fx := newShareFixture(t)
	ctx := context.Background()

	shared, err := fx.folders.Create(ctx, "u1", nil, "shared")
	require.NoError(t, err)
	inside, err := fx.folders.Create(ctx, "u1", &shared.ID, "inside")
	require.NoError(t, err)
	deep, err := fx.folders.Create(ctx, "u1", &inside.ID, "deep")
	require.NoError(t, err)
	outside, err := fx.folders.Create(ctx, "u1", nil, "outside")
	require.NoError(t, err)

	tok, err := fx.svc.ShareFolder(ctx, "u1", shared.ID)
	require.NoError(t, err)

	got, err := fx.svc.ResolveFolder(ctx, tok.Token, "")
	require.NoError(t, err)
	assert.Equal(t, shared.ID, got.ID)

	got, err = fx.svc.ResolveFolder(ctx, tok.Token, deep.ID)
	require.NoError(t, err)
	assert.Equal(t, deep.ID, got.ID)

	_, err = fx.svc.ResolveFolder(ctx, tok.Token, outside.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResolveSharedFileWithinSubtree(t *testing.T) {
	fx := newShareFixture(t)
	ctx := context.Background()

	shared, err := fx.folders.Create(ctx, "u1", nil, "shared")
	require.NoError(t, err)
	deep, err := fx.folders.Create(ctx, "u1", &shared.ID, "deep")
	require.NoError(t, err)

	direct, err := fx.files.Upload(ctx, "u1", &shared.ID, "direct.txt", []byte("x"), "")
	require.NoError(t, err)
	nested, err := fx.files.Upload(ctx, "u1", &deep.ID, "nested.txt", []byte("x"), "")
	require.NoError(t, err)
	rootFile, err := fx.files.Upload(ctx, "u1", nil, "loose.txt", []byte("x"), "")
	require.NoError(t, err)

	tok, err := fx.svc.ShareFolder(ctx, "u1", shared.ID)
	require.NoError(t, err)

	got, err := fx.svc.ResolveSharedFile(ctx, tok.Token, direct.ID)
	require.NoError(t, err)
	assert.Equal(t, direct.ID, got.ID)

	got, err = fx.svc.ResolveSharedFile(ctx, tok.Token, nested.ID)
	require.NoError(t, err)
	assert.Equal(t, nested.ID, got.ID)

	// A file outside the shared subtree is invisible through the token.
	_, err = fx.svc.ResolveSharedFile(ctx, tok.Token, rootFile.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExpiredFolderTokenHidesEverything(t *testing.T) {
	fx := newShareFixture(t)
	ctx := context.Background()

	shared, err := fx.folders.Create(ctx, "u1", nil, "shared")
	require.NoError(t, err)
	file, err := fx.files.Upload(ctx, "u1", &shared.ID, "a.txt", []byte("x"), "")
	require.NoError(t, err)

	tok, err := fx.svc.ShareFolder(ctx, "u1", shared.ID)
	require.NoError(t, err)

	fx.advance(shareTTL + time.Minute)

	_, err = fx.svc.ResolveFolder(ctx, tok.Token, "")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = fx.svc.ResolveSharedFile(ctx, tok.Token, file.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMultipleTokensSameFile(t *testing.T) {
	fx := newShareFixture(t)
	ctx := context.Background()

	file, err := fx.files.Upload(ctx, "u1", nil, "a.txt", []byte("x"), "")
	require.NoError(t, err)

	first, err := fx.svc.ShareFile(ctx, "u1", file.ID)
	require.NoError(t, err)

	fx.advance(6 * time.Hour)
	second, err := fx.svc.ShareFile(ctx, "u1", file.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	// The first token expires while the second stays live.
	fx.advance(7 * time.Hour)
	_, err = fx.svc.ResolveFile(ctx, first.Token)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = fx.svc.ResolveFile(ctx, second.Token)
	assert.NoError(t, err)
}
