package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/osezele-ek/MiniDrive/internal/core"
	"github.com/osezele-ek/MiniDrive/internal/models"
)

// memDB is an in-memory core.DbClient for service tests. All maps are
// guarded because the folder cascade deletes blobs concurrently.
type memDB struct {
	mu           sync.Mutex
	users        map[string]*models.User
	folders      map[string]*models.Folder
	files        map[string]*models.File
	embeddings   map[string]*models.Embedding
	shareTokens  map[string]*models.ShareToken
	folderShares map[string]*models.FolderShareToken
}

var _ core.DbClient = (*memDB)(nil)

func newMemDB() *memDB {
	return &memDB{
		users:        make(map[string]*models.User),
		folders:      make(map[string]*models.Folder),
		files:        make(map[string]*models.File),
		embeddings:   make(map[string]*models.Embedding),
		shareTokens:  make(map[string]*models.ShareToken),
		folderShares: make(map[string]*models.FolderShareToken),
	}
}

func (db *memDB) CreateUser(_ context.Context, user *models.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.users[user.Email]; ok {
		return core.ErrConflict
	}
	cp := *user
	db.users[user.Email] = &cp
	return nil
}

func (db *memDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (db *memDB) CreateFolder(_ context.Context, folder *models.Folder) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *folder
	db.folders[folder.ID] = &cp
	return nil
}

func (db *memDB) GetFolderByID(_ context.Context, id string) (*models.Folder, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	f, ok := db.folders[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (db *memDB) ListChildFolders(_ context.Context, ownerID string, parentID *string) ([]models.Folder, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.Folder
	for _, f := range db.folders {
		if f.OwnerID != ownerID {
			continue
		}
		if sameRef(f.ParentID, parentID) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (db *memDB) DeleteFolders(_ context.Context, ids []string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, id := range ids {
		delete(db.folders, id)
	}
	return nil
}

func (db *memDB) CreateFile(_ context.Context, file *models.File) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, f := range db.files {
		if f.OwnerID == file.OwnerID && sameRef(f.FolderID, file.FolderID) && f.Name == file.Name {
			return core.ErrConflict
		}
	}
	cp := *file
	db.files[file.ID] = &cp
	return nil
}

func (db *memDB) GetFileByID(_ context.Context, id string) (*models.File, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	f, ok := db.files[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (db *memDB) ListFiles(_ context.Context, ownerID string, folderID *string) ([]models.File, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.File
	for _, f := range db.files {
		if f.OwnerID == ownerID && sameRef(f.FolderID, folderID) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (db *memDB) ListFilesInFolders(_ context.Context, folderIDs []string) ([]models.File, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	in := make(map[string]bool, len(folderIDs))
	for _, id := range folderIDs {
		in[id] = true
	}
	var out []models.File
	for _, f := range db.files {
		if f.FolderID != nil && in[*f.FolderID] {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (db *memDB) FinalizeFile(_ context.Context, id string, mimeType, thumbKey *string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	f, ok := db.files[id]
	if !ok {
		return core.ErrNotFound
	}
	f.MimeType = mimeType
	f.ThumbKey = thumbKey
	f.Processed = true
	return nil
}

func (db *memDB) DeleteFile(_ context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.files[id]; !ok {
		return core.ErrNotFound
	}
	delete(db.files, id)
	delete(db.embeddings, id)
	return nil
}

func (db *memDB) CreateEmbedding(_ context.Context, emb *models.Embedding) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.embeddings[emb.FileID]; ok {
		return core.ErrAlreadyEmbedded
	}
	cp := *emb
	db.embeddings[emb.FileID] = &cp
	return nil
}

func (db *memDB) GetEmbeddingByFile(_ context.Context, fileID string) (*models.Embedding, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.embeddings[fileID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (db *memDB) ListEmbeddingsByOwner(_ context.Context, ownerID string) ([]models.Embedding, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.Embedding
	for _, e := range db.embeddings {
		f, ok := db.files[e.FileID]
		if ok && f.OwnerID == ownerID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (db *memDB) CreateShareToken(_ context.Context, tok *models.ShareToken) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *tok
	db.shareTokens[tok.Token] = &cp
	return nil
}

func (db *memDB) GetShareToken(_ context.Context, token string) (*models.ShareToken, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.shareTokens[token]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (db *memDB) CreateFolderShareToken(_ context.Context, tok *models.FolderShareToken) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *tok
	db.folderShares[tok.Token] = &cp
	return nil
}

func (db *memDB) GetFolderShareToken(_ context.Context, token string) (*models.FolderShareToken, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.folderShares[token]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (db *memDB) Close() error { return nil }

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// memStorage is an in-memory core.ObjectClient recording deletions.
type memStorage struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	deleted   []string
	uploadErr error
}

var _ core.ObjectClient = (*memStorage)(nil)

func newMemStorage() *memStorage {
	return &memStorage{blobs: make(map[string][]byte)}
}

func (o *memStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.uploadErr != nil {
		return o.uploadErr
	}
	o.blobs[key] = data
	return nil
}

func (o *memStorage) Get(_ context.Context, key string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	data, ok := o.blobs[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return data, nil
}

func (o *memStorage) GetReader(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := o.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (o *memStorage) Delete(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.blobs[key]; !ok {
		return errors.New("no such key")
	}
	delete(o.blobs, key)
	o.deleted = append(o.deleted, key)
	return nil
}

func (o *memStorage) Exists(_ context.Context, key string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.blobs[key]
	return ok, nil
}

func (o *memStorage) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.blobs)
}

// recordingQueue captures enqueued file IDs.
type recordingQueue struct {
	mu  sync.Mutex
	ids []string
}

func (q *recordingQueue) Enqueue(fileID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, fileID)
}
