package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/osezele-ek/MiniDrive/internal/core"
	"github.com/osezele-ek/MiniDrive/internal/models"
)

// ShareService creates and resolves time-limited share tokens. Expired and
// unknown tokens both resolve to ErrNotFound so callers cannot distinguish
// the two.
type ShareService struct {
	db  core.DbClient
	ttl time.Duration
	now func() time.Time
}

func NewShareService(db core.DbClient, ttl time.Duration) *ShareService {
	return &ShareService{db: db, ttl: ttl, now: time.Now}
}

// ShareFile mints a token for an owned file. Multiple live tokens may exist
// for the same target.
func (s *ShareService) ShareFile(ctx context.Context, ownerID, fileID string) (*models.ShareToken, error) {
	file, err := s.db.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != ownerID {
		return nil, core.ErrForbidden
	}

	created := s.now()
	tok := &models.ShareToken{
		Token:     uuid.NewString(),
		FileID:    file.ID,
		Expiry:    created.Add(s.ttl),
		CreatedAt: created,
	}
	if err := s.db.CreateShareToken(ctx, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// ShareFolder mints a token for an owned folder.
func (s *ShareService) ShareFolder(ctx context.Context, ownerID, folderID string) (*models.FolderShareToken, error) {
	folder, err := s.db.GetFolderByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.OwnerID != ownerID {
		return nil, core.ErrForbidden
	}

	created := s.now()
	tok := &models.FolderShareToken{
		Token:     uuid.NewString(),
		FolderID:  folder.ID,
		Expiry:    created.Add(s.ttl),
		CreatedAt: created,
	}
	if err := s.db.CreateFolderShareToken(ctx, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// ResolveFile returns the shared file iff the token is live.
func (s *ShareService) ResolveFile(ctx context.Context, token string) (*models.File, error) {
	tok, err := s.db.GetShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if tok.Expired(s.now()) {
		return nil, core.ErrNotFound
	}
	return s.db.GetFileByID(ctx, tok.FileID)
}

// ResolveFolder returns the shared folder iff the token is live. When
// subfolderID is non-empty the returned folder is that subfolder, which must
// lie inside the shared subtree.
func (s *ShareService) ResolveFolder(ctx context.Context, token, subfolderID string) (*models.Folder, error) {
	tok, err := s.db.GetFolderShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if tok.Expired(s.now()) {
		return nil, core.ErrNotFound
	}

	if subfolderID == "" || subfolderID == tok.FolderID {
		return s.db.GetFolderByID(ctx, tok.FolderID)
	}

	sub, err := s.db.GetFolderByID(ctx, subfolderID)
	if err != nil {
		return nil, err
	}
	inside, err := s.withinSubtree(ctx, sub, tok.FolderID)
	if err != nil {
		return nil, err
	}
	if !inside {
		return nil, core.ErrNotFound
	}
	return sub, nil
}

// ResolveSharedFile returns a file served through a folder share. The file's
// folder must be the shared folder or one of its descendants.
func (s *ShareService) ResolveSharedFile(ctx context.Context, token, fileID string) (*models.File, error) {
	tok, err := s.db.GetFolderShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if tok.Expired(s.now()) {
		return nil, core.ErrNotFound
	}

	file, err := s.db.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.FolderID == nil {
		return nil, core.ErrNotFound
	}
	if *file.FolderID != tok.FolderID {
		folder, err := s.db.GetFolderByID(ctx, *file.FolderID)
		if err != nil {
			return nil, err
		}
		inside, err := s.withinSubtree(ctx, folder, tok.FolderID)
		if err != nil {
			return nil, err
		}
		if !inside {
			return nil, core.ErrNotFound
		}
	}
	return file, nil
}

// withinSubtree walks parent pointers from folder up to the root and reports
// whether rootID is an ancestor (or the folder itself).
func (s *ShareService) withinSubtree(ctx context.Context, folder *models.Folder, rootID string) (bool, error) {
	current := folder
	for current != nil {
		if current.ID == rootID {
			return true, nil
		}
		if current.ParentID == nil {
			return false, nil
		}
		parent, err := s.db.GetFolderByID(ctx, *current.ParentID)
		if err != nil {
			return false, err
		}
		current = parent
	}
	return false, nil
}
