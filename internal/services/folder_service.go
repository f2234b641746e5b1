package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/osezele-ek/MiniDrive/internal/core"
	"github.com/osezele-ek/MiniDrive/internal/models"
)

type FolderService struct {
	db    core.DbClient
	files *FileService
	log   *zap.Logger
}

func NewFolderService(db core.DbClient, files *FileService, log *zap.Logger) *FolderService {
	return &FolderService{db: db, files: files, log: log}
}

// CascadeResult summarizes a recursive folder deletion.
type CascadeResult struct {
	FoldersDeleted int
	FilesDeleted   int
}

// Create adds a folder under parentID (nil for root). The parent, when
// given, must belong to ownerID.
func (s *FolderService) Create(ctx context.Context, ownerID string, parentID *string, name string) (*models.Folder, error) {
	if parentID != nil {
		parent, err := s.db.GetFolderByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.OwnerID != ownerID {
			return nil, core.ErrForbidden
		}
	}

	folder := &models.Folder{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ParentID:  parentID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.db.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// Get returns the folder if it belongs to ownerID.
func (s *FolderService) Get(ctx context.Context, ownerID, folderID string) (*models.Folder, error) {
	folder, err := s.db.GetFolderByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.OwnerID != ownerID {
		return nil, core.ErrForbidden
	}
	return folder, nil
}

// Browse lists the immediate subfolders and files of folderID (nil for the
// owner's root).
func (s *FolderService) Browse(ctx context.Context, ownerID string, folderID *string) ([]models.Folder, []models.File, error) {
	if folderID != nil {
		if _, err := s.Get(ctx, ownerID, *folderID); err != nil {
			return nil, nil, err
		}
	}
	folders, err := s.db.ListChildFolders(ctx, ownerID, folderID)
	if err != nil {
		return nil, nil, err
	}
	files, err := s.db.ListFiles(ctx, ownerID, folderID)
	if err != nil {
		return nil, nil, err
	}
	return folders, files, nil
}

// Delete removes a folder and everything under it. The subtree is walked
// iteratively with an explicit stack, blobs are released before any row is
// removed (blob failures are logged warnings, the DB rows are the
// authoritative record), file rows go next, and folder rows are deleted
// leaves-first.
func (s *FolderService) Delete(ctx context.Context, ownerID, folderID string) (*CascadeResult, error) {
	root, err := s.Get(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}

	// Collect the subtree in discovery order; reversing it yields a valid
	// leaves-first deletion order without recursion.
	order := []string{}
	stack := []string{root.ID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, id)

		children, err := s.db.ListChildFolders(ctx, ownerID, &id)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			stack = append(stack, child.ID)
		}
	}

	files, err := s.db.ListFilesInFolders(ctx, order)
	if err != nil {
		return nil, err
	}

	// Blobs first, concurrently but bounded.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range files {
		file := files[i]
		g.Go(func() error {
			s.files.deleteBlobs(gctx, &file)
			return nil
		})
	}
	_ = g.Wait()

	for _, file := range files {
		if err := s.db.DeleteFile(ctx, file.ID); err != nil {
			return nil, err
		}
	}

	leavesFirst := make([]string, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		leavesFirst = append(leavesFirst, order[i])
	}
	if err := s.db.DeleteFolders(ctx, leavesFirst); err != nil {
		return nil, err
	}

	s.log.Info("folder cascade deleted",
		zap.String("folder_id", root.ID),
		zap.Int("folders", len(order)),
		zap.Int("files", len(files)))

	return &CascadeResult{FoldersDeleted: len(order), FilesDeleted: len(files)}, nil
}
