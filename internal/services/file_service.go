package services

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/osezele-ek/MiniDrive/internal/core"
	"github.com/osezele-ek/MiniDrive/internal/models"
)

// JobQueue schedules file IDs for background post-processing.
type JobQueue interface {
	Enqueue(fileID string)
}

type FileService struct {
	db      core.DbClient
	storage core.ObjectClient
	jobs    JobQueue
	log     *zap.Logger
}

func NewFileService(db core.DbClient, storage core.ObjectClient, jobs JobQueue, log *zap.Logger) *FileService {
	return &FileService{db: db, storage: storage, jobs: jobs, log: log}
}

// Upload stores the raw bytes, creates the file record and enqueues the
// post-processing job. The upload response does not wait for processing.
func (s *FileService) Upload(ctx context.Context, ownerID string, folderID *string, name string, data []byte, declaredType string) (*models.File, error) {
	if folderID != nil {
		folder, err := s.db.GetFolderByID(ctx, *folderID)
		if err != nil {
			return nil, err
		}
		if folder.OwnerID != ownerID {
			return nil, core.ErrForbidden
		}
	}

	cleanName := filepath.Base(strings.TrimSpace(name))
	if cleanName == "" || cleanName == "." || cleanName == string(filepath.Separator) {
		return nil, errors.New("invalid file name")
	}

	fileID := uuid.NewString()
	key := path.Join("files", ownerID, fileID, cleanName)

	if declaredType == "" {
		declaredType = "application/octet-stream"
	}
	if err := s.storage.Upload(ctx, key, data, declaredType); err != nil {
		return nil, err
	}

	file := &models.File{
		ID:         fileID,
		OwnerID:    ownerID,
		FolderID:   folderID,
		Name:       cleanName,
		Size:       int64(len(data)),
		StorageKey: key,
		UploadedAt: time.Now(),
	}
	if err := s.db.CreateFile(ctx, file); err != nil {
		// Keep storage tidy if the metadata insert lost a name race.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.log.Warn("orphaned upload blob", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.jobs.Enqueue(file.ID)
	return file, nil
}

// Get returns the file if it belongs to ownerID.
func (s *FileService) Get(ctx context.Context, ownerID, fileID string) (*models.File, error) {
	file, err := s.db.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != ownerID {
		return nil, core.ErrForbidden
	}
	return file, nil
}

func (s *FileService) List(ctx context.Context, ownerID string, folderID *string) ([]models.File, error) {
	return s.db.ListFiles(ctx, ownerID, folderID)
}

// Download streams the stored content of an owned file.
func (s *FileService) Download(ctx context.Context, ownerID, fileID string) (*models.File, io.ReadCloser, error) {
	file, err := s.Get(ctx, ownerID, fileID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.GetReader(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return file, rc, nil
}

// Delete removes the file's blobs first, then the authoritative DB row.
// Blob deletion failures are logged, not fatal: a leaked blob is preferable
// to a dangling record. Embeddings and share tokens go with the row.
func (s *FileService) Delete(ctx context.Context, ownerID, fileID string) error {
	file, err := s.Get(ctx, ownerID, fileID)
	if err != nil {
		return err
	}
	s.deleteBlobs(ctx, file)
	return s.db.DeleteFile(ctx, file.ID)
}

// deleteBlobs releases the stored content and thumbnail of a file. Shared
// with the folder cascade.
func (s *FileService) deleteBlobs(ctx context.Context, file *models.File) {
	keys := []string{file.StorageKey}
	if file.ThumbKey != nil {
		keys = append(keys, *file.ThumbKey)
	}
	for _, key := range keys {
		ok, err := s.storage.Exists(ctx, key)
		if err != nil {
			s.log.Warn("blob existence check failed", zap.String("key", key), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			s.log.Warn("blob delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}
