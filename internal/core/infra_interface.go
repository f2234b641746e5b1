package core

import (
	"context"
	"io"

	"github.com/osezele-ek/MiniDrive/internal/models"
)

// DbClient defines all persistence operations the services and the pipeline
// need. It abstracts Postgres/pgvector so higher layers never depend on a
// specific DB and tests can run against an in-memory fake.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateFolder(ctx context.Context, folder *models.Folder) error
	GetFolderByID(ctx context.Context, id string) (*models.Folder, error)
	// ListChildFolders returns the immediate children of parentID for an
	// owner; a nil parentID selects the owner's root folders.
	ListChildFolders(ctx context.Context, ownerID string, parentID *string) ([]models.Folder, error)
	DeleteFolders(ctx context.Context, ids []string) error

	CreateFile(ctx context.Context, file *models.File) error
	GetFileByID(ctx context.Context, id string) (*models.File, error)
	ListFiles(ctx context.Context, ownerID string, folderID *string) ([]models.File, error)
	ListFilesInFolders(ctx context.Context, folderIDs []string) ([]models.File, error)
	// FinalizeFile commits the post-processing outcome in one statement:
	// mime type, optional thumbnail key and processed=true together.
	FinalizeFile(ctx context.Context, id string, mimeType, thumbKey *string) error
	DeleteFile(ctx context.Context, id string) error

	// CreateEmbedding inserts the one-per-file embedding row; a uniqueness
	// violation is reported as ErrAlreadyEmbedded.
	CreateEmbedding(ctx context.Context, emb *models.Embedding) error
	GetEmbeddingByFile(ctx context.Context, fileID string) (*models.Embedding, error)
	ListEmbeddingsByOwner(ctx context.Context, ownerID string) ([]models.Embedding, error)

	CreateShareToken(ctx context.Context, tok *models.ShareToken) error
	GetShareToken(ctx context.Context, token string) (*models.ShareToken, error)
	CreateFolderShareToken(ctx context.Context, tok *models.FolderShareToken) error
	GetFolderShareToken(ctx context.Context, token string) (*models.FolderShareToken, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so AWS can be replaced with MinIO, GCP, etc. easily.
type ObjectClient interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	GetReader(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
