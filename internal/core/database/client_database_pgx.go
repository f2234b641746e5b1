package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/osezele-ek/MiniDrive/internal/config"
	"github.com/osezele-ek/MiniDrive/internal/core"
	"github.com/osezele-ek/MiniDrive/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, cfg.EmbedDim); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// orNow fills in creation timestamps callers left zero.
func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.Email, user.PasswordHash, orNow(user.CreatedAt))
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Folders

func (c *DatabaseClient) CreateFolder(ctx context.Context, folder *models.Folder) error {
	if folder == nil {
		return errors.New("nil folder")
	}
	const q = `
		INSERT INTO folders (id, owner_id, parent_id, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := c.db.ExecContext(ctx, q,
		folder.ID, folder.OwnerID, folder.ParentID, folder.Name, orNow(folder.CreatedAt))
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (c *DatabaseClient) GetFolderByID(ctx context.Context, id string) (*models.Folder, error) {
	const q = `
		SELECT id, owner_id, parent_id, name, created_at
		FROM folders WHERE id = $1
	`
	var f models.Folder
	err := c.db.QueryRowContext(ctx, q, id).Scan(&f.ID, &f.OwnerID, &f.ParentID, &f.Name, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *DatabaseClient) ListChildFolders(ctx context.Context, ownerID string, parentID *string) ([]models.Folder, error) {
	const q = `
		SELECT id, owner_id, parent_id, name, created_at
		FROM folders
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY name ASC
	`
	rows, err := c.db.QueryContext(ctx, q, ownerID, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Folder
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.ParentID, &f.Name, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteFolders removes folder rows by ID. Callers pass the subtree in
// leaves-first order after file rows and blobs are already gone; the FK
// cascade makes ordering a formality, but the contract stays explicit.
func (c *DatabaseClient) DeleteFolders(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	const q = `DELETE FROM folders WHERE id = $1`
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Files

func (c *DatabaseClient) CreateFile(ctx context.Context, file *models.File) error {
	if file == nil {
		return errors.New("nil file")
	}
	const q = `
		INSERT INTO files
			(id, owner_id, folder_id, name, size, storage_key, mime_type, thumb_key, processed, uploaded_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := c.db.ExecContext(ctx, q,
		file.ID, file.OwnerID, file.FolderID, file.Name, file.Size,
		file.StorageKey, file.MimeType, file.ThumbKey, file.Processed, orNow(file.UploadedAt))
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (c *DatabaseClient) GetFileByID(ctx context.Context, id string) (*models.File, error) {
	const q = `
		SELECT id, owner_id, folder_id, name, size, storage_key, mime_type, thumb_key, processed, uploaded_at
		FROM files WHERE id = $1
	`
	var f models.File
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&f.ID, &f.OwnerID, &f.FolderID, &f.Name, &f.Size,
		&f.StorageKey, &f.MimeType, &f.ThumbKey, &f.Processed, &f.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *DatabaseClient) ListFiles(ctx context.Context, ownerID string, folderID *string) ([]models.File, error) {
	const q = `
		SELECT id, owner_id, folder_id, name, size, storage_key, mime_type, thumb_key, processed, uploaded_at
		FROM files
		WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2
		ORDER BY uploaded_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, ownerID, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFiles(rows)
}

func (c *DatabaseClient) ListFilesInFolders(ctx context.Context, folderIDs []string) ([]models.File, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}
	const q = `
		SELECT id, owner_id, folder_id, name, size, storage_key, mime_type, thumb_key, processed, uploaded_at
		FROM files
		WHERE folder_id = ANY($1::uuid[])
		ORDER BY uploaded_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, folderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFiles(rows)
}

func scanFiles(rows *sql.Rows) ([]models.File, error) {
	var out []models.File
	for rows.Next() {
		var f models.File
		if err := rows.Scan(
			&f.ID, &f.OwnerID, &f.FolderID, &f.Name, &f.Size,
			&f.StorageKey, &f.MimeType, &f.ThumbKey, &f.Processed, &f.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FinalizeFile commits the post-processing outcome in a single statement so
// the processed flag never becomes visible without its mime type/thumbnail.
func (c *DatabaseClient) FinalizeFile(ctx context.Context, id string, mimeType, thumbKey *string) error {
	const q = `
		UPDATE files
		SET mime_type = $2, thumb_key = $3, processed = TRUE
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, mimeType, thumbKey)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (c *DatabaseClient) DeleteFile(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Embeddings

func (c *DatabaseClient) CreateEmbedding(ctx context.Context, emb *models.Embedding) error {
	if emb == nil {
		return errors.New("nil embedding")
	}
	const q = `
		INSERT INTO embeddings (id, file_id, embedding, extracted_text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	vec := pgvector.NewVector(emb.Vector)
	_, err := c.db.ExecContext(ctx, q, emb.ID, emb.FileID, vec, emb.ExtractedText, orNow(emb.CreatedAt))
	if isUniqueViolation(err) {
		return core.ErrAlreadyEmbedded
	}
	return err
}

func (c *DatabaseClient) GetEmbeddingByFile(ctx context.Context, fileID string) (*models.Embedding, error) {
	const q = `
		SELECT id, file_id, embedding, extracted_text, created_at
		FROM embeddings WHERE file_id = $1
	`
	var (
		e   models.Embedding
		vec pgvector.Vector
	)
	err := c.db.QueryRowContext(ctx, q, fileID).Scan(&e.ID, &e.FileID, &vec, &e.ExtractedText, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Vector = vec.Slice()
	return &e, nil
}

// ListEmbeddingsByOwner loads every embedding belonging to the owner's files,
// the candidate set for an in-process similarity ranking.
func (c *DatabaseClient) ListEmbeddingsByOwner(ctx context.Context, ownerID string) ([]models.Embedding, error) {
	const q = `
		SELECT e.id, e.file_id, e.embedding, e.extracted_text, e.created_at
		FROM embeddings e
		JOIN files f ON f.id = e.file_id
		WHERE f.owner_id = $1
		ORDER BY e.created_at ASC, e.id ASC
	`
	rows, err := c.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Embedding
	for rows.Next() {
		var (
			e   models.Embedding
			vec pgvector.Vector
		)
		if err := rows.Scan(&e.ID, &e.FileID, &vec, &e.ExtractedText, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Vector = vec.Slice()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Share tokens

func (c *DatabaseClient) CreateShareToken(ctx context.Context, tok *models.ShareToken) error {
	if tok == nil {
		return errors.New("nil token")
	}
	const q = `
		INSERT INTO share_tokens (token, file_id, expiry, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := c.db.ExecContext(ctx, q, tok.Token, tok.FileID, tok.Expiry, orNow(tok.CreatedAt))
	return err
}

func (c *DatabaseClient) GetShareToken(ctx context.Context, token string) (*models.ShareToken, error) {
	const q = `
		SELECT token, file_id, expiry, created_at
		FROM share_tokens WHERE token = $1
	`
	var t models.ShareToken
	err := c.db.QueryRowContext(ctx, q, token).Scan(&t.Token, &t.FileID, &t.Expiry, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *DatabaseClient) CreateFolderShareToken(ctx context.Context, tok *models.FolderShareToken) error {
	if tok == nil {
		return errors.New("nil token")
	}
	const q = `
		INSERT INTO folder_share_tokens (token, folder_id, expiry, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := c.db.ExecContext(ctx, q, tok.Token, tok.FolderID, tok.Expiry, orNow(tok.CreatedAt))
	return err
}

func (c *DatabaseClient) GetFolderShareToken(ctx context.Context, token string) (*models.FolderShareToken, error) {
	const q = `
		SELECT token, folder_id, expiry, created_at
		FROM folder_share_tokens WHERE token = $1
	`
	var t models.FolderShareToken
	err := c.db.QueryRowContext(ctx, q, token).Scan(&t.Token, &t.FolderID, &t.Expiry, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
