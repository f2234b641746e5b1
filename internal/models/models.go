package models

import (
	"time"
)

// User represents an account that owns folders and files.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Folder is a hierarchical container scoped to one owner. ParentID is nil for
// root folders and is assigned once at creation; deletion is the only
// structural mutation, so the tree stays acyclic by construction.
type Folder struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	ParentID  *string   `db:"parent_id" json:"parent_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// File is one uploaded artifact. MimeType stays nil until the post-processing
// job classifies the content; Processed flips false->true exactly once, set
// only by the processor's final commit together with MimeType and ThumbKey.
type File struct {
	ID         string    `db:"id" json:"id"`
	OwnerID    string    `db:"owner_id" json:"owner_id"`
	FolderID   *string   `db:"folder_id" json:"folder_id,omitempty"`
	Name       string    `db:"name" json:"name"`
	Size       int64     `db:"size" json:"size"`
	StorageKey string    `db:"storage_key" json:"-"`
	MimeType   *string   `db:"mime_type" json:"mime_type,omitempty"`
	ThumbKey   *string   `db:"thumb_key" json:"thumb_key,omitempty"`
	Processed  bool      `db:"processed" json:"processed"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Embedding holds the semantic vector for one file, one-to-one, created only
// by the post-processing job after a successful provider call. The extracted
// text that produced the vector is stored verbatim (capped at 8000 chars).
type Embedding struct {
	ID            string    `db:"id" json:"id"`
	FileID        string    `db:"file_id" json:"file_id"`
	Vector        []float32 `db:"embedding" json:"-"`
	ExtractedText string    `db:"extracted_text" json:"extracted_text"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ShareToken grants unauthenticated, time-limited access to one file.
// Tokens are immutable; expiry is fixed at creation time.
type ShareToken struct {
	Token     string    `db:"token" json:"token"`
	FileID    string    `db:"file_id" json:"file_id"`
	Expiry    time.Time `db:"expiry" json:"expiry"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the token is no longer valid at the given instant.
// A token is valid strictly before its expiry.
func (t *ShareToken) Expired(now time.Time) bool {
	return !now.Before(t.Expiry)
}

// FolderShareToken grants time-limited access to a folder and its subtree.
type FolderShareToken struct {
	Token     string    `db:"token" json:"token"`
	FolderID  string    `db:"folder_id" json:"folder_id"`
	Expiry    time.Time `db:"expiry" json:"expiry"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the token is no longer valid at the given instant.
func (t *FolderShareToken) Expired(now time.Time) bool {
	return !now.Before(t.Expiry)
}
