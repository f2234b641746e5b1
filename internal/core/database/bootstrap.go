package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"time"
)

//go:embed scripts/initdb.sql
var bootstrapFS embed.FS

const embedDimToken = "__EMBED_DIM__"

// bootstrapSQL renders the schema with the configured embedding width.
func bootstrapSQL(embedDim int) (string, error) {
	if embedDim <= 0 {
		return "", fmt.Errorf("invalid embedding dimension %d", embedDim)
	}
	raw, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return "", fmt.Errorf("read initdb.sql: %w", err)
	}
	script := string(raw)
	if !strings.Contains(script, embedDimToken) {
		return "", fmt.Errorf("initdb.sql is missing the %s token", embedDimToken)
	}
	return strings.ReplaceAll(script, embedDimToken, strconv.Itoa(embedDim)), nil
}

// EnsureBootstrapped creates the schema on first startup. The meta table's
// version row marks a completed bootstrap. On an existing database the
// embeddings column width must agree with embedDim; a mismatch fails startup
// loudly instead of letting every embedding insert fail at runtime.
func EnsureBootstrapped(ctx context.Context, db *sql.DB, embedDim int) error {

	ctxBoot, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	var exists bool
	err := db.QueryRowContext(ctxBoot, `
		SELECT EXISTS (
		  SELECT 1 FROM information_schema.tables
		  WHERE table_name = 'minidrive_meta'
		)`).
		Scan(&exists)
	if err != nil {
		return fmt.Errorf("meta table check failed: %w", err)
	}

	if !exists {
		return runBootstrap(ctxBoot, db, embedDim)
	}

	var hasVersion bool
	if err := db.QueryRowContext(ctxBoot, `SELECT EXISTS (SELECT 1 FROM minidrive_meta WHERE version = 1)`).Scan(&hasVersion); err != nil {
		return fmt.Errorf("meta version check failed: %w", err)
	}
	if !hasVersion {
		return runBootstrap(ctxBoot, db, embedDim)
	}

	return checkEmbeddingWidth(ctxBoot, db, embedDim)
}

// checkEmbeddingWidth compares the live embeddings column against the
// configured dimension.
func checkEmbeddingWidth(ctx context.Context, db *sql.DB, embedDim int) error {
	const q = `
		SELECT format_type(atttypid, atttypmod)
		FROM pg_attribute
		WHERE attrelid = 'embeddings'::regclass AND attname = 'embedding'
	`
	var colType string
	if err := db.QueryRowContext(ctx, q).Scan(&colType); err != nil {
		return fmt.Errorf("embedding column check failed: %w", err)
	}
	want := fmt.Sprintf("vector(%d)", embedDim)
	if colType != want {
		return fmt.Errorf("embeddings column is %s but EMBED_DIM wants %s; migrate the column or fix the config", colType, want)
	}
	return nil
}

func runBootstrap(ctx context.Context, db *sql.DB, embedDim int) error {
	script, err := bootstrapSQL(embedDim)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec bootstrap: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}
	return nil
}
