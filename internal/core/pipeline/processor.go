package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/osezele-ek/MiniDrive/internal/core"
	"github.com/osezele-ek/MiniDrive/internal/models"
)

// Stage names the pipeline steps for degradation reporting.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageThumbnail Stage = "thumbnail"
	StageEmbed     Stage = "embed"
)

// Report records what one post-processing run produced. Stage errors are
// degradations, not failures: the job still completed and the file is marked
// processed. Tests assert on these instead of parsing log output.
type Report struct {
	FileID      string
	Kind        Kind
	MimeType    string
	TextLen     int
	ThumbKey    string
	Embedded    bool
	StageErrors map[Stage]error
}

func (r *Report) degrade(stage Stage, err error) {
	if r.StageErrors == nil {
		r.StageErrors = make(map[Stage]error)
	}
	r.StageErrors[stage] = err
}

// Store is the slice of persistence the pipeline needs. core.DbClient
// satisfies it.
type Store interface {
	GetFileByID(ctx context.Context, id string) (*models.File, error)
	FinalizeFile(ctx context.Context, id string, mimeType, thumbKey *string) error
	CreateEmbedding(ctx context.Context, emb *models.Embedding) error
}

// ObjectStore is the slice of object storage the pipeline needs.
// core.ObjectClient satisfies it.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Processor runs the per-file post-processing job: classify, extract,
// thumbnail, embed, persist. Jobs are enqueued by file ID after the file row
// and its stored bytes exist; the enqueuer guarantees at most one in-flight
// job per file.
type Processor struct {
	db       Store
	obj      ObjectStore
	embedder core.EmbeddingProvider
	log      *zap.Logger
	jobs     chan string
}

// NewProcessor constructs the processor with a bounded job queue (64).
func NewProcessor(db Store, obj ObjectStore, emb core.EmbeddingProvider, log *zap.Logger) *Processor {
	return &Processor{
		db: db, obj: obj, embedder: emb, log: log,
		jobs: make(chan string, 64),
	}
}

// Start launches numWorkers goroutines reading from the jobs channel until
// the context is cancelled.
func (p *Processor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					p.log.Info("pipeline worker shutting down", zap.Int("worker", w))
					return
				case fileID := <-p.jobs:
					if _, err := p.ProcessOne(ctx, fileID); err != nil {
						p.log.Error("post-processing failed",
							zap.String("file_id", fileID), zap.Int("worker", w), zap.Error(err))
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a file ID for post-processing. If the queue is full,
// this call blocks until space frees up. Re-enqueueing a file whose earlier
// run died before the final commit is the supported reprocess path.
func (p *Processor) Enqueue(fileID string) {
	p.jobs <- fileID
}

// ProcessOne drives the full pipeline for one file. Every stage is allowed
// to fail independently; its error is recorded on the report and treated as
// "produced nothing". The only hard failures are the file row being missing
// and the final persist: in both cases processed stays false and the error
// is returned. On success the file's mime type, optional thumbnail key and
// processed flag are committed together, exactly once.
func (p *Processor) ProcessOne(ctx context.Context, fileID string) (*Report, error) {
	// A job that already started runs to completion even while the worker
	// pool shuts down; only the timeout bounds it. WithoutCancel keeps the
	// caller's values without inheriting its cancellation.
	procCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Minute)
	defer cancel()

	file, err := p.db.GetFileByID(procCtx, fileID)
	if err != nil {
		return nil, fmt.Errorf("load file %s: %w", fileID, err)
	}

	report := &Report{FileID: fileID}

	var data []byte
	if raw, err := p.obj.Get(procCtx, file.StorageKey); err != nil {
		report.degrade(StageFetch, err)
	} else {
		data = raw
	}

	mimeType, kind := Classify(file.Name, head(data))
	report.MimeType = mimeType
	report.Kind = kind

	var (
		text  string
		thumb []byte
	)
	if data != nil {
		switch kind {
		case KindPDF:
			var exErr error
			text, thumb, exErr = ExtractPDF(data)
			if exErr != nil {
				report.degrade(StageExtract, exErr)
			}
		case KindText:
			text = ExtractPlainText(data)
		case KindDocument:
			var exErr error
			text, exErr = ExtractDocument(data, mimeType)
			if exErr != nil {
				report.degrade(StageExtract, exErr)
			}
		case KindUnsupported:
			// Nothing to extract; the file is still marked processed.
		}
	}
	report.TextLen = len([]rune(text))

	var thumbKey *string
	if len(thumb) > 0 {
		// Keyed by file ID, not the display name, so same-named files in
		// different folders never collide.
		key := path.Join("thumbs", file.ID+"_thumb.png")
		if err := p.obj.Upload(procCtx, key, thumb, "image/png"); err != nil {
			report.degrade(StageThumbnail, err)
		} else {
			thumbKey = &key
			report.ThumbKey = key
		}
	}

	if text != "" {
		if err := p.embed(procCtx, file, text, report); err != nil {
			report.degrade(StageEmbed, err)
		}
	}

	var mimePtr *string
	if mimeType != "" {
		mimePtr = &mimeType
	}
	if err := p.db.FinalizeFile(procCtx, fileID, mimePtr, thumbKey); err != nil {
		return report, fmt.Errorf("finalize file %s: %w", fileID, err)
	}

	for stage, serr := range report.StageErrors {
		p.log.Warn("pipeline stage degraded",
			zap.String("file_id", fileID),
			zap.String("stage", string(stage)),
			zap.Error(serr))
	}
	p.log.Info("file processed",
		zap.String("file_id", fileID),
		zap.String("kind", kind.String()),
		zap.Int("text_len", report.TextLen),
		zap.Bool("embedded", report.Embedded))

	return report, nil
}

// embed requests a vector for the extracted text and persists the embedding
// row. A uniqueness violation means a previous run already embedded this
// file; that is a normal outcome, not a degradation.
func (p *Processor) embed(ctx context.Context, file *models.File, text string, report *Report) error {
	vec, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		return fmt.Errorf("embed text: %w", err)
	}

	emb := &models.Embedding{
		ID:            uuid.NewString(),
		FileID:        file.ID,
		Vector:        vec,
		ExtractedText: text,
	}
	if err := p.db.CreateEmbedding(ctx, emb); err != nil {
		if errors.Is(err, core.ErrAlreadyEmbedded) {
			p.log.Info("file already embedded, skipping", zap.String("file_id", file.ID))
			return nil
		}
		return fmt.Errorf("persist embedding: %w", err)
	}
	report.Embedded = true
	return nil
}

// head returns the sniffing prefix for content-type detection.
func head(data []byte) []byte {
	const sniffLen = 512
	if len(data) > sniffLen {
		return data[:sniffLen]
	}
	return data
}
