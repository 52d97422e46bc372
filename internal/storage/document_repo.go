package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) InsertDocument(ctx context.Context, d models.Document) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO documents (document_id, filename, mime_type, language, size_bytes, status, object_location, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.DocumentID, d.Filename, d.MimeType, d.Language, d.SizeBytes, d.Status, d.ObjectLocation, d.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) GetDocument(ctx context.Context, documentID string) (models.Document, error) {
	var d models.Document
	err := r.db.Pool.QueryRow(ctx, `
SELECT document_id::text, filename, mime_type, language, size_bytes, COALESCE(pages, 0),
       status, object_location, ocr_required, ocr_completed, ocr_confidence,
       created_at, updated_at, expires_at
FROM documents
WHERE document_id=$1`, documentID).
		Scan(&d.DocumentID, &d.Filename, &d.MimeType, &d.Language, &d.SizeBytes, &d.Pages,
			&d.Status, &d.ObjectLocation, &d.OCRRequired, &d.OCRCompleted, &d.OCRConfidence,
			&d.CreatedAt, &d.UpdatedAt, &d.ExpiresAt)
	if err != nil {
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (r *DocumentRepo) UpdateDocumentStatus(ctx context.Context, documentID, status string) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE documents SET status=$2, updated_at=NOW() WHERE document_id=$1`, documentID, status)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

// RecordParseOutcome writes the parse-derived fields after ingestion.
func (r *DocumentRepo) RecordParseOutcome(ctx context.Context, documentID string, pages int, ocr *models.OCRInfo) error {
	var confidence *float64
	ocrRequired := ocr != nil
	if ocr != nil {
		c := ocr.Confidence
		confidence = &c
	}
	_, err := r.db.Pool.Exec(ctx, `
UPDATE documents
SET pages=$2, ocr_required=$3, ocr_completed=$3, ocr_confidence=$4, updated_at=NOW()
WHERE document_id=$1`, documentID, pages, ocrRequired, confidence)
	if err != nil {
		return fmt.Errorf("record parse outcome: %w", err)
	}
	return nil
}

// FailStuckDocuments marks documents that have sat in processing past the
// TTL as failed. It returns the ids it touched.
func (r *DocumentRepo) FailStuckDocuments(ctx context.Context, olderThan time.Duration) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
UPDATE documents
SET status=$1, updated_at=NOW()
WHERE status=$2 AND updated_at < NOW() - $3::interval
RETURNING document_id::text`,
		models.DocStatusFailed, models.DocStatusProcessing, fmt.Sprintf("%d minutes", int(olderThan.Minutes())))
	if err != nil {
		return nil, fmt.Errorf("fail stuck documents: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stuck document id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stuck documents: %w", err)
	}
	return ids, nil
}

// ExpireDocuments flips documents past their retention window to expired.
func (r *DocumentRepo) ExpireDocuments(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
UPDATE documents
SET status=$1, updated_at=NOW()
WHERE expires_at IS NOT NULL AND expires_at < NOW() AND status NOT IN ($1, $2)
RETURNING document_id::text`,
		models.DocStatusExpired, models.DocStatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("expire documents: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired document id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired documents: %w", err)
	}
	return ids, nil
}
