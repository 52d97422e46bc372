package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// MetadataRepo stores the parse output for a document. Sections and meta go
// into jsonb columns; the full text is kept alongside for re-analysis.
type MetadataRepo struct {
	db *DB
}

func NewMetadataRepo(db *DB) *MetadataRepo {
	return &MetadataRepo{db: db}
}

func (r *MetadataRepo) UpsertParsedText(ctx context.Context, documentID string, parsed models.ParsedText) error {
	sections, err := json.Marshal(parsed.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	meta, err := json.Marshal(parsed.Meta)
	if err != nil {
		return fmt.Errorf("marshal document meta: %w", err)
	}
	var ocr []byte
	if parsed.OCR != nil {
		ocr, err = json.Marshal(parsed.OCR)
		if err != nil {
			return fmt.Errorf("marshal ocr info: %w", err)
		}
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO document_metadata (document_id, full_text, pages, word_count, sections, meta, ocr)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (document_id)
DO UPDATE SET
  full_text = EXCLUDED.full_text,
  pages = EXCLUDED.pages,
  word_count = EXCLUDED.word_count,
  sections = EXCLUDED.sections,
  meta = EXCLUDED.meta,
  ocr = EXCLUDED.ocr,
  updated_at = NOW()`,
		documentID, parsed.FullText, parsed.Pages, parsed.WordCount, sections, meta, ocr,
	)
	if err != nil {
		return fmt.Errorf("upsert parsed text: %w", err)
	}
	return nil
}

func (r *MetadataRepo) GetParsedText(ctx context.Context, documentID string) (models.ParsedText, error) {
	var parsed models.ParsedText
	var sections, meta, ocr []byte
	err := r.db.Pool.QueryRow(ctx, `
SELECT full_text, pages, word_count, sections, meta, ocr
FROM document_metadata
WHERE document_id=$1`, documentID).
		Scan(&parsed.FullText, &parsed.Pages, &parsed.WordCount, &sections, &meta, &ocr)
	if err != nil {
		return models.ParsedText{}, fmt.Errorf("get parsed text: %w", err)
	}
	if err := json.Unmarshal(sections, &parsed.Sections); err != nil {
		return models.ParsedText{}, fmt.Errorf("unmarshal sections: %w", err)
	}
	if err := json.Unmarshal(meta, &parsed.Meta); err != nil {
		return models.ParsedText{}, fmt.Errorf("unmarshal document meta: %w", err)
	}
	if len(ocr) > 0 {
		parsed.OCR = &models.OCRInfo{}
		if err := json.Unmarshal(ocr, parsed.OCR); err != nil {
			return models.ParsedText{}, fmt.Errorf("unmarshal ocr info: %w", err)
		}
	}
	return parsed, nil
}
