package ingest

import (
	"context"
	"fmt"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
	"github.com/uzzysan/Klauzule-zakazane/internal/util"
)

// parseImage always goes through OCR; the output is a single section.
func (ing *Ingestor) parseImage(ctx context.Context, data []byte, language string) Outcome {
	res, err := ing.ocr.ExtractImage(ctx, data, language)
	if err != nil {
		return degraded(models.ParsedText{}, fmt.Sprintf("image ocr: %v", err))
	}
	text := util.SanitizeText(res.Text)
	page := 1
	parsed := models.ParsedText{
		FullText: text,
		Pages:    1,
		Sections: []models.Section{{
			Title:      "Image Content",
			Content:    text,
			Start:      0,
			End:        len(text),
			PageNumber: &page,
		}},
		WordCount: wordCount(text),
		OCR: &models.OCRInfo{
			Confidence:   res.Confidence,
			Language:     res.Language,
			Preprocessed: res.Preprocessed,
		},
	}
	if text == "" {
		return degraded(parsed, "ocr produced no text")
	}
	return ok(parsed)
}
