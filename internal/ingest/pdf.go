package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
	"github.com/uzzysan/Klauzule-zakazane/internal/util"
)

// parsePDF extracts the native text layer page by page. When the layer is
// missing or too thin the whole document goes through OCR instead.
func (ing *Ingestor) parsePDF(ctx context.Context, data []byte, language string) Outcome {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return degraded(models.ParsedText{}, fmt.Sprintf("open pdf: %v", err))
	}
	pages := reader.NumPage()
	meta := pdfMeta(reader)

	var parts []string
	sections := make([]models.Section, 0, pages)
	offset := 0
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = util.SanitizeText(pageText)
		if pageText == "" {
			continue
		}
		if len(parts) > 0 {
			offset += 2 // page separator
		}
		pageNum := i
		sections = append(sections, models.Section{
			Title:      fmt.Sprintf("Page %d", i),
			Content:    pageText,
			Start:      offset,
			End:        offset + len(pageText),
			PageNumber: &pageNum,
		})
		offset += len(pageText)
		parts = append(parts, pageText)
	}
	fullText := strings.Join(parts, "\n\n")

	if len(strings.TrimSpace(fullText)) >= nativeTextFloor {
		return ok(models.ParsedText{
			FullText:  fullText,
			Pages:     pages,
			Sections:  sections,
			Meta:      meta,
			WordCount: wordCount(fullText),
		})
	}

	// Scan without a text layer: render + recognize. Whitespace collapses
	// to single spaces so section offsets index the full text exactly.
	res, err := ing.ocr.ExtractPDF(ctx, data, language)
	if err != nil {
		return degraded(models.ParsedText{}, fmt.Sprintf("pdf ocr: %v", err))
	}
	text := strings.Join(strings.Fields(util.SanitizeText(res.Text)), " ")
	parsed := models.ParsedText{
		FullText:  text,
		Pages:     pages,
		Sections:  rebuildSections(text, pages),
		Meta:      meta,
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

func pdfMeta(reader *pdf.Reader) models.DocumentMeta {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return models.DocumentMeta{}
	}
	return models.DocumentMeta{
		Title:   info.Key("Title").Text(),
		Author:  info.Key("Author").Text(),
		Subject: info.Key("Subject").Text(),
		Creator: info.Key("Creator").Text(),
	}
}
