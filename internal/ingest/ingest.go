package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
	"github.com/uzzysan/Klauzule-zakazane/internal/ocr"
	"github.com/uzzysan/Klauzule-zakazane/internal/util"
)

// Extraction below this many characters means the source is a scan with no
// usable text layer; OCR takes over.
const nativeTextFloor = 100

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
)

// Outcome is the tagged result of parsing one document. Degraded carries
// whatever text survived plus the reason, so callers can warn instead of
// silently reporting success on empty input.
type Outcome struct {
	Status string            `json:"status"`
	Parsed models.ParsedText `json:"parsed"`
	Reason string            `json:"reason,omitempty"`
}

// Ingestor converts raw file bytes of a known MIME type into normalized
// text plus structural sections.
type Ingestor struct {
	ocr ocr.Client
}

func New(ocrClient ocr.Client) *Ingestor {
	return &Ingestor{ocr: ocrClient}
}

// Parse routes by MIME type. The only hard error is an unrecognized
// format; internal extraction failures degrade instead of aborting.
func (ing *Ingestor) Parse(ctx context.Context, data []byte, mimeType, language string) (out Outcome, err error) {
	defer func() {
		// Some PDF extractors panic on malformed input; treat that the
		// same as any other extraction failure.
		if r := recover(); r != nil {
			out = degraded(models.ParsedText{}, fmt.Sprintf("extraction panic: %v", r))
			err = nil
		}
	}()

	switch mimeType {
	case MimePDF:
		return ing.parsePDF(ctx, data, language), nil
	case MimeDOCX:
		return ing.parseDOCX(data), nil
	case MimeJPEG, MimePNG:
		return ing.parseImage(ctx, data, language), nil
	default:
		return Outcome{}, fmt.Errorf("%w: %s", util.ErrUnsupportedFormat, mimeType)
	}
}

func ok(parsed models.ParsedText) Outcome {
	return Outcome{Status: OutcomeOK, Parsed: parsed}
}

func degraded(parsed models.ParsedText, reason string) Outcome {
	return Outcome{Status: OutcomeDegraded, Parsed: parsed, Reason: reason}
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// rebuildSections distributes OCR text evenly across the known page count
// when text-layer sections are unavailable. Offsets index the single-space
// joined word stream, separators included.
func rebuildSections(text string, pages int) []models.Section {
	if pages <= 0 {
		pages = 1
	}
	words := strings.Fields(text)
	perPage := len(words) / pages
	if perPage < 1 {
		perPage = 1
	}
	sections := make([]models.Section, 0, pages)
	offset := 0
	for i := 0; i < pages; i++ {
		startIdx := i * perPage
		endIdx := (i + 1) * perPage
		if i == pages-1 {
			endIdx = len(words)
		}
		if startIdx > len(words) {
			startIdx = len(words)
		}
		if endIdx > len(words) {
			endIdx = len(words)
		}
		if i > 0 && startIdx < len(words) {
			offset++ // separator space before this page's first word
		}
		content := strings.Join(words[startIdx:endIdx], " ")
		page := i + 1
		sections = append(sections, models.Section{
			Title:      fmt.Sprintf("Page %d", page),
			Content:    content,
			Start:      offset,
			End:        offset + len(content),
			PageNumber: &page,
		})
		offset += len(content)
	}
	return sections
}
