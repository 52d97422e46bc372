package ocr

import "context"

// Result carries OCR output plus quality metadata. Confidence is the mean
// recognized-token confidence rescaled to [0,1].
type Result struct {
	Text         string  `json:"text"`
	Confidence   float64 `json:"confidence"`
	Language     string  `json:"language"`
	Preprocessed bool    `json:"preprocessed"`
}

// Client recognizes text in raster input. ExtractPDF is used for scanned
// PDFs without a native text layer: every page is rendered to an image,
// preprocessed, and recognized; the document confidence is the mean of the
// page confidences.
type Client interface {
	ExtractImage(ctx context.Context, imageData []byte, language string) (Result, error)
	ExtractPDF(ctx context.Context, pdfData []byte, language string) (Result, error)
}
