package ocr

import "context"

// MockClient returns canned text so the pipeline can run without a
// Tesseract sidecar.
type MockClient struct {
	Text string
	Conf float64
	Err  error
}

func NewMockClient(text string, conf float64) *MockClient {
	return &MockClient{Text: text, Conf: conf}
}

func (m *MockClient) ExtractImage(ctx context.Context, imageData []byte, language string) (Result, error) {
	_ = ctx
	_ = imageData
	if m.Err != nil {
		return Result{}, m.Err
	}
	return Result{Text: m.Text, Confidence: m.Conf, Language: language, Preprocessed: true}, nil
}

func (m *MockClient) ExtractPDF(ctx context.Context, pdfData []byte, language string) (Result, error) {
	_ = pdfData
	return m.ExtractImage(ctx, nil, language)
}
