package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// HTTPClient talks to a Tesseract sidecar over HTTP. The sidecar exposes
// two endpoints: POST /render turns a PDF into per-page PNGs, POST /ocr
// recognizes one image and returns per-token confidences. Page rendering
// happens on the sidecar; preprocessing and confidence aggregation happen
// here.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type ocrToken struct {
	Text       string `json:"text"`
	Confidence int    `json:"confidence"`
}

type ocrResponse struct {
	Text   string     `json:"text"`
	Tokens []ocrToken `json:"tokens"`
}

type renderResponse struct {
	Pages []string `json:"pages"`
}

func (c *HTTPClient) ExtractImage(ctx context.Context, imageData []byte, language string) (Result, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}
	prepped := Preprocess(img)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, prepped, imaging.PNG); err != nil {
		return Result{}, fmt.Errorf("encode preprocessed image: %w", err)
	}
	res, err := c.recognize(ctx, buf.Bytes(), language)
	if err != nil {
		return Result{}, err
	}
	res.Preprocessed = true
	return res, nil
}

func (c *HTTPClient) ExtractPDF(ctx context.Context, pdfData []byte, language string) (Result, error) {
	pages, err := c.render(ctx, pdfData)
	if err != nil {
		return Result{}, err
	}
	texts := make([]string, 0, len(pages))
	var confSum float64
	for i, page := range pages {
		res, err := c.ExtractImage(ctx, page, language)
		if err != nil {
			return Result{}, fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		texts = append(texts, res.Text)
		confSum += res.Confidence
	}
	confidence := 0.0
	if len(pages) > 0 {
		confidence = confSum / float64(len(pages))
	}
	return Result{
		Text:         strings.Join(texts, "\n\n"),
		Confidence:   confidence,
		Language:     language,
		Preprocessed: true,
	}, nil
}

func (c *HTTPClient) recognize(ctx context.Context, png []byte, language string) (Result, error) {
	payload, _ := json.Marshal(map[string]any{
		"image":    base64.StdEncoding.EncodeToString(png),
		"language": language,
		"config":   "--oem 3 --psm 3",
	})
	body, err := c.post(ctx, "/ocr", payload)
	if err != nil {
		return Result{}, err
	}
	var parsed ocrResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("decode ocr response: %w", err)
	}
	return Result{
		Text:       strings.TrimSpace(parsed.Text),
		Confidence: TokenConfidence(parsed.Tokens),
		Language:   language,
	}, nil
}

func (c *HTTPClient) render(ctx context.Context, pdfData []byte) ([][]byte, error) {
	payload, _ := json.Marshal(map[string]any{
		"pdf": base64.StdEncoding.EncodeToString(pdfData),
		"dpi": 300,
	})
	body, err := c.post(ctx, "/render", payload)
	if err != nil {
		return nil, err
	}
	var parsed renderResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode render response: %w", err)
	}
	pages := make([][]byte, 0, len(parsed.Pages))
	for i, enc := range parsed.Pages {
		raw, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("decode rendered page %d: %w", i+1, err)
		}
		pages = append(pages, raw)
	}
	return pages, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr sidecar request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ocr sidecar error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// TokenConfidence averages positive token confidences (Tesseract reports
// 0-100, -1 for non-word boxes) and rescales to [0,1].
func TokenConfidence(tokens []ocrToken) float64 {
	sum, n := 0, 0
	for _, t := range tokens {
		if t.Confidence > 0 {
			sum += t.Confidence
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return float64(sum) / float64(n) / 100.0
}
