package activities

import (
	"time"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

type DownloadDocumentInput struct {
	DocumentID     string `json:"document_id"`
	ObjectLocation string `json:"object_location"`
}

type DownloadDocumentOutput struct {
	SizeBytes     int64  `json:"size_bytes"`
	ContentSHA256 string `json:"content_sha256"`
}

type UpdateDocumentStatusInput struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

type ParseDocumentInput struct {
	DocumentID     string `json:"document_id"`
	ObjectLocation string `json:"object_location"`
	MimeType       string `json:"mime_type"`
	Language       string `json:"language"`
}

type ParseDocumentOutput struct {
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Pages     int    `json:"pages"`
	WordCount int    `json:"word_count"`
}

type AnalyzeDocumentInput struct {
	DocumentID string `json:"document_id"`
	Language   string `json:"language"`
}

type AnalyzeDocumentOutput struct {
	Result models.AnalysisResult `json:"result"`
}

type PersistAnalysisInput struct {
	DocumentID    string                `json:"document_id"`
	Language      string                `json:"language"`
	Result        models.AnalysisResult `json:"result"`
	ParseDegraded bool                  `json:"parse_degraded"`
	Warning       string                `json:"warning,omitempty"`
	StartedAt     time.Time             `json:"started_at"`
}

type PersistAnalysisOutput struct {
	AnalysisID string `json:"analysis_id"`
	ReportPath string `json:"report_path"`
}

type MarkDocumentFailedInput struct {
	DocumentID string    `json:"document_id"`
	Language   string    `json:"language"`
	Reason     string    `json:"reason"`
	StartedAt  time.Time `json:"started_at"`
}

type SyncClausesOutput struct {
	Stats models.SyncStats `json:"stats"`
}

type SweepStuckDocumentsOutput struct {
	FailedIDs []string `json:"failed_ids"`
}

type ExpireDocumentsOutput struct {
	ExpiredIDs []string `json:"expired_ids"`
}
