package workflows

import "github.com/uzzysan/Klauzule-zakazane/internal/models"

// Processing stages, in order. The progress query reports exactly one of
// these at any time.
const (
	StageQueued      = "queued"
	StageDownloading = "downloading"
	StageParsing     = "parsing"
	StageAnalyzing   = "analyzing"
	StagePersisting  = "persisting"
	StageCompleted   = "completed"
	StageFailed      = "failed"
)

type DocumentProcessInput struct {
	DocumentID     string `json:"document_id"`
	ObjectLocation string `json:"object_location"`
	MimeType       string `json:"mime_type"`
	Language       string `json:"language"`
}

// DocumentProgress is the structured record behind the progress query.
type DocumentProgress struct {
	DocumentID    string `json:"document_id"`
	Stage         string `json:"stage"`
	ParseDegraded bool   `json:"parse_degraded"`
	Warning       string `json:"warning,omitempty"`
	RiskScore     int    `json:"risk_score"`
	TotalFound    int    `json:"total_clauses_found"`
	FailReason    string `json:"fail_reason,omitempty"`
}

type DocumentProcessOutput struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	AnalysisID string `json:"analysis_id,omitempty"`
	RiskScore  int    `json:"risk_score"`
	TotalFound int    `json:"total_clauses_found"`
}

type ClauseSyncOutput struct {
	Stats models.SyncStats `json:"stats"`
}

type SweepOutput struct {
	FailedIDs  []string `json:"failed_ids"`
	ExpiredIDs []string `json:"expired_ids"`
}
