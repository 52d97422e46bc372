package models

import "time"

// Document lifecycle statuses. A document is immutable once completed or
// failed, except for expiry.
const (
	DocStatusUploaded    = "uploaded"
	DocStatusProcessing  = "processing"
	DocStatusCompleted   = "completed"
	DocStatusCompletedWW = "completed_with_warnings"
	DocStatusFailed      = "failed"
	DocStatusExpired     = "expired"
)

const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

const (
	MatchTypeVector  = "vector"
	MatchTypeKeyword = "keyword"
	MatchTypeHybrid  = "hybrid"
)

type Document struct {
	DocumentID     string     `json:"document_id"`
	Filename       string     `json:"filename"`
	MimeType       string     `json:"mime_type"`
	Language       string     `json:"language"`
	SizeBytes      int64      `json:"size_bytes"`
	Pages          int        `json:"pages,omitempty"`
	Status         string     `json:"status"`
	ObjectLocation string     `json:"object_location"`
	OCRRequired    bool       `json:"ocr_required"`
	OCRCompleted   bool       `json:"ocr_completed"`
	OCRConfidence  *float64   `json:"ocr_confidence,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// Section is one structural unit of a parsed document. Start and End are
// character offsets into the full text.
type Section struct {
	Title      string `json:"title,omitempty"`
	Content    string `json:"content"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	PageNumber *int   `json:"page_number,omitempty"`
}

type DocumentMeta struct {
	Title   string `json:"title,omitempty"`
	Author  string `json:"author,omitempty"`
	Subject string `json:"subject,omitempty"`
	Creator string `json:"creator,omitempty"`
}

// OCRInfo records how OCR text was obtained. Confidence is the mean token
// confidence rescaled to [0,1].
type OCRInfo struct {
	Confidence   float64 `json:"confidence"`
	Language     string  `json:"language"`
	Preprocessed bool    `json:"preprocessed"`
}

// ParsedText is produced once per document and never mutated afterward.
type ParsedText struct {
	FullText  string       `json:"full_text"`
	Pages     int          `json:"pages"`
	Sections  []Section    `json:"sections"`
	Meta      DocumentMeta `json:"meta"`
	WordCount int          `json:"word_count"`
	OCR       *OCRInfo     `json:"ocr,omitempty"`
}

type LegalReference struct {
	ReferenceID   string     `json:"reference_id"`
	ArticleCode   string     `json:"article_code"`
	ArticleTitle  string     `json:"article_title,omitempty"`
	Description   string     `json:"description"`
	LawName       string     `json:"law_name"`
	Jurisdiction  string     `json:"jurisdiction"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
}

// ClauseRecord is a known prohibited clause. Records are logically deleted
// (is_active=false) rather than removed, and are immutable after creation
// except for usage bookkeeping.
type ClauseRecord struct {
	ClauseID       string    `json:"clause_id"`
	ClauseText     string    `json:"clause_text"`
	NormalizedText string    `json:"normalized_text"`
	RiskLevel      string    `json:"risk_level"`
	Language       string    `json:"language"`
	Source         string    `json:"source"`
	Notes          string    `json:"notes,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	UsageCount     int       `json:"usage_count"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Match ties one clause to one document span. Matches exist only inside an
// AnalysisResult.
type Match struct {
	ClauseID     string           `json:"clause_id"`
	ClauseText   string           `json:"clause_text"`
	MatchedText  string           `json:"matched_text"`
	Start        int              `json:"start"`
	End          int              `json:"end"`
	VectorScore  float64          `json:"vector_score"`
	KeywordScore float64          `json:"keyword_score"`
	HybridScore  float64          `json:"hybrid_score"`
	MatchType    string           `json:"match_type"`
	RiskLevel    string           `json:"risk_level"`
	Notes        string           `json:"notes,omitempty"`
	Tags         []string         `json:"tags,omitempty"`
	LegalRefs    []LegalReference `json:"legal_references,omitempty"`
}

// AnalysisResult aggregates matches for one document. Matches are ordered
// by descending hybrid score and deduplicated by clause.
type AnalysisResult struct {
	Matches          []Match `json:"matches"`
	SegmentsAnalyzed int     `json:"segments_analyzed"`
	HighRiskCount    int     `json:"high_risk_count"`
	MediumRiskCount  int     `json:"medium_risk_count"`
	LowRiskCount     int     `json:"low_risk_count"`
	RiskScore        int     `json:"risk_score"`
}

type Analysis struct {
	AnalysisID      string     `json:"analysis_id"`
	DocumentID      string     `json:"document_id"`
	Language        string     `json:"language"`
	Status          string     `json:"status"`
	TotalFound      int        `json:"total_clauses_found"`
	HighRiskCount   int        `json:"high_risk_count"`
	MediumRiskCount int        `json:"medium_risk_count"`
	LowRiskCount    int        `json:"low_risk_count"`
	RiskScore       int        `json:"risk_score"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSecs    int        `json:"duration_seconds"`
}

// SyncStats is the result of one reconciler run.
type SyncStats struct {
	Added       int `json:"added"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`
	TotalSource int `json:"total_source"`
	TotalApp    int `json:"total_app"`
}
