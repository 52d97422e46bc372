package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/uzzysan/Klauzule-zakazane/internal/config"
	"github.com/uzzysan/Klauzule-zakazane/internal/ingest"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
	"github.com/uzzysan/Klauzule-zakazane/internal/storage"
	"github.com/uzzysan/Klauzule-zakazane/internal/util"
	"github.com/uzzysan/Klauzule-zakazane/internal/workflows"
)

type Server struct {
	cfg          config.Config
	db           *storage.DB
	docRepo      *storage.DocumentRepo
	metaRepo     *storage.MetadataRepo
	analysisRepo *storage.AnalysisRepo
	temporal     tclient.Client
	logger       *zap.Logger
}

func NewServer(cfg config.Config, db *storage.DB, tc tclient.Client, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:          cfg,
		db:           db,
		docRepo:      storage.NewDocumentRepo(db),
		metaRepo:     storage.NewMetadataRepo(db),
		analysisRepo: storage.NewAnalysisRepo(db),
		temporal:     tc,
		logger:       logger,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/documents", s.handleDocuments)
	mux.HandleFunc("/documents/", s.handleDocumentScoped)
	mux.HandleFunc("/sync", s.handleSync)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	fh, ok := firstSingleFile(r.MultipartForm.File)
	if !ok {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no file provided"))
		return
	}
	mimeType := detectMime(fh)
	if !supportedMime(mimeType) {
		writeErr(w, http.StatusUnsupportedMediaType, fmt.Errorf("%w: %s", util.ErrUnsupportedFormat, mimeType))
		return
	}
	language := strings.TrimSpace(r.FormValue("language"))
	if language == "" {
		language = "pl"
	}

	documentID := uuid.NewString()
	if err := util.EnsureDir(s.cfg.ObjectStoreRoot); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	location, size, contentHash, err := saveUploadedFile(s.cfg.ObjectStoreRoot, documentID, fh)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	expiresAt := time.Now().UTC().Add(time.Duration(s.cfg.GuestRetentionHrs) * time.Hour)
	doc := models.Document{
		DocumentID:     documentID,
		Filename:       filepath.Base(fh.Filename),
		MimeType:       mimeType,
		Language:       language,
		SizeBytes:      size,
		Status:         models.DocStatusUploaded,
		ObjectLocation: location,
		ExpiresAt:      &expiresAt,
	}
	if err := s.docRepo.InsertDocument(r.Context(), doc); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    "doc-" + documentID,
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowRunTimeout:    time.Duration(s.cfg.AnalysisHardLimitSecs) * time.Second,
	}, workflows.DocumentProcessWorkflow, workflows.DocumentProcessInput{
		DocumentID:     documentID,
		ObjectLocation: location,
		MimeType:       mimeType,
		Language:       language,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}

	s.logger.Info("document accepted",
		zap.String("document_id", documentID),
		zap.String("workflow_id", we.GetID()),
		zap.String("mime_type", mimeType),
		zap.String("content_sha256", contentHash))
	writeJSON(w, http.StatusAccepted, map[string]any{
		"document_id": documentID,
		"workflow_id": we.GetID(),
		"run_id":      we.GetRunID(),
		"status":      models.DocStatusUploaded,
	})
}

func (s *Server) handleDocumentScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/documents/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	documentID := parts[0]

	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	if len(parts) == 1 {
		doc, err := s.docRepo.GetDocument(r.Context(), documentID)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
		return
	}

	switch parts[1] {
	case "status":
		s.handleDocumentStatus(w, r, documentID)
	case "analysis":
		analysis, err := s.analysisRepo.GetLatestAnalysis(r.Context(), documentID)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, analysis)
	case "text":
		parsed, err := s.metaRepo.GetParsedText(r.Context(), documentID)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, parsed)
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

// handleDocumentStatus reports the job state. The live workflow query is
// authoritative; when the workflow is gone the document row decides.
func (s *Server) handleDocumentStatus(w http.ResponseWriter, r *http.Request, documentID string) {
	var prog workflows.DocumentProgress
	resp, err := s.temporal.QueryWorkflow(r.Context(), "doc-"+documentID, "", workflows.QueryGetProgress)
	if err == nil {
		if err := resp.Get(&prog); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		out := map[string]any{
			"document_id": documentID,
			"state":       jobState(prog.Stage),
			"stage":       prog.Stage,
			"warning":     prog.Warning,
			"fail_reason": prog.FailReason,
		}
		if prog.Stage == workflows.StageCompleted {
			if analysis, err := s.analysisRepo.GetLatestAnalysis(r.Context(), documentID); err == nil {
				mergeAnalysisSummary(out, analysis)
			}
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	doc, err := s.docRepo.GetDocument(r.Context(), documentID)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	out := map[string]any{
		"document_id": documentID,
		"state":       jobStateFromStatus(doc.Status),
		"stage":       doc.Status,
	}
	if analysis, err := s.analysisRepo.GetLatestAnalysis(r.Context(), documentID); err == nil {
		mergeAnalysisSummary(out, analysis)
		if analysis.ErrorMessage != "" {
			out["warning"] = analysis.ErrorMessage
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// mergeAnalysisSummary adds the completion summary onto a status payload.
func mergeAnalysisSummary(out map[string]any, a models.Analysis) {
	out["analysis_id"] = a.AnalysisID
	out["risk_score"] = a.RiskScore
	out["total_clauses_found"] = a.TotalFound
	out["high_risk_count"] = a.HighRiskCount
	out["medium_risk_count"] = a.MediumRiskCount
	out["low_risk_count"] = a.LowRiskCount
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    "clause-sync-manual-" + uuid.NewString(),
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.ClauseSyncWorkflow)
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"workflow_id": we.GetID(), "run_id": we.GetRunID()})
}

// jobState collapses processing stages into the four externally visible
// job states.
func jobState(stage string) string {
	switch stage {
	case workflows.StageQueued:
		return "queued"
	case workflows.StageCompleted:
		return "completed"
	case workflows.StageFailed:
		return "failed"
	default:
		return "processing"
	}
}

func jobStateFromStatus(status string) string {
	switch status {
	case models.DocStatusUploaded:
		return "queued"
	case models.DocStatusProcessing:
		return "processing"
	case models.DocStatusFailed, models.DocStatusExpired:
		return "failed"
	default:
		return "completed"
	}
}

func detectMime(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".pdf":
		return ingest.MimePDF
	case ".docx":
		return ingest.MimeDOCX
	case ".jpg", ".jpeg":
		return ingest.MimeJPEG
	case ".png":
		return ingest.MimePNG
	default:
		return "application/octet-stream"
	}
}

func supportedMime(mimeType string) bool {
	switch mimeType {
	case ingest.MimePDF, ingest.MimeDOCX, ingest.MimeJPEG, ingest.MimePNG:
		return true
	}
	return false
}

func saveUploadedFile(dstDir, documentID string, fh *multipart.FileHeader) (location string, size int64, contentHash string, err error) {
	src, err := fh.Open()
	if err != nil {
		return "", 0, "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := documentID + strings.ToLower(filepath.Ext(fh.Filename))
	tmp, err := os.CreateTemp(dstDir, "upload-*")
	if err != nil {
		return "", 0, "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	h := sha256.New()
	size, err = io.Copy(io.MultiWriter(tmp, h), src)
	if err != nil {
		return "", 0, "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dstDir, name)); err != nil {
		return "", 0, "", fmt.Errorf("atomic move upload: %w", err)
	}
	return name, size, hex.EncodeToString(h.Sum(nil)), nil
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}
	switch {
	case status >= 500:
		if strings.Contains(raw, "connect") || strings.Contains(raw, "dial tcp") || strings.Contains(raw, "connection refused") {
			return apiError{Code: "KZ-DB-5002", Message: "Database connection is unavailable. Check local services and retry."}
		}
		return apiError{Code: "KZ-API-5000", Message: "Internal server error. Please retry or check service logs."}
	case status == http.StatusUnsupportedMediaType:
		return apiError{Code: "KZ-API-4015", Message: "Unsupported document format. Upload PDF, DOCX, JPEG or PNG."}
	case status == http.StatusNotFound:
		return apiError{Code: "KZ-API-4004", Message: "Requested resource was not found."}
	case status == http.StatusConflict:
		return apiError{Code: "KZ-API-4009", Message: "Operation conflicts with current state. Retry after checking status."}
	case status == http.StatusMethodNotAllowed:
		return apiError{Code: "KZ-API-4005", Message: "This endpoint does not support the requested method."}
	}
	msg := "Invalid request. Check inputs and retry."
	if strings.Contains(raw, "no file provided") {
		msg = "No document file was provided."
	}
	return apiError{Code: "KZ-API-4001", Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
