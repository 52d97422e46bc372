package activities

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uzzysan/Klauzule-zakazane/internal/analysis"
	"github.com/uzzysan/Klauzule-zakazane/internal/clausesync"
	"github.com/uzzysan/Klauzule-zakazane/internal/config"
	"github.com/uzzysan/Klauzule-zakazane/internal/ingest"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
	"github.com/uzzysan/Klauzule-zakazane/internal/objectstore"
	"github.com/uzzysan/Klauzule-zakazane/internal/ocr"
	"github.com/uzzysan/Klauzule-zakazane/internal/providers"
	"github.com/uzzysan/Klauzule-zakazane/internal/storage"
	"github.com/uzzysan/Klauzule-zakazane/internal/util"
	"github.com/uzzysan/Klauzule-zakazane/internal/vector"
)

type Activities struct {
	cfg          config.Config
	docRepo      *storage.DocumentRepo
	metaRepo     *storage.MetadataRepo
	clauseRepo   *storage.ClauseRepo
	analysisRepo *storage.AnalysisRepo
	store        objectstore.Store
	ingestor     *ingest.Ingestor
	analyzer     *analysis.Analyzer
	embedder     analysis.Embedder
	logger       *zap.Logger
}

func New(cfg config.Config, db *storage.DB, logger *zap.Logger) (*Activities, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	embedder := providers.NewTextEmbedder(pm)

	var index analysis.ClauseIndex
	switch cfg.IndexBackend {
	case "qdrant":
		index, err = vector.NewQdrantIndex(cfg.QdrantAddr, cfg.QdrantCollection)
		if err != nil {
			return nil, err
		}
	default:
		index = vector.NewPgVectorIndex(db.Pool)
	}

	store, err := objectstore.New(cfg)
	if err != nil {
		return nil, err
	}

	clauseRepo := storage.NewClauseRepo(db)
	scorer := analysis.NewScorer(embedder, index, clauseRepo, analysis.ScorerConfig{
		ThresholdLow:    cfg.ThresholdLow,
		ThresholdMedium: cfg.ThresholdMedium,
		ThresholdHigh:   cfg.ThresholdHigh,
		MaxCandidates:   cfg.MaxCandidates,
	})

	return &Activities{
		cfg:          cfg,
		docRepo:      storage.NewDocumentRepo(db),
		metaRepo:     storage.NewMetadataRepo(db),
		clauseRepo:   clauseRepo,
		analysisRepo: storage.NewAnalysisRepo(db),
		store:        store,
		ingestor:     ingest.New(ocr.NewHTTPClient(cfg.OCRBaseURL)),
		analyzer:     analysis.NewAnalyzer(scorer),
		embedder:     embedder,
		logger:       logger,
	}, nil
}

// DownloadDocumentActivity verifies the upload is retrievable and records
// its size and digest. File bytes never enter workflow history; the parse
// activity re-fetches by object location, so a scanned multi-megabyte PDF
// stays under Temporal's payload limit.
func (a *Activities) DownloadDocumentActivity(ctx context.Context, in DownloadDocumentInput) (DownloadDocumentOutput, error) {
	data, err := a.store.Download(ctx, in.ObjectLocation)
	if err != nil {
		return DownloadDocumentOutput{}, err
	}
	hash := util.SHA256Hex(data)
	a.logger.Debug("document downloaded",
		zap.String("document_id", in.DocumentID),
		zap.Int("size_bytes", len(data)),
		zap.String("content_sha256", hash))
	return DownloadDocumentOutput{SizeBytes: int64(len(data)), ContentSHA256: hash}, nil
}

func (a *Activities) UpdateDocumentStatusActivity(ctx context.Context, in UpdateDocumentStatusInput) error {
	return a.docRepo.UpdateDocumentStatus(ctx, in.DocumentID, in.Status)
}

// ParseDocumentActivity extracts text and persists the parse output. A
// degraded parse is not an activity error; the workflow decides how to
// surface it.
func (a *Activities) ParseDocumentActivity(ctx context.Context, in ParseDocumentInput) (ParseDocumentOutput, error) {
	data, err := a.store.Download(ctx, in.ObjectLocation)
	if err != nil {
		return ParseDocumentOutput{}, err
	}
	outcome, err := a.ingestor.Parse(ctx, data, in.MimeType, a.ocrLanguage(in.Language))
	if err != nil {
		return ParseDocumentOutput{}, err
	}
	if err := a.metaRepo.UpsertParsedText(ctx, in.DocumentID, outcome.Parsed); err != nil {
		return ParseDocumentOutput{}, err
	}
	if err := a.docRepo.RecordParseOutcome(ctx, in.DocumentID, outcome.Parsed.Pages, outcome.Parsed.OCR); err != nil {
		return ParseDocumentOutput{}, err
	}
	a.logger.Info("document parsed",
		zap.String("document_id", in.DocumentID),
		zap.String("status", outcome.Status),
		zap.Int("word_count", outcome.Parsed.WordCount))
	return ParseDocumentOutput{
		Status:    outcome.Status,
		Reason:    outcome.Reason,
		Pages:     outcome.Parsed.Pages,
		WordCount: outcome.Parsed.WordCount,
	}, nil
}

// ocrLanguage maps a document language code to the Tesseract language
// packs the sidecar should load.
func (a *Activities) ocrLanguage(docLanguage string) string {
	switch docLanguage {
	case "", "pl":
		return a.cfg.OCRLanguages
	case "en":
		return "eng"
	default:
		return docLanguage
	}
}

func (a *Activities) AnalyzeDocumentActivity(ctx context.Context, in AnalyzeDocumentInput) (AnalyzeDocumentOutput, error) {
	parsed, err := a.metaRepo.GetParsedText(ctx, in.DocumentID)
	if err != nil {
		return AnalyzeDocumentOutput{}, err
	}
	result, err := a.analyzer.AnalyzeDocument(ctx, parsed.FullText)
	if err != nil {
		return AnalyzeDocumentOutput{}, err
	}
	return AnalyzeDocumentOutput{Result: result}, nil
}

// PersistAnalysisActivity writes the analysis record, its flagged clauses,
// the clause usage bookkeeping, and the JSON report artifact.
func (a *Activities) PersistAnalysisActivity(ctx context.Context, in PersistAnalysisInput) (PersistAnalysisOutput, error) {
	now := time.Now().UTC()
	status := models.DocStatusCompleted
	if in.ParseDegraded {
		status = models.DocStatusCompletedWW
	}
	startedAt := in.StartedAt
	record := models.Analysis{
		AnalysisID:      uuid.NewString(),
		DocumentID:      in.DocumentID,
		Language:        in.Language,
		Status:          status,
		TotalFound:      len(in.Result.Matches),
		HighRiskCount:   in.Result.HighRiskCount,
		MediumRiskCount: in.Result.MediumRiskCount,
		LowRiskCount:    in.Result.LowRiskCount,
		RiskScore:       in.Result.RiskScore,
		ErrorMessage:    in.Warning,
		StartedAt:       &startedAt,
		CompletedAt:     &now,
		DurationSecs:    int(now.Sub(in.StartedAt).Seconds()),
	}
	if err := a.analysisRepo.InsertAnalysis(ctx, record); err != nil {
		return PersistAnalysisOutput{}, err
	}

	clauseIDs := make([]string, 0, len(in.Result.Matches))
	for _, m := range in.Result.Matches {
		if err := a.analysisRepo.InsertFlaggedClause(ctx, record.AnalysisID, m); err != nil {
			return PersistAnalysisOutput{}, err
		}
		clauseIDs = append(clauseIDs, m.ClauseID)
	}
	if err := a.clauseRepo.IncrementUsage(ctx, clauseIDs); err != nil {
		return PersistAnalysisOutput{}, err
	}

	reportPath := filepath.Join(a.cfg.DataOutRoot, in.DocumentID, "analysis.json")
	if err := util.WriteJSONAtomic(reportPath, map[string]any{
		"analysis_id":  record.AnalysisID,
		"document_id":  in.DocumentID,
		"status":       status,
		"risk_score":   in.Result.RiskScore,
		"matches":      in.Result.Matches,
		"segments":     in.Result.SegmentsAnalyzed,
		"generated_at": now,
	}); err != nil {
		return PersistAnalysisOutput{}, err
	}
	return PersistAnalysisOutput{AnalysisID: record.AnalysisID, ReportPath: reportPath}, nil
}

func (a *Activities) MarkDocumentFailedActivity(ctx context.Context, in MarkDocumentFailedInput) error {
	if err := a.docRepo.UpdateDocumentStatus(ctx, in.DocumentID, models.DocStatusFailed); err != nil {
		return err
	}
	now := time.Now().UTC()
	startedAt := in.StartedAt
	return a.analysisRepo.InsertAnalysis(ctx, models.Analysis{
		AnalysisID:   uuid.NewString(),
		DocumentID:   in.DocumentID,
		Language:     in.Language,
		Status:       models.DocStatusFailed,
		ErrorMessage: in.Reason,
		StartedAt:    &startedAt,
		CompletedAt:  &now,
		DurationSecs: int(now.Sub(in.StartedAt).Seconds()),
	})
}

// SyncClausesActivity connects to the register source for the duration of
// one reconciler run.
func (a *Activities) SyncClausesActivity(ctx context.Context) (SyncClausesOutput, error) {
	source, err := clausesync.NewPgSource(ctx, a.cfg.SourceDatabaseURL)
	if err != nil {
		return SyncClausesOutput{}, err
	}
	defer source.Close()

	reconciler := clausesync.NewReconciler(source, a.clauseRepo, a.embedder, a.logger)
	stats, err := reconciler.Sync(ctx)
	if err != nil {
		return SyncClausesOutput{}, fmt.Errorf("sync clauses: %w", err)
	}
	return SyncClausesOutput{Stats: stats}, nil
}

func (a *Activities) SweepStuckDocumentsActivity(ctx context.Context) (SweepStuckDocumentsOutput, error) {
	ttl := time.Duration(a.cfg.ProcessingTTLMins) * time.Minute
	ids, err := a.docRepo.FailStuckDocuments(ctx, ttl)
	if err != nil {
		return SweepStuckDocumentsOutput{}, err
	}
	if len(ids) > 0 {
		a.logger.Warn("failed stuck documents", zap.Strings("document_ids", ids))
	}
	return SweepStuckDocumentsOutput{FailedIDs: ids}, nil
}

func (a *Activities) ExpireDocumentsActivity(ctx context.Context) (ExpireDocumentsOutput, error) {
	ids, err := a.docRepo.ExpireDocuments(ctx)
	if err != nil {
		return ExpireDocumentsOutput{}, err
	}
	return ExpireDocumentsOutput{ExpiredIDs: ids}, nil
}
