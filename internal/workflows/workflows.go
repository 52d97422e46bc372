package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/uzzysan/Klauzule-zakazane/internal/activities"
	"github.com/uzzysan/Klauzule-zakazane/internal/ingest"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

const (
	QueryGetProgress = "GetProgress"
)

var supportedMimeTypes = map[string]bool{
	ingest.MimePDF:  true,
	ingest.MimeDOCX: true,
	ingest.MimeJPEG: true,
	ingest.MimePNG:  true,
}

// DocumentProcessWorkflow drives one document from upload through analysis.
// Stage transitions are monotonic; a failure at any stage marks the
// document failed and surfaces the activity error to the caller.
func DocumentProcessWorkflow(ctx workflow.Context, input DocumentProcessInput) (DocumentProcessOutput, error) {
	progress := DocumentProgress{DocumentID: input.DocumentID, Stage: StageQueued}
	if err := workflow.SetQueryHandler(ctx, QueryGetProgress, func() (DocumentProgress, error) {
		return progress, nil
	}); err != nil {
		return DocumentProcessOutput{}, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	startedAt := workflow.Now(ctx).UTC()

	logger := workflow.GetLogger(ctx)

	fail := func(reason string, cause error) (DocumentProcessOutput, error) {
		progress.Stage = StageFailed
		progress.FailReason = reason
		logger.Error("document processing failed", "document_id", input.DocumentID, "reason", reason)
		// Best effort; the workflow error is the authoritative outcome.
		_ = workflow.ExecuteActivity(ctx, "MarkDocumentFailedActivity", activities.MarkDocumentFailedInput{
			DocumentID: input.DocumentID,
			Language:   input.Language,
			Reason:     reason,
			StartedAt:  startedAt,
		}).Get(ctx, nil)
		if cause != nil {
			return DocumentProcessOutput{DocumentID: input.DocumentID, Status: models.DocStatusFailed}, cause
		}
		return DocumentProcessOutput{DocumentID: input.DocumentID, Status: models.DocStatusFailed},
			temporal.NewNonRetryableApplicationError(reason, "DocumentProcessFailed", nil)
	}

	// Reject unknown formats before spending any work on them.
	if !supportedMimeTypes[input.MimeType] {
		return fail("unsupported document format: "+input.MimeType, nil)
	}

	if err := workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
		DocumentID: input.DocumentID,
		Status:     models.DocStatusProcessing,
	}).Get(ctx, nil); err != nil {
		return fail("update status: "+err.Error(), err)
	}

	progress.Stage = StageDownloading
	var downloadOut activities.DownloadDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "DownloadDocumentActivity", activities.DownloadDocumentInput{
		DocumentID:     input.DocumentID,
		ObjectLocation: input.ObjectLocation,
	}).Get(ctx, &downloadOut); err != nil {
		return fail("download: "+err.Error(), err)
	}

	progress.Stage = StageParsing
	var parseOut activities.ParseDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ParseDocumentActivity", activities.ParseDocumentInput{
		DocumentID:     input.DocumentID,
		ObjectLocation: input.ObjectLocation,
		MimeType:       input.MimeType,
		Language:       input.Language,
	}).Get(ctx, &parseOut); err != nil {
		return fail("parse: "+err.Error(), err)
	}
	if parseOut.Status == ingest.OutcomeDegraded {
		progress.ParseDegraded = true
		progress.Warning = parseOut.Reason
	}

	progress.Stage = StageAnalyzing
	var analyzeOut activities.AnalyzeDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "AnalyzeDocumentActivity", activities.AnalyzeDocumentInput{
		DocumentID: input.DocumentID,
		Language:   input.Language,
	}).Get(ctx, &analyzeOut); err != nil {
		return fail("analyze: "+err.Error(), err)
	}
	progress.RiskScore = analyzeOut.Result.RiskScore
	progress.TotalFound = len(analyzeOut.Result.Matches)

	progress.Stage = StagePersisting
	var persistOut activities.PersistAnalysisOutput
	if err := workflow.ExecuteActivity(ctx, "PersistAnalysisActivity", activities.PersistAnalysisInput{
		DocumentID:    input.DocumentID,
		Language:      input.Language,
		Result:        analyzeOut.Result,
		ParseDegraded: progress.ParseDegraded,
		Warning:       progress.Warning,
		StartedAt:     startedAt,
	}).Get(ctx, &persistOut); err != nil {
		return fail("persist: "+err.Error(), err)
	}

	status := models.DocStatusCompleted
	if progress.ParseDegraded {
		status = models.DocStatusCompletedWW
	}
	if err := workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
		DocumentID: input.DocumentID,
		Status:     status,
	}).Get(ctx, nil); err != nil {
		return fail("update status: "+err.Error(), err)
	}

	progress.Stage = StageCompleted
	logger.Info("document processing finished",
		"document_id", input.DocumentID,
		"status", status,
		"risk_score", analyzeOut.Result.RiskScore)
	return DocumentProcessOutput{
		DocumentID: input.DocumentID,
		Status:     status,
		AnalysisID: persistOut.AnalysisID,
		RiskScore:  analyzeOut.Result.RiskScore,
		TotalFound: len(analyzeOut.Result.Matches),
	}, nil
}

// ClauseSyncWorkflow runs one reconciler pass against the register source.
// It is scheduled on a cron but can also be started on demand.
func ClauseSyncWorkflow(ctx workflow.Context) (ClauseSyncOutput, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    10 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    2 * time.Minute,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var out activities.SyncClausesOutput
	if err := workflow.ExecuteActivity(ctx, "SyncClausesActivity").Get(ctx, &out); err != nil {
		return ClauseSyncOutput{}, err
	}
	return ClauseSyncOutput{Stats: out.Stats}, nil
}

// StuckDocumentSweepWorkflow fails documents stuck in processing past the
// TTL and expires documents past retention. Runs on a cron.
func StuckDocumentSweepWorkflow(ctx workflow.Context) (SweepOutput, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var sweepOut activities.SweepStuckDocumentsOutput
	if err := workflow.ExecuteActivity(ctx, "SweepStuckDocumentsActivity").Get(ctx, &sweepOut); err != nil {
		return SweepOutput{}, err
	}
	var expireOut activities.ExpireDocumentsOutput
	if err := workflow.ExecuteActivity(ctx, "ExpireDocumentsActivity").Get(ctx, &expireOut); err != nil {
		return SweepOutput{}, err
	}
	return SweepOutput{FailedIDs: sweepOut.FailedIDs, ExpiredIDs: expireOut.ExpiredIDs}, nil
}
