package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/uzzysan/Klauzule-zakazane/internal/activities"
	"github.com/uzzysan/Klauzule-zakazane/internal/ingest"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerDocumentActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "UpdateDocumentStatusActivity", func(context.Context, activities.UpdateDocumentStatusInput) error { return nil })
	registerActivityName(env, "DownloadDocumentActivity", func(context.Context, activities.DownloadDocumentInput) (activities.DownloadDocumentOutput, error) {
		return activities.DownloadDocumentOutput{}, nil
	})
	registerActivityName(env, "ParseDocumentActivity", func(context.Context, activities.ParseDocumentInput) (activities.ParseDocumentOutput, error) {
		return activities.ParseDocumentOutput{}, nil
	})
	registerActivityName(env, "AnalyzeDocumentActivity", func(context.Context, activities.AnalyzeDocumentInput) (activities.AnalyzeDocumentOutput, error) {
		return activities.AnalyzeDocumentOutput{}, nil
	})
	registerActivityName(env, "PersistAnalysisActivity", func(context.Context, activities.PersistAnalysisInput) (activities.PersistAnalysisOutput, error) {
		return activities.PersistAnalysisOutput{}, nil
	})
	registerActivityName(env, "MarkDocumentFailedActivity", func(context.Context, activities.MarkDocumentFailedInput) error { return nil })
}

func baseInput() DocumentProcessInput {
	return DocumentProcessInput{
		DocumentID:     "doc1",
		ObjectLocation: "doc1.pdf",
		MimeType:       ingest.MimePDF,
		Language:       "pl",
	}
}

func TestDocumentProcessWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentProcessWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("DownloadDocumentActivity", mock.Anything, mock.Anything).Return(activities.DownloadDocumentOutput{SizeBytes: 4}, nil)
	env.OnActivity("ParseDocumentActivity", mock.Anything, mock.Anything).Return(activities.ParseDocumentOutput{Status: ingest.OutcomeOK, Pages: 2, WordCount: 800}, nil)
	env.OnActivity("AnalyzeDocumentActivity", mock.Anything, mock.Anything).Return(activities.AnalyzeDocumentOutput{
		Result: models.AnalysisResult{
			Matches:       []models.Match{{ClauseID: "c1", RiskLevel: models.RiskHigh}},
			HighRiskCount: 1,
			RiskScore:     10,
		},
	}, nil)
	env.OnActivity("PersistAnalysisActivity", mock.Anything, mock.Anything).Return(activities.PersistAnalysisOutput{AnalysisID: "a1"}, nil)

	env.ExecuteWorkflow(DocumentProcessWorkflow, baseInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out DocumentProcessOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.DocStatusCompleted, out.Status)
	require.Equal(t, "a1", out.AnalysisID)
	require.Equal(t, 10, out.RiskScore)
	require.Equal(t, 1, out.TotalFound)
}

// Activities exchange only the object location and metadata; file bytes of
// a large scan must never ride through workflow history.
func TestDocumentProcessWorkflowParseFetchesByObjectLocation(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentProcessWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("DownloadDocumentActivity", mock.Anything, mock.MatchedBy(func(in activities.DownloadDocumentInput) bool {
		return in.ObjectLocation == "doc1.pdf"
	})).Return(activities.DownloadDocumentOutput{SizeBytes: 5 << 20, ContentSHA256: "deadbeef"}, nil)
	env.OnActivity("ParseDocumentActivity", mock.Anything, mock.MatchedBy(func(in activities.ParseDocumentInput) bool {
		return in.ObjectLocation == "doc1.pdf" && in.MimeType == ingest.MimePDF
	})).Return(activities.ParseDocumentOutput{Status: ingest.OutcomeOK, Pages: 40, WordCount: 12000}, nil)
	env.OnActivity("AnalyzeDocumentActivity", mock.Anything, mock.Anything).Return(activities.AnalyzeDocumentOutput{}, nil)
	env.OnActivity("PersistAnalysisActivity", mock.Anything, mock.Anything).Return(activities.PersistAnalysisOutput{AnalysisID: "a3"}, nil)

	env.ExecuteWorkflow(DocumentProcessWorkflow, baseInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out DocumentProcessOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.DocStatusCompleted, out.Status)
}

func TestDocumentProcessWorkflowDegradedParseCompletesWithWarnings(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentProcessWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("DownloadDocumentActivity", mock.Anything, mock.Anything).Return(activities.DownloadDocumentOutput{SizeBytes: 512}, nil)
	env.OnActivity("ParseDocumentActivity", mock.Anything, mock.Anything).Return(activities.ParseDocumentOutput{Status: ingest.OutcomeDegraded, Reason: "ocr produced no text"}, nil)
	env.OnActivity("AnalyzeDocumentActivity", mock.Anything, mock.Anything).Return(activities.AnalyzeDocumentOutput{}, nil)
	env.OnActivity("PersistAnalysisActivity", mock.Anything, mock.MatchedBy(func(in activities.PersistAnalysisInput) bool {
		return in.ParseDegraded && in.Warning == "ocr produced no text"
	})).Return(activities.PersistAnalysisOutput{AnalysisID: "a2"}, nil)

	env.ExecuteWorkflow(DocumentProcessWorkflow, baseInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out DocumentProcessOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.DocStatusCompletedWW, out.Status)
}

func TestDocumentProcessWorkflowUnsupportedMimeFailsImmediately(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentProcessWorkflow)
	registerDocumentActivities(env)

	marked := false
	env.OnActivity("MarkDocumentFailedActivity", mock.Anything, mock.Anything).Run(func(mock.Arguments) { marked = true }).Return(nil)

	input := baseInput()
	input.MimeType = "text/plain"
	env.ExecuteWorkflow(DocumentProcessWorkflow, input)
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.True(t, marked, "document was not marked failed")
}

func TestDocumentProcessWorkflowAnalyzeFailureMarksDocumentFailed(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentProcessWorkflow)
	registerDocumentActivities(env)

	marked := false
	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("DownloadDocumentActivity", mock.Anything, mock.Anything).Return(activities.DownloadDocumentOutput{SizeBytes: 4}, nil)
	env.OnActivity("ParseDocumentActivity", mock.Anything, mock.Anything).Return(activities.ParseDocumentOutput{Status: ingest.OutcomeOK}, nil)
	env.OnActivity("AnalyzeDocumentActivity", mock.Anything, mock.Anything).Return(activities.AnalyzeDocumentOutput{}, errors.New("embedding backend down"))
	env.OnActivity("MarkDocumentFailedActivity", mock.Anything, mock.Anything).Run(func(mock.Arguments) { marked = true }).Return(nil)

	env.ExecuteWorkflow(DocumentProcessWorkflow, baseInput())
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.True(t, marked, "document was not marked failed")
}

func TestClauseSyncWorkflowReturnsStats(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ClauseSyncWorkflow)
	registerActivityName(env, "SyncClausesActivity", func(context.Context) (activities.SyncClausesOutput, error) {
		return activities.SyncClausesOutput{}, nil
	})
	env.OnActivity("SyncClausesActivity", mock.Anything).Return(activities.SyncClausesOutput{
		Stats: models.SyncStats{Added: 5, Skipped: 120, TotalSource: 125, TotalApp: 125},
	}, nil)

	env.ExecuteWorkflow(ClauseSyncWorkflow)
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out ClauseSyncOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, 5, out.Stats.Added)
	require.Equal(t, 125, out.Stats.TotalApp)
}

func TestStuckDocumentSweepWorkflow(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(StuckDocumentSweepWorkflow)
	registerActivityName(env, "SweepStuckDocumentsActivity", func(context.Context) (activities.SweepStuckDocumentsOutput, error) {
		return activities.SweepStuckDocumentsOutput{}, nil
	})
	registerActivityName(env, "ExpireDocumentsActivity", func(context.Context) (activities.ExpireDocumentsOutput, error) {
		return activities.ExpireDocumentsOutput{}, nil
	})
	env.OnActivity("SweepStuckDocumentsActivity", mock.Anything).Return(activities.SweepStuckDocumentsOutput{FailedIDs: []string{"d1"}}, nil)
	env.OnActivity("ExpireDocumentsActivity", mock.Anything).Return(activities.ExpireDocumentsOutput{ExpiredIDs: []string{"d2", "d3"}}, nil)

	env.ExecuteWorkflow(StuckDocumentSweepWorkflow)
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out SweepOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, []string{"d1"}, out.FailedIDs)
	require.Equal(t, []string{"d2", "d3"}, out.ExpiredIDs)
}
