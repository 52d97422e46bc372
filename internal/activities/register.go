package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.DownloadDocumentActivity)
	w.RegisterActivity(a.UpdateDocumentStatusActivity)
	w.RegisterActivity(a.ParseDocumentActivity)
	w.RegisterActivity(a.AnalyzeDocumentActivity)
	w.RegisterActivity(a.PersistAnalysisActivity)
	w.RegisterActivity(a.MarkDocumentFailedActivity)
	w.RegisterActivity(a.SyncClausesActivity)
	w.RegisterActivity(a.SweepStuckDocumentsActivity)
	w.RegisterActivity(a.ExpireDocumentsActivity)
}
