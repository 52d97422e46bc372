package workflows

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker) {
	w.RegisterWorkflow(DocumentProcessWorkflow)
	w.RegisterWorkflow(ClauseSyncWorkflow)
	w.RegisterWorkflow(StuckDocumentSweepWorkflow)
}
