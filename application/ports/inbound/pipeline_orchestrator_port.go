package inbound

import "context"

type PipelineOrchestratorPort interface {
	// Submit accepts the single prompt of a run and starts it in the background.
	Submit(ctx context.Context, runID string, prompt string) error
}
