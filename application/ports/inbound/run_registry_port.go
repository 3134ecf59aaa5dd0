package inbound

import (
	"context"

	"github.com/Shogun05/VoiceFrame/domain"
)

// Subscription yields every event of one run in order, starting from the first.
// Next returns io.EOF once the terminal event has been delivered.
type Subscription interface {
	Next(ctx context.Context) (domain.ProgressEvent, error)
	Close()
}

type RunRegistryPort interface {
	Create(runID string) (*domain.PipelineRun, error)
	Advance(runID string, stage domain.Stage) error
	Publish(runID string, status string) error
	Subscribe(runID string) (Subscription, error)
	Complete(runID string, outputPath string, degraded bool) (bool, error)
	Fail(runID string, stageErr *domain.StageError) (bool, error)
	Get(runID string) (domain.PipelineRun, error)
	VideoPath(videoID string) (string, error)
}
