package adapters

import (
	"context"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/domain"
)

type logRunStore struct {
	logger outbound.LoggerPort
}

// NewLogRunStore records run snapshots in the log only, used when no run table is configured.
func NewLogRunStore(logger outbound.LoggerPort) outbound.RunStorePort {
	return &logRunStore{logger: logger}
}

func (s *logRunStore) Save(ctx context.Context, run domain.PipelineRun) error {
	s.logger.DebugWithFields("Run snapshot", map[string]interface{}{
		"run_id":   run.ID,
		"state":    run.State,
		"degraded": run.Degraded,
	})
	return nil
}

type localVideoPublisher struct{}

// NewLocalVideoPublisher leaves videos in the work directory where the retrieval endpoint serves them.
func NewLocalVideoPublisher() outbound.VideoPublisherPort {
	return localVideoPublisher{}
}

func (localVideoPublisher) Publish(ctx context.Context, req outbound.PublishVideoRequest) (*outbound.PublishVideoResponse, error) {
	return &outbound.PublishVideoResponse{
		VideoKey: req.RunID,
		Location: req.VideoPath,
	}, nil
}
