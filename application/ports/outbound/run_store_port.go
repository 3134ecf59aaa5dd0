package outbound

import (
	"context"

	"github.com/Shogun05/VoiceFrame/domain"
)

type RunStorePort interface {
	Save(ctx context.Context, run domain.PipelineRun) error
}
