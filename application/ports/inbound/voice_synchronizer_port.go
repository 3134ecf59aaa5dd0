package inbound

import (
	"context"

	"github.com/Shogun05/VoiceFrame/domain"
)

type SyncRequest struct {
	AudioPath string
	Requested domain.TimeRange
}

type SyncResult struct {
	Achieved    domain.TimeRange
	SpeedFactor float64
	Stretched   bool
}

type VoiceSynchronizerPort interface {
	Synchronize(ctx context.Context, req SyncRequest) (SyncResult, error)
}
