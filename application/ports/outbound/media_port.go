package outbound

import (
	"context"

	"github.com/Shogun05/VoiceFrame/domain"
)

// MediaProberPort measures the playback duration of a media file in seconds.
type MediaProberPort interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// AudioStretcherPort changes the tempo of src by factor without altering pitch and writes the result to dst.
type AudioStretcherPort interface {
	Stretch(ctx context.Context, src string, dst string, factor float64) error
}

type VideoEncoderPort interface {
	Encode(ctx context.Context, timeline domain.Timeline) error
}
