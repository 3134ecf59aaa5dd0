package outbound

import (
	"context"

	"github.com/Shogun05/VoiceFrame/domain"
)

type GenerateAudioRequest struct {
	Text    string
	VoiceID string
	Gender  domain.Gender
}

// GeneratedAudio is encoded speech for one line. Format is the file extension of the encoding, e.g. "mp3".
type GeneratedAudio struct {
	Content []byte
	Format  string
}

type AudioGeneratorPort interface {
	Generate(ctx context.Context, req GenerateAudioRequest) (*GeneratedAudio, error)
}
