package outbound

import (
	"context"

	"github.com/Shogun05/VoiceFrame/domain"
)

type StoryScriptGeneratorPort interface {
	Generate(ctx context.Context, prompt string) (*domain.Scene, error)
}
