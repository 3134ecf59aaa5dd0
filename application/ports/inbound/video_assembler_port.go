package inbound

import (
	"context"

	"github.com/Shogun05/VoiceFrame/domain"
)

type AssembleParams struct {
	RunDir          string
	Scene           domain.Scene
	CharacterImages map[string]string
	Degraded        bool
}

type AssembleResult struct {
	VideoPath string
	Duration  float64
}

type VideoAssemblerPort interface {
	Assemble(ctx context.Context, params AssembleParams) (*AssembleResult, error)
}
