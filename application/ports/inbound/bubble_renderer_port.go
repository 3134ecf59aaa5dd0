package inbound

import "github.com/Shogun05/VoiceFrame/domain"

type RenderBubbleParams struct {
	Text     string
	MaxWidth int
	Style    domain.BubbleStyle
	Anchor   domain.AnchorSide
	AddTail  bool
}

type BubbleRendererPort interface {
	Render(params RenderBubbleParams) (*domain.Bubble, error)
}
