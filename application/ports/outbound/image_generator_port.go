package outbound

import "context"

type ImageKind string

const (
	BackgroundImageKind ImageKind = "background"
	CharacterImageKind  ImageKind = "character"
)

type GenerateImageRequest struct {
	Description string
	Kind        ImageKind
}

type ImageGeneratorPort interface {
	Generate(ctx context.Context, req GenerateImageRequest) ([]byte, error)
}
