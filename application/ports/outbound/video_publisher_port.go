package outbound

import "context"

type PublishVideoRequest struct {
	VideoPath string
	RunID     string
}

type PublishVideoResponse struct {
	VideoKey string
	Location string
}

type VideoPublisherPort interface {
	Publish(ctx context.Context, req PublishVideoRequest) (*PublishVideoResponse, error)
}
