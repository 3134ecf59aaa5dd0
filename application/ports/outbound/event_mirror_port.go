package outbound

import "github.com/Shogun05/VoiceFrame/domain"

// EventMirrorPort receives a copy of every progress event. Mirror must not block.
type EventMirrorPort interface {
	Mirror(event domain.ProgressEvent)
}
