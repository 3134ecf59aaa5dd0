package dto

import "github.com/Shogun05/VoiceFrame/domain"

const ProtocolErrorStatus = "protocol_error"

// PromptMessage is the only message a client sends. Prompt is a pointer so a missing field can be told apart from an empty one.
type PromptMessage struct {
	Prompt *string `json:"prompt"`
}

type ProgressMessage struct {
	Status   string `json:"status"`
	Sequence int    `json:"sequence,omitempty"`
	VideoID  string `json:"video_id,omitempty"`
	Message  string `json:"message,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

func NewProgressMessage(event domain.ProgressEvent) ProgressMessage {
	msg := ProgressMessage{
		Status:   event.Status,
		Sequence: event.Sequence,
		Degraded: event.Degraded,
	}
	switch event.Kind {
	case domain.DoneEventKind:
		msg.VideoID = event.VideoID
	case domain.ErrorEventKind:
		msg.Message = event.Message
		msg.Stage = string(event.Stage)
	}
	return msg
}

func NewProtocolError(message string) ProgressMessage {
	return ProgressMessage{Status: ProtocolErrorStatus, Message: message}
}
