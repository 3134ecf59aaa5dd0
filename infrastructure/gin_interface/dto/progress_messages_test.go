package dto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Shogun05/VoiceFrame/domain"
)

func TestNewProgressMessage_ErrorCarriesStageTag(t *testing.T) {
	stageErr := domain.NewStageError(domain.ImageGenerationStage, errors.New("image model timed out"))
	msg := NewProgressMessage(domain.ProgressEvent{
		Sequence: 3,
		Kind:     domain.ErrorEventKind,
		Status:   "error",
		Stage:    stageErr.Stage,
		Message:  stageErr.Err.Error(),
	})

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	var frame map[string]interface{}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatal(err)
	}

	if frame["status"] != "error" || frame["stage"] != "ImageGeneration" || frame["message"] != "image model timed out" {
		t.Errorf("error frame = %s", data)
	}
	if _, ok := frame["video_id"]; ok {
		t.Errorf("error frame must not carry a video id: %s", data)
	}
}

func TestNewProgressMessage_Done(t *testing.T) {
	msg := NewProgressMessage(domain.ProgressEvent{
		Sequence: 6,
		Kind:     domain.DoneEventKind,
		Status:   "done",
		Stage:    domain.DoneStage,
		VideoID:  "run-1",
	})
	if msg.Status != "done" || msg.VideoID != "run-1" || msg.Stage != "" || msg.Message != "" {
		t.Errorf("done frame = %+v", msg)
	}
}
