package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidPrompt         = errors.New("prompt must not be empty")
	ErrPromptAlreadyAccepted = errors.New("a prompt was already accepted for this run")
	ErrInvalidScene          = errors.New("invalid scene")
	ErrInvalidTimeRange      = errors.New("invalid time range")
	ErrSyncOutOfTolerance    = errors.New("voice clip cannot be fitted to its time range")
	ErrAssembly              = errors.New("video assembly failed")
	ErrNotFound              = errors.New("not found")
	ErrProtocol              = errors.New("protocol error")
	ErrRunExists             = errors.New("run already exists")
	ErrRunTerminal           = errors.New("run already finished")
	ErrInvalidTransition     = errors.New("invalid stage transition")
	ErrBubbleTooNarrow       = errors.New("bubble width too small for a single glyph")
	ErrEmptyBubbleText       = errors.New("bubble text is empty")
)

// StageError tags a failure with the stage the run was in.
type StageError struct {
	Stage Stage
	Err   error
}

func NewStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage.Label(), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Stage   string `json:"stage"`
		Message string `json:"message"`
	}{
		Stage:   e.Stage.String(),
		Message: e.Err.Error(),
	})
}
