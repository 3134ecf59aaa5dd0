package domain

import "fmt"

// Stage values are the tags clients see in the stage field of error messages.
type Stage string

const (
	AwaitingPromptStage  Stage = "AwaitingPrompt"
	ScriptingStage       Stage = "Scripting"
	ImageGenerationStage Stage = "ImageGeneration"
	VoiceSynthesisStage  Stage = "VoiceSynthesis"
	AssemblingStage      Stage = "Assembling"
	DoneStage            Stage = "Done"
	FailedStage          Stage = "Failed"
)

var stageLabels = map[Stage]string{
	AwaitingPromptStage:  "Awaiting Prompt",
	ScriptingStage:       "Scripting",
	ImageGenerationStage: "Image Generation",
	VoiceSynthesisStage:  "Voice Synthesis",
	AssemblingStage:      "Assembling",
	DoneStage:            "done",
	FailedStage:          "error",
}

// Failed is reachable from every non-terminal stage and is not listed here.
var stageTransitions = map[Stage][]Stage{
	AwaitingPromptStage:  {ScriptingStage},
	ScriptingStage:       {ImageGenerationStage},
	ImageGenerationStage: {VoiceSynthesisStage},
	VoiceSynthesisStage:  {AssemblingStage},
	AssemblingStage:      {DoneStage},
}

func (s Stage) String() string {
	return string(s)
}

// Label is the human readable status text sent to clients.
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s Stage) IsTerminal() bool {
	return s == DoneStage || s == FailedStage
}

func CanTransition(from Stage, to Stage) bool {
	if from.IsTerminal() {
		return false
	}
	if to == FailedStage {
		return true
	}
	for _, next := range stageTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CheckTransition(from Stage, to Stage) error {
	if from.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrRunTerminal, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
