package mock_generator

import (
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
)

type Generators struct {
	Script outbound.StoryScriptGeneratorPort
	Image  outbound.ImageGeneratorPort
	Audio  outbound.AudioGeneratorPort
}

// Init builds fixture-backed collaborators so the service runs end to end without model credentials.
func Init(fixturePath string, delay time.Duration, logger outbound.LoggerPort) Generators {
	sceneReader := NewFileSceneReader(fixturePath, logger)

	return Generators{
		Script: NewScriptGenerator(sceneReader, delay, logger),
		Image:  NewImageGenerator(delay),
		Audio:  NewAudioGenerator(delay),
	}
}
