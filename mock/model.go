package mock_generator

import "github.com/Shogun05/VoiceFrame/domain"

// MockScript is a canned script response. Delay is in milliseconds and overrides the generator delay when set.
type MockScript struct {
	domain.ScriptDocument
	Delay int `json:"delay"`
}
