package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/config"
	"github.com/Shogun05/VoiceFrame/domain"
)

func TestAudioGenerator_VoiceByGender(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "eleven-key" || r.Header.Get("Accept") != "audio/mpeg" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte("ID3"))
	}))
	defer server.Close()

	logger := NewZerologWrapper("disabled")
	generator := NewAudioGenerator(NewContentFetcher(logger, server.Client()), &config.ElevenLabsConfig{
		ApiUrl:         server.URL + "/v1/text-to-speech",
		ApiKey:         "eleven-key",
		ModelId:        "eleven_multilingual_v2",
		MaleVoiceID:    "male-voice",
		FemaleVoiceID:  "female-voice",
		DefaultVoiceID: "default-voice",
	}, logger)

	for _, gender := range []domain.Gender{domain.MaleGender, domain.FemaleGender, ""} {
		audio, err := generator.Generate(context.Background(), outbound.GenerateAudioRequest{Text: "Hello world", Gender: gender})
		if err != nil {
			t.Fatal("Failed to generate audio:", err)
		}
		if string(audio.Content) != "ID3" || audio.Format != "mp3" {
			t.Errorf("audio = %+v", audio)
		}
	}

	want := []string{"/v1/text-to-speech/male-voice", "/v1/text-to-speech/female-voice", "/v1/text-to-speech/default-voice"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("request %d went to %s, want %s", i, paths[i], want[i])
		}
	}
}
