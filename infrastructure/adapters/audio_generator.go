package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/config"
	"github.com/Shogun05/VoiceFrame/domain"
)

type ElevenLabsRequest struct {
	Text          string        `json:"text"`
	ModelId       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type audioGenerator struct {
	ContentFetcher
	logger           outbound.LoggerPort
	elevenLabsConfig *config.ElevenLabsConfig
}

func NewAudioGenerator(contentFetcher ContentFetcher, elevenLabsConfig *config.ElevenLabsConfig, logger outbound.LoggerPort) outbound.AudioGeneratorPort {
	return &audioGenerator{
		ContentFetcher:   contentFetcher,
		logger:           logger,
		elevenLabsConfig: elevenLabsConfig,
	}
}

func (a *audioGenerator) Generate(ctx context.Context, generateReq outbound.GenerateAudioRequest) (*outbound.GeneratedAudio, error) {
	voiceID := generateReq.VoiceID
	if voiceID == "" {
		voiceID = a.voiceFor(generateReq.Gender)
	}

	req, err := a.getRequest(ctx, generateReq.Text, voiceID)
	if err != nil {
		a.logger.ErrorWithFields(err, "Failed to construct the HTTP request for audio fetching", map[string]interface{}{
			"text": generateReq.Text,
		})
		return nil, err
	}

	content, err := a.FetchContent(req)
	if err != nil {
		return nil, err
	}

	return &outbound.GeneratedAudio{Content: content, Format: "mp3"}, nil
}

func (a *audioGenerator) voiceFor(gender domain.Gender) string {
	switch gender {
	case domain.MaleGender:
		return a.elevenLabsConfig.MaleVoiceID
	case domain.FemaleGender:
		return a.elevenLabsConfig.FemaleVoiceID
	default:
		return a.elevenLabsConfig.DefaultVoiceID
	}
}

func (a *audioGenerator) getRequest(ctx context.Context, text string, voiceID string) (*http.Request, error) {
	reqBody := ElevenLabsRequest{
		Text:    text,
		ModelId: a.elevenLabsConfig.ModelId,
		VoiceSettings: VoiceSettings{
			Stability:       a.elevenLabsConfig.Stability,
			SimilarityBoost: a.elevenLabsConfig.SimilarityBoost,
		},
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.elevenLabsConfig.ApiUrl+"/"+voiceID, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}

	reqHeaders := map[string]string{
		"Accept":       "audio/mpeg",
		"xi-api-key":   a.elevenLabsConfig.ApiKey,
		"Content-Type": "application/json",
	}
	for key, value := range reqHeaders {
		req.Header.Add(key, value)
	}

	return req, nil
}
