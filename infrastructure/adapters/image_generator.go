package adapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/config"
)

type DalleApiRequest struct {
	Model          string `json:"model,omitempty"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	Number         int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type DalleApiResponse struct {
	Data []struct {
		B64Json string `json:"b64_json"`
	} `json:"data"`
}

type imageGenerator struct {
	ContentFetcher
	logger      outbound.LoggerPort
	dalleConfig *config.DaLLeConfig
}

func NewImageGenerator(contentFetcher ContentFetcher, dalleConfig *config.DaLLeConfig, logger outbound.LoggerPort) outbound.ImageGeneratorPort {
	return &imageGenerator{
		logger:         logger,
		ContentFetcher: contentFetcher,
		dalleConfig:    dalleConfig,
	}
}

func (i *imageGenerator) Generate(ctx context.Context, generateReq outbound.GenerateImageRequest) ([]byte, error) {
	req, err := i.getRequest(ctx, generateReq)
	if err != nil {
		return nil, err
	}

	rawRes, err := i.FetchContent(req)
	if err != nil {
		i.logger.Error(err, "Failed to fetch the image")
		return nil, err
	}

	var dalleRes DalleApiResponse
	if err := json.Unmarshal(rawRes, &dalleRes); err != nil {
		i.logger.Error(err, "Failed to unmarshal the response")
		return nil, err
	}
	if len(dalleRes.Data) == 0 {
		return nil, fmt.Errorf("image response contained no data")
	}

	decodedImage, err := base64.StdEncoding.DecodeString(dalleRes.Data[0].B64Json)
	if err != nil {
		i.logger.Error(err, "Failed to decode the image")
		return nil, err
	}

	return decodedImage, nil
}

func (i *imageGenerator) prompt(req outbound.GenerateImageRequest) string {
	if req.Kind == outbound.CharacterImageKind {
		return fmt.Sprintf("Full body portrait of %s, standing, plain light background, %s", req.Description, i.dalleConfig.StyleSuffix)
	}
	return fmt.Sprintf("%s, wide landscape scene without people, %s", req.Description, i.dalleConfig.StyleSuffix)
}

func (i *imageGenerator) getRequest(ctx context.Context, generateReq outbound.GenerateImageRequest) (*http.Request, error) {
	size := i.dalleConfig.BackgroundSize
	if generateReq.Kind == outbound.CharacterImageKind {
		size = i.dalleConfig.CharacterSize
	}

	reqBody := DalleApiRequest{
		Model:          i.dalleConfig.Model,
		Prompt:         i.prompt(generateReq),
		Size:           size,
		Number:         1,
		ResponseFormat: "b64_json",
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		i.logger.Error(err, "Failed to marshal the request body")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.dalleConfig.ApiUrl, bytes.NewBuffer(jsonPayload))
	if err != nil {
		i.logger.Error(err, "Failed to create the HTTP request")
		return nil, err
	}

	reqHeaders := map[string]string{
		"Authorization": "Bearer " + i.dalleConfig.ApiKey,
		"Content-Type":  "application/json",
	}
	for key, value := range reqHeaders {
		req.Header.Add(key, value)
	}

	return req, nil
}
