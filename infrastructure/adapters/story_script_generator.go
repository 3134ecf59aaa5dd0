package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/config"
	"github.com/Shogun05/VoiceFrame/domain"
	"github.com/donovanhide/eventsource"
	"github.com/invopop/jsonschema"
)

const DoneSignal = "[DONE]"
const MaxRetries = 3

const cartoonInstruction = "Create a scene with characters optimized for cartoon image generation. " +
	"It is supposed to be cartoon style, so don't ask for realism. "

var scriptDocumentSchema = generateSchema[domain.ScriptDocument]()

func generateSchema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

type chatGptRequest struct {
	Stream         bool                  `json:"stream"`
	Model          string                `json:"model"`
	Messages       []chatGptMessage      `json:"messages"`
	ResponseFormat chatGptResponseFormat `json:"response_format"`
}

type chatGptResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema chatGptJSONSchema `json:"json_schema"`
}

type chatGptJSONSchema struct {
	Name   string      `json:"name"`
	Schema interface{} `json:"schema"`
	Strict bool        `json:"strict"`
}

type chatGptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatGptChunkBody struct {
	Choices []chatGptResponseChoice `json:"choices"`
}

type chatGptResponseChoice struct {
	Index int `json:"index"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
}

type storyScriptGenerator struct {
	logger    outbound.LoggerPort
	gptConfig *config.GptConfig
	transport http.RoundTripper
}

func NewStoryScriptGenerator(gptConfig *config.GptConfig, transport http.RoundTripper, logger outbound.LoggerPort) outbound.StoryScriptGeneratorPort {
	return &storyScriptGenerator{
		logger:    logger,
		gptConfig: gptConfig,
		transport: transport,
	}
}

func (s *storyScriptGenerator) Generate(ctx context.Context, prompt string) (*domain.Scene, error) {
	req, err := s.createRequest(ctx, prompt)
	if err != nil {
		s.logger.Error(err, "Failed to create HTTP request for script stream")
		return nil, err
	}

	// SubscribeWith installs its own redirect policy on the client, so each stream gets a fresh one.
	stream, err := eventsource.SubscribeWith("", &http.Client{Transport: s.transport}, req)
	if err != nil {
		s.logger.Error(err, "Failed to subscribe to script stream")
		return nil, err
	}
	defer stream.Close()

	content, err := s.readStream(ctx, stream)
	if err != nil {
		return nil, err
	}

	var document domain.ScriptDocument
	if err := json.Unmarshal([]byte(content), &document); err != nil {
		s.logger.ErrorWithFields(err, "Failed to unmarshal the generated script", map[string]interface{}{
			"content": content,
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScene, err)
	}

	return document.ToScene()
}

func (s *storyScriptGenerator) readStream(ctx context.Context, stream *eventsource.Stream) (string, error) {
	var builder strings.Builder
	retryCount := 0
	finished := false

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case ev, ok := <-stream.Events:
			if !ok {
				return "", io.ErrUnexpectedEOF
			}
			if ev.Data() == DoneSignal {
				// Wait for the server to hang up before closing, the stream reports EOF first.
				finished = true
				continue
			}
			payload, err := s.extractPayload(ev)
			if err != nil {
				return "", err
			}
			builder.WriteString(payload)
			retryCount = 0
		case err, ok := <-stream.Errors:
			if finished && (!ok || errors.Is(err, io.EOF)) {
				return builder.String(), nil
			}
			if !ok {
				return "", io.ErrUnexpectedEOF
			}
			if errors.Is(err, io.EOF) {
				s.logger.Warn("Script stream closed before the done signal")
				return "", io.ErrUnexpectedEOF
			}
			if retryCount < MaxRetries {
				s.logger.ErrorWithFields(err, "Error occurred during streaming, retrying", map[string]interface{}{
					"retry_count": retryCount})
				retryCount++
				continue
			}
			s.logger.Error(err, "Error occurred during streaming, max retries reached")
			return "", err
		}
	}
}

func (s *storyScriptGenerator) extractPayload(event eventsource.Event) (string, error) {
	var chunkBody chatGptChunkBody
	err := json.Unmarshal([]byte(event.Data()), &chunkBody)
	if err != nil {
		s.logger.Error(err, "Failed to unmarshal event data")
		return "", err
	}
	if len(chunkBody.Choices) == 0 {
		return "", nil
	}

	return chunkBody.Choices[0].Delta.Content, nil
}

func (s *storyScriptGenerator) createRequest(ctx context.Context, input string) (*http.Request, error) {
	systemMessage := chatGptMessage{
		Role: "system",
		Content: fmt.Sprintf("You write short animated scenes as JSON.\n"+
			"- Exactly one scene with one background that spans the whole scene, starting at 00:00:00.\n"+
			"- The background description must not contain any people or names.\n"+
			"- Two or three characters with unique names, a consistent visual appearance and a gender.\n"+
			"- Dialogue lines ordered by start time, each spoken by one of the characters.\n"+
			"- A line's time range should match how long it takes to say it, about 2.5 words per second.\n"+
			"- Timestamps are HH:MM:SS and the scene lasts at most %d seconds.", s.gptConfig.MaxDuration),
	}
	userMessage := chatGptMessage{
		Role:    "user",
		Content: cartoonInstruction + input,
	}

	promptReq := chatGptRequest{
		Stream:   true,
		Model:    s.gptConfig.Model,
		Messages: []chatGptMessage{systemMessage, userMessage},
		ResponseFormat: chatGptResponseFormat{
			Type: "json_schema",
			JSONSchema: chatGptJSONSchema{
				Name:   "scene_script",
				Schema: scriptDocumentSchema,
				Strict: true,
			},
		},
	}

	payloadBytes, err := json.Marshal(promptReq)
	if err != nil {
		s.logger.Error(err, "Failed to marshal the request body")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gptConfig.ApiUrl, bytes.NewBuffer(payloadBytes))
	if err != nil {
		s.logger.Error(err, "Failed to create the HTTP request")
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+s.gptConfig.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
