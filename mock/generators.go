package mock_generator

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/domain"
)

const (
	wordsPerSecond   = 2.5
	wavSampleRate    = 22050
	backgroundWidth  = 1280
	backgroundHeight = 720
	characterSide    = 512
)

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type scriptGenerator struct {
	logger outbound.LoggerPort
	reader SceneReader
	delay  time.Duration
}

func NewScriptGenerator(reader SceneReader, delay time.Duration, logger outbound.LoggerPort) outbound.StoryScriptGeneratorPort {
	return &scriptGenerator{logger: logger, reader: reader, delay: delay}
}

func (s *scriptGenerator) Generate(ctx context.Context, prompt string) (*domain.Scene, error) {
	script, err := s.reader.Read()
	if err != nil {
		return nil, err
	}

	delay := s.delay
	if script.Delay > 0 {
		delay = time.Duration(script.Delay) * time.Millisecond
	}
	if err := sleep(ctx, delay); err != nil {
		return nil, err
	}

	s.logger.InfoWithFields("Serving mock script", map[string]interface{}{"prompt": prompt})
	return script.ToScene()
}

type imageGenerator struct {
	delay time.Duration
}

// NewImageGenerator draws solid-colour PNGs whose colour is derived from the description.
func NewImageGenerator(delay time.Duration) outbound.ImageGeneratorPort {
	return &imageGenerator{delay: delay}
}

func (g *imageGenerator) Generate(ctx context.Context, req outbound.GenerateImageRequest) ([]byte, error) {
	if err := sleep(ctx, g.delay); err != nil {
		return nil, err
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(req.Description))
	sum := h.Sum32()
	fill := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 255}

	bounds := image.Rect(0, 0, backgroundWidth, backgroundHeight)
	if req.Kind == outbound.CharacterImageKind {
		bounds = image.Rect(0, 0, characterSide, characterSide)
	}
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, &image.Uniform{C: fill}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type audioGenerator struct {
	delay time.Duration
}

// NewAudioGenerator returns silent WAV clips as long as the text takes to say at a normal speaking rate.
func NewAudioGenerator(delay time.Duration) outbound.AudioGeneratorPort {
	return &audioGenerator{delay: delay}
}

func (g *audioGenerator) Generate(ctx context.Context, req outbound.GenerateAudioRequest) (*outbound.GeneratedAudio, error) {
	if err := sleep(ctx, g.delay); err != nil {
		return nil, err
	}

	words := len(strings.Fields(req.Text))
	if words == 0 {
		words = 1
	}
	seconds := float64(words) / wordsPerSecond

	return &outbound.GeneratedAudio{Content: silentWAV(seconds), Format: "wav"}, nil
}

// silentWAV encodes mono 16-bit PCM silence.
func silentWAV(seconds float64) []byte {
	samples := int(seconds * wavSampleRate)
	dataSize := uint32(samples * 2)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(wavSampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(wavSampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}
