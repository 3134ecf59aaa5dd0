package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"testing"

	"github.com/Shogun05/VoiceFrame/application/ports/inbound"
	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/domain"
	"github.com/panjf2000/ants/v2"
)

type nopLogger struct{}

func (nopLogger) Info(string)                                           {}
func (nopLogger) InfoWithFields(string, map[string]interface{})         {}
func (nopLogger) Error(error, string)                                   {}
func (nopLogger) ErrorWithFields(error, string, map[string]interface{}) {}
func (nopLogger) Debug(string)                                          {}
func (nopLogger) DebugWithFields(string, map[string]interface{})        {}
func (nopLogger) Warn(string)                                           {}
func (nopLogger) WarnWithFields(string, map[string]interface{})         {}
func (l nopLogger) With(map[string]interface{}) outbound.LoggerPort     { return l }

func newPool(t *testing.T, size int) *ants.Pool {
	t.Helper()
	pool, err := ants.NewPool(size)
	if err != nil {
		t.Fatal("Failed to create worker pool:", err)
	}
	t.Cleanup(pool.Release)
	return pool
}

func pngBytes(t *testing.T, width int, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 120, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal("Failed to encode png:", err)
	}
	return buf.Bytes()
}

// fakeMedia stands in for ffprobe and the tempo filter. Stretching divides the stored duration by the factor.
type fakeMedia struct {
	mu        sync.Mutex
	durations map[string]float64
	factors   []float64
	// overshoot is added to every stretched duration.
	overshoot float64
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{durations: make(map[string]float64)}
}

func (f *fakeMedia) set(path string, seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durations[path] = seconds
}

func (f *fakeMedia) Duration(ctx context.Context, path string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.durations[path]
	if !ok {
		return 0, os.ErrNotExist
	}
	return d, nil
}

func (f *fakeMedia) Stretch(ctx context.Context, src string, dst string, factor float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.factors = append(f.factors, factor)
	f.durations[src] = f.durations[src]/factor + f.overshoot
	return os.WriteFile(dst, []byte("stretched"), 0o644)
}

type fakeScriptGenerator struct {
	scene  domain.Scene
	err    error
	panics bool
}

func (f *fakeScriptGenerator) Generate(ctx context.Context, prompt string) (*domain.Scene, error) {
	if f.panics {
		panic("script model exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	scene := f.scene
	scene.Characters = append([]domain.Character(nil), f.scene.Characters...)
	scene.Dialogues = append([]domain.Dialogue(nil), f.scene.Dialogues...)
	return &scene, nil
}

type fakeImageGenerator struct {
	content []byte
	block   bool
	mu      sync.Mutex
	calls   int
}

func (f *fakeImageGenerator) Generate(ctx context.Context, req outbound.GenerateImageRequest) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.content, nil
}

type fakeAudioGenerator struct{}

func (fakeAudioGenerator) Generate(ctx context.Context, req outbound.GenerateAudioRequest) (*outbound.GeneratedAudio, error) {
	return &outbound.GeneratedAudio{Content: []byte(req.Text), Format: "wav"}, nil
}

type fakeSynchronizer struct {
	outOfTolerance map[string]bool
}

func (f *fakeSynchronizer) Synchronize(ctx context.Context, req inbound.SyncRequest) (inbound.SyncResult, error) {
	data, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return inbound.SyncResult{}, err
	}
	result := inbound.SyncResult{Achieved: req.Requested, SpeedFactor: 1}
	if f.outOfTolerance[string(data)] {
		return result, domain.ErrSyncOutOfTolerance
	}
	return result, nil
}

type fakeAssembler struct {
	mu     sync.Mutex
	params []inbound.AssembleParams
	err    error
}

func (f *fakeAssembler) Assemble(ctx context.Context, params inbound.AssembleParams) (*inbound.AssembleResult, error) {
	f.mu.Lock()
	f.params = append(f.params, params)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	path := params.RunDir + "/" + VideoFileName
	if err := os.WriteFile(path, []byte("mp4"), 0o644); err != nil {
		return nil, err
	}
	return &inbound.AssembleResult{VideoPath: path, Duration: params.Scene.Background.Range.End}, nil
}

type recordingRunStore struct {
	mu   sync.Mutex
	runs []domain.PipelineRun
}

func (r *recordingRunStore) Save(ctx context.Context, run domain.PipelineRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, req outbound.PublishVideoRequest) (*outbound.PublishVideoResponse, error) {
	return &outbound.PublishVideoResponse{}, nil
}

type fakeEncoder struct {
	mu        sync.Mutex
	timelines []domain.Timeline
	err       error
}

func (f *fakeEncoder) Encode(ctx context.Context, timeline domain.Timeline) error {
	f.mu.Lock()
	f.timelines = append(f.timelines, timeline)
	f.mu.Unlock()
	if err := os.WriteFile(timeline.OutputPath, []byte("partial"), 0o644); err != nil {
		return err
	}
	return f.err
}
