package main

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/Shogun05/VoiceFrame/config"
	"github.com/Shogun05/VoiceFrame/domain"
	"github.com/Shogun05/VoiceFrame/infrastructure/adapters"
	mockgenerator "github.com/Shogun05/VoiceFrame/mock"
	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
)

const (
	wavHeaderSize = 44
	wavByteRate   = 22050 * 2
)

// wavMedia measures and stretches the silent clips of the mock audio generator without ffmpeg.
type wavMedia struct{}

func (wavMedia) Duration(ctx context.Context, path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return float64(info.Size()-wavHeaderSize) / wavByteRate, nil
}

func (m wavMedia) Stretch(ctx context.Context, src string, dst string, factor float64) error {
	seconds, err := m.Duration(ctx, src)
	if err != nil {
		return err
	}
	dataSize := uint32(seconds/factor*wavByteRate) &^ 1
	header := make([]byte, wavHeaderSize)
	copy(header, "RIFF")
	binary.LittleEndian.PutUint32(header[4:], 36+dataSize)
	copy(header[8:], "WAVEfmt ")
	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], dataSize)
	return os.WriteFile(dst, append(header, make([]byte, dataSize)...), 0o644)
}

type fileEncoder struct {
	timelines chan domain.Timeline
}

func (e *fileEncoder) Encode(ctx context.Context, timeline domain.Timeline) error {
	e.timelines <- timeline
	return os.WriteFile(timeline.OutputPath, []byte("0123456789"), 0o644)
}

type testHarness struct {
	encoder *fileEncoder
	router  *gin.Engine
	submit  func(runID string, prompt string) domain.ProgressEvent
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := adapters.NewZerologWrapperWithWriter(io.Discard, "error")
	cfg := config.DefaultPipelineConfig(t.TempDir())

	styles, err := config.LoadBubbleStyles("")
	if err != nil {
		t.Fatal("Failed to load bubble styles:", err)
	}
	style, err := styles.Get(cfg.BubbleStyle)
	if err != nil {
		t.Fatal("Failed to get bubble style:", err)
	}

	runPool, err := ants.NewPool(cfg.RunPoolSize)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(runPool.Release)
	workPool, err := ants.NewPool(cfg.WorkPoolSize)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(workPool.Release)

	generators := mockgenerator.Init("", 0, logger)
	encoder := &fileEncoder{timelines: make(chan domain.Timeline, 1)}

	registry, pipeline, err := buildPipeline(logger, cfg, style, collaborators{
		ScriptGenerator: generators.Script,
		ImageGenerator:  generators.Image,
		AudioGenerator:  generators.Audio,
		Prober:          wavMedia{},
		Stretcher:       wavMedia{},
		Encoder:         encoder,
		RunStore:        adapters.NewLogRunStore(logger),
		Publisher:       adapters.NewLocalVideoPublisher(),
	}, pools{Run: runPool, Work: workPool})
	if err != nil {
		t.Fatal("Failed to build pipeline:", err)
	}

	router, err := newRouter(logger, &config.ServerConfig{PingInterval: time.Second}, nil, registry, pipeline)
	if err != nil {
		t.Fatal("Failed to build router:", err)
	}

	return &testHarness{
		encoder: encoder,
		router:  router,
		submit: func(runID string, prompt string) domain.ProgressEvent {
			t.Helper()
			if _, err := registry.Create(runID); err != nil {
				t.Fatal(err)
			}
			sub, err := registry.Subscribe(runID)
			if err != nil {
				t.Fatal(err)
			}
			defer sub.Close()

			if err := pipeline.Submit(context.Background(), runID, prompt); err != nil {
				t.Fatal("Failed to submit prompt:", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			var last domain.ProgressEvent
			for {
				event, err := sub.Next(ctx)
				if errors.Is(err, io.EOF) {
					return last
				}
				if err != nil {
					t.Fatal("Run did not finish:", err)
				}
				last = event
			}
		},
	}
}

func TestPipelineEndToEndWithMockGenerators(t *testing.T) {
	h := newTestHarness(t)

	last := h.submit("run-e2e", "a mouse saves the forest from a fire")

	if last.Kind != domain.DoneEventKind {
		t.Fatalf("Expected done event, got %+v", last)
	}
	if last.VideoID != "run-e2e" {
		t.Errorf("Expected video id run-e2e, got %q", last.VideoID)
	}

	timeline := <-h.encoder.timelines
	if len(timeline.Sprites) != 2 {
		t.Errorf("Expected 2 character sprites, got %d", len(timeline.Sprites))
	}
	if len(timeline.Clips) != 4 {
		t.Errorf("Expected 4 voice clips, got %d", len(timeline.Clips))
	}
	if len(timeline.Overlays) != 4 {
		t.Errorf("Expected 4 bubble overlays, got %d", len(timeline.Overlays))
	}
	if _, err := os.Stat(timeline.OutputPath); err != nil {
		t.Errorf("Expected video file on disk: %v", err)
	}
}

func TestRouterServesFinishedVideo(t *testing.T) {
	h := newTestHarness(t)
	h.submit("run-video", "an owl teaches the stars to sing")

	req := httptest.NewRequest(http.MethodGet, "/videos/run-video", nil)
	req.Header.Set("Range", "bytes=0-3")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("Expected 206, got %d", w.Code)
	}
	if w.Body.String() != "0123" {
		t.Errorf("Expected first four bytes, got %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 from health, got %d", w.Code)
	}
}
