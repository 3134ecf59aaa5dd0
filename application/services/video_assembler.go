package services

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/inbound"
	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/channel_utils"
	"github.com/Shogun05/VoiceFrame/domain"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

const (
	bubbleMargin      = 40
	bubbleSpriteGap   = 20
	bubbleTopMargin   = 10
	bubbleWidthFactor = 0.4
	VideoFileName     = "video.mp4"
	partialFileName   = "video.partial.mp4"
)

type AssemblerSettings struct {
	FPS           int
	Fade          time.Duration
	RenderTimeout time.Duration
	Style         domain.BubbleStyle
}

type videoAssembler struct {
	logger     outbound.LoggerPort
	renderer   inbound.BubbleRendererPort
	encoder    outbound.VideoEncoderPort
	workerPool outbound.TaskDispatcher
	settings   AssemblerSettings
}

func NewVideoAssembler(logger outbound.LoggerPort, renderer inbound.BubbleRendererPort, encoder outbound.VideoEncoderPort,
	workerPool outbound.TaskDispatcher, settings AssemblerSettings) inbound.VideoAssemblerPort {
	return &videoAssembler{
		logger:     logger,
		renderer:   renderer,
		encoder:    encoder,
		workerPool: workerPool,
		settings:   settings,
	}
}

func (v *videoAssembler) Assemble(ctx context.Context, params inbound.AssembleParams) (*inbound.AssembleResult, error) {
	width, height, err := imageSize(params.Scene.Background.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: background: %v", domain.ErrAssembly, err)
	}

	partialPath := filepath.Join(params.RunDir, partialFileName)
	timeline := domain.Timeline{
		Width:      width &^ 1,
		Height:     height &^ 1,
		FPS:        v.settings.FPS,
		Background: params.Scene.Background.ImagePath,
		OutputPath: partialPath,
	}

	if params.Degraded {
		v.buildDegradedTimeline(&timeline, params.Scene)
	} else {
		bubbleDir := filepath.Join(params.RunDir, "bubbles")
		defer func() {
			if err := os.RemoveAll(bubbleDir); err != nil {
				v.logger.Error(err, "Failed to remove bubble scratch files")
			}
		}()
		if err := v.buildTimeline(ctx, &timeline, params, bubbleDir); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrAssembly, err)
		}
	}

	// The work pool bounds concurrent ffmpeg processes.
	if err := channel_utils.AwaitErr(ctx, v.workerPool, func(ctx context.Context) error {
		return v.encoder.Encode(ctx, timeline)
	}); err != nil {
		v.removePartial(partialPath)
		return nil, fmt.Errorf("%w: %v", domain.ErrAssembly, err)
	}

	videoPath := filepath.Join(params.RunDir, VideoFileName)
	if err := os.Rename(partialPath, videoPath); err != nil {
		v.removePartial(partialPath)
		return nil, fmt.Errorf("%w: %v", domain.ErrAssembly, err)
	}

	v.logger.InfoWithFields("video assembled", map[string]interface{}{
		"video":    videoPath,
		"duration": timeline.Duration,
		"degraded": params.Degraded,
		"overlays": len(timeline.Overlays),
	})

	return &inbound.AssembleResult{VideoPath: videoPath, Duration: timeline.Duration}, nil
}

func (v *videoAssembler) buildTimeline(ctx context.Context, timeline *domain.Timeline, params inbound.AssembleParams, bubbleDir string) error {
	if err := os.MkdirAll(bubbleDir, 0o755); err != nil {
		return err
	}

	scene := params.Scene
	spriteHeight := timeline.Height / 3

	for i, c := range scene.Characters {
		path, ok := params.CharacterImages[c.Name]
		if !ok {
			continue
		}
		timeline.Sprites = append(timeline.Sprites, domain.Sprite{
			Path:   path,
			Anchor: anchorFor(i),
			Height: spriteHeight,
			Margin: bubbleMargin,
		})
	}

	dialogues := make([]domain.Dialogue, len(scene.Dialogues))
	copy(dialogues, scene.Dialogues)
	sort.SliceStable(dialogues, func(i, j int) bool {
		return dialogues[i].Achieved.Start < dialogues[j].Achieved.Start
	})

	maxWidth := int(float64(timeline.Width) * bubbleWidthFactor)
	if v.settings.Style.MaxWidth > 0 {
		maxWidth = min(maxWidth, v.settings.Style.MaxWidth)
	}

	overlays := make([]domain.Overlay, len(dialogues))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range dialogues {
		i, d := i, d
		anchor := anchorFor(scene.CharacterIndex(d.Character))
		g.Go(func() error {
			renderCtx, cancel := context.WithTimeout(gctx, v.settings.RenderTimeout)
			defer cancel()

			bubble, err := channel_utils.Await(renderCtx, v.workerPool, func(ctx context.Context) (*domain.Bubble, error) {
				return v.renderer.Render(inbound.RenderBubbleParams{
					Text:     fmt.Sprintf("%s: %s", d.Character, d.Line),
					MaxWidth: maxWidth,
					Style:    v.settings.Style,
					Anchor:   anchor,
					AddTail:  true,
				})
			})
			if err != nil {
				return fmt.Errorf("render bubble %d: %w", i, err)
			}
			bubble.Range = d.Achieved

			path := filepath.Join(bubbleDir, fmt.Sprintf("%03d.png", i))
			if err := writePNG(path, bubble.Image); err != nil {
				return fmt.Errorf("save bubble %d: %w", i, err)
			}

			overlays[i] = v.placeBubble(path, bubble, timeline.Width, timeline.Height, spriteHeight)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	timeline.Overlays = overlays
	duration := scene.Background.Range.End
	for _, d := range dialogues {
		timeline.Clips = append(timeline.Clips, domain.AudioClip{
			Path:     d.AudioPath,
			Start:    d.Achieved.Start,
			Duration: d.Achieved.Duration(),
		})
		duration = max(duration, d.Achieved.End)
	}
	timeline.Duration = duration

	return nil
}

// buildDegradedTimeline plays every clip back to back over the bare background.
func (v *videoAssembler) buildDegradedTimeline(timeline *domain.Timeline, scene domain.Scene) {
	timeline.Sequential = true

	narration := 0.0
	for _, d := range scene.Dialogues {
		length := d.Achieved.Duration()
		if length <= 0 {
			length = d.Requested.Duration()
		}
		timeline.Clips = append(timeline.Clips, domain.AudioClip{
			Path:     d.AudioPath,
			Start:    narration,
			Duration: length,
		})
		narration += length
	}

	timeline.Duration = max(scene.Background.Range.End, narration)
}

func (v *videoAssembler) placeBubble(path string, bubble *domain.Bubble, width int, height int, spriteHeight int) domain.Overlay {
	x := bubbleMargin
	if bubble.Anchor == domain.RightAnchor {
		x = width - bubbleMargin - bubble.Width
	}
	y := height - spriteHeight - bubbleSpriteGap - bubble.Height

	fade := min(v.settings.Fade.Seconds(), bubble.Range.Duration()/6)

	return domain.Overlay{
		Path:   path,
		X:      max(x, 0),
		Y:      max(y, bubbleTopMargin),
		Window: bubble.Range,
		Fade:   max(fade, 0),
	}
}

func (v *videoAssembler) removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		v.logger.ErrorWithFields(err, "Failed to remove partial video", map[string]interface{}{
			"path": path,
		})
	}
}

func anchorFor(characterIndex int) domain.AnchorSide {
	if characterIndex%2 == 1 {
		return domain.RightAnchor
	}
	return domain.LeftAnchor
}

func imageSize(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
