package adapters

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/domain"
)

const (
	audioSampleRate = 44100
	audioBitrate    = "192k"
)

type ffmpegVideoEncoder struct {
	logger outbound.LoggerPort
}

func NewVideoEncoder(logger outbound.LoggerPort) outbound.VideoEncoderPort {
	return &ffmpegVideoEncoder{
		logger: logger,
	}
}

func (v *ffmpegVideoEncoder) Encode(ctx context.Context, timeline domain.Timeline) error {
	args := buildEncodeArgs(timeline)
	v.logger.Debug("ffmpeg " + strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, ffmpegBinary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		v.logger.ErrorWithFields(err, "error encoding video", map[string]interface{}{
			"output_path": timeline.OutputPath,
			"output":      tail(string(out), 1024),
		})
		return fmt.Errorf("ffmpeg encode: %w", err)
	}

	return nil
}

func seconds(value float64) string {
	return fmt.Sprintf("%.3f", value)
}

// buildEncodeArgs lays out inputs as background, sprites, bubbles, audio clips and finally a silent base track.
func buildEncodeArgs(timeline domain.Timeline) []string {
	duration := seconds(timeline.Duration)
	args := []string{"-y", "-v", "error",
		"-loop", "1", "-framerate", fmt.Sprint(timeline.FPS), "-t", duration, "-i", timeline.Background}

	input := 1
	spriteInputs := make([]int, len(timeline.Sprites))
	for i, sprite := range timeline.Sprites {
		args = append(args, "-loop", "1", "-t", duration, "-i", sprite.Path)
		spriteInputs[i] = input
		input++
	}
	overlayInputs := make([]int, len(timeline.Overlays))
	for i, overlay := range timeline.Overlays {
		args = append(args, "-loop", "1", "-t", duration, "-i", overlay.Path)
		overlayInputs[i] = input
		input++
	}
	clipInputs := make([]int, len(timeline.Clips))
	for i, clip := range timeline.Clips {
		args = append(args, "-i", clip.Path)
		clipInputs[i] = input
		input++
	}
	silenceInput := input
	args = append(args, "-f", "lavfi", "-t", duration, "-i",
		fmt.Sprintf("anullsrc=r=%d:cl=stereo", audioSampleRate))

	var filters []string
	filters = append(filters, fmt.Sprintf("[0:v]scale=%d:%d,setsar=1,format=rgba[v0]", timeline.Width, timeline.Height))
	last := "v0"
	step := 0
	next := func() string {
		step++
		return fmt.Sprintf("v%d", step)
	}

	for i, sprite := range timeline.Sprites {
		x := fmt.Sprintf("%d", sprite.Margin)
		if sprite.Anchor == domain.RightAnchor {
			x = fmt.Sprintf("main_w-overlay_w-%d", sprite.Margin)
		}
		filters = append(filters, fmt.Sprintf("[%d:v]scale=-2:%d,format=rgba[s%d]", spriteInputs[i], sprite.Height, i))
		out := next()
		filters = append(filters, fmt.Sprintf("[%s][s%d]overlay=x=%s:y=main_h-overlay_h[%s]", last, i, x, out))
		last = out
	}

	for i, overlay := range timeline.Overlays {
		start, end := overlay.Window.Start, overlay.Window.End
		filters = append(filters, fmt.Sprintf("[%d:v]format=rgba,fade=t=in:st=%s:d=%s:alpha=1,fade=t=out:st=%s:d=%s:alpha=1[b%d]",
			overlayInputs[i], seconds(start), seconds(overlay.Fade), seconds(end-overlay.Fade), seconds(overlay.Fade), i))
		out := next()
		filters = append(filters, fmt.Sprintf("[%s][b%d]overlay=x=%d:y=%d:enable='between(t,%s,%s)'[%s]",
			last, i, overlay.X, overlay.Y, seconds(start), seconds(end), out))
		last = out
	}
	filters = append(filters, fmt.Sprintf("[%s]format=yuv420p[v]", last))

	audioLabel := fmt.Sprintf("%d:a", silenceInput)
	if len(timeline.Clips) > 0 {
		clipFormat := fmt.Sprintf("aformat=sample_rates=%d:channel_layouts=stereo", audioSampleRate)
		labels := make([]string, 0, len(timeline.Clips))
		for i, clip := range timeline.Clips {
			filter := fmt.Sprintf("[%d:a]%s", clipInputs[i], clipFormat)
			if !timeline.Sequential {
				delay := int(clip.Start * 1000)
				filter += fmt.Sprintf(",adelay=%d|%d", delay, delay)
			}
			filters = append(filters, fmt.Sprintf("%s[a%d]", filter, i))
			labels = append(labels, fmt.Sprintf("[a%d]", i))
		}

		if timeline.Sequential {
			filters = append(filters, fmt.Sprintf("%sconcat=n=%d:v=0:a=1[narration]", strings.Join(labels, ""), len(labels)))
			labels = []string{"[narration]"}
		}
		filters = append(filters, fmt.Sprintf("[%d:a]%samix=inputs=%d:duration=first:normalize=0[a]",
			silenceInput, strings.Join(labels, ""), len(labels)+1))
		audioLabel = "[a]"
	}

	args = append(args,
		"-filter_complex", strings.Join(filters, ";"),
		"-map", "[v]", "-map", audioLabel,
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-r", fmt.Sprint(timeline.FPS),
		"-c:a", "aac", "-b:a", audioBitrate,
		"-movflags", "+faststart",
		"-t", duration,
		"-f", "mp4",
		timeline.OutputPath,
	)

	return args
}
