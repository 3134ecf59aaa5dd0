package adapters

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Shogun05/VoiceFrame/domain"
)

func TestAtempoChain(t *testing.T) {
	tests := []struct {
		factor float64
		want   string
	}{
		{1.25, "atempo=1.250000"},
		{2.0, "atempo=2.000000"},
		{2.5, "atempo=2.0,atempo=1.250000"},
		{5.0, "atempo=2.0,atempo=2.0,atempo=1.250000"},
		{0.4, "atempo=0.5,atempo=0.800000"},
	}
	for _, tt := range tests {
		if got := atempoChain(tt.factor); got != tt.want {
			t.Errorf("atempoChain(%v) = %s, want %s", tt.factor, got, tt.want)
		}
	}
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func sampleTimeline(sequential bool) domain.Timeline {
	timeline := domain.Timeline{
		Width:      1280,
		Height:     720,
		FPS:        24,
		Duration:   9.2,
		Background: "/run/images/background.png",
		Clips: []domain.AudioClip{
			{Path: "/run/audio/000.mp3", Start: 1, Duration: 1.9},
			{Path: "/run/audio/001.mp3", Start: 2.5, Duration: 6.7},
		},
		Sequential: sequential,
		OutputPath: "/run/video.partial.mp4",
	}
	if !sequential {
		timeline.Sprites = []domain.Sprite{
			{Path: "/run/images/character_00.png", Anchor: domain.LeftAnchor, Height: 240, Margin: 40},
			{Path: "/run/images/character_01.png", Anchor: domain.RightAnchor, Height: 240, Margin: 40},
		}
		timeline.Overlays = []domain.Overlay{
			{Path: "/run/bubbles/000.png", X: 40, Y: 300, Window: domain.TimeRange{Start: 1, End: 2.9}, Fade: 0.15},
			{Path: "/run/bubbles/001.png", X: 800, Y: 280, Window: domain.TimeRange{Start: 2.5, End: 9.2}, Fade: 0.15},
		}
	}
	return timeline
}

func TestBuildEncodeArgs_Overlays(t *testing.T) {
	args := buildEncodeArgs(sampleTimeline(false))
	filter := argAfter(args, "-filter_complex")

	expected := []string{
		"[0:v]scale=1280:720,setsar=1,format=rgba[v0]",
		"[1:v]scale=-2:240,format=rgba[s0]",
		"[v0][s0]overlay=x=40:y=main_h-overlay_h[v1]",
		"[v1][s1]overlay=x=main_w-overlay_w-40:y=main_h-overlay_h[v2]",
		"[3:v]format=rgba,fade=t=in:st=1.000:d=0.150:alpha=1,fade=t=out:st=2.750:d=0.150:alpha=1[b0]",
		"[v2][b0]overlay=x=40:y=300:enable='between(t,1.000,2.900)'[v3]",
		"[v4]format=yuv420p[v]",
		"[5:a]aformat=sample_rates=44100:channel_layouts=stereo,adelay=1000|1000[a0]",
		"[6:a]aformat=sample_rates=44100:channel_layouts=stereo,adelay=2500|2500[a1]",
		"[7:a][a0][a1]amix=inputs=3:duration=first:normalize=0[a]",
	}
	for _, part := range expected {
		if !strings.Contains(filter, part) {
			t.Errorf("filter graph missing %q\n%s", part, filter)
		}
	}

	if argAfter(args, "-t") != "9.200" || argAfter(args, "-r") != "24" || argAfter(args, "-c:v") != "libx264" {
		t.Errorf("unexpected output options: %v", args)
	}
	if args[len(args)-1] != "/run/video.partial.mp4" {
		t.Errorf("output = %s", args[len(args)-1])
	}
}

func TestBuildEncodeArgs_Sequential(t *testing.T) {
	args := buildEncodeArgs(sampleTimeline(true))
	filter := argAfter(args, "-filter_complex")

	if strings.Contains(filter, "adelay") || strings.Contains(filter, "overlay") {
		t.Errorf("sequential timeline should not delay clips or overlay bubbles:\n%s", filter)
	}
	if !strings.Contains(filter, "[a0][a1]concat=n=2:v=0:a=1[narration]") ||
		!strings.Contains(filter, "[3:a][narration]amix=inputs=2:duration=first:normalize=0[a]") {
		t.Errorf("narration not concatenated:\n%s", filter)
	}
}

func TestBuildEncodeArgs_Silent(t *testing.T) {
	timeline := sampleTimeline(true)
	timeline.Clips = nil
	args := buildEncodeArgs(timeline)

	maps := 0
	for i, arg := range args {
		if arg == "-map" {
			maps++
			if maps == 2 && args[i+1] != "1:a" {
				t.Errorf("audio map = %s, want the silent base track", args[i+1])
			}
		}
	}
}

func TestFFMPEGIntegration_EncodeAndProbe(t *testing.T) {
	if _, err := exec.LookPath(ffmpegBinary); err != nil {
		t.Skip("ffmpeg not installed")
	}
	if _, err := exec.LookPath(ffprobeBinary); err != nil {
		t.Skip("ffprobe not installed")
	}

	dir := t.TempDir()
	background := filepath.Join(dir, "background.png")
	if err := exec.Command(ffmpegBinary, "-v", "error", "-f", "lavfi", "-i", "color=c=green:s=320x180", "-frames:v", "1", background).Run(); err != nil {
		t.Fatal("Failed to create background:", err)
	}
	tone := filepath.Join(dir, "tone.wav")
	if err := exec.Command(ffmpegBinary, "-v", "error", "-f", "lavfi", "-i", "sine=frequency=440:duration=2", tone).Run(); err != nil {
		t.Fatal("Failed to create tone:", err)
	}

	logger := NewZerologWrapper("disabled")
	prober := NewMediaProber(logger)
	stretcher := NewAudioStretcher(logger)
	ctx := context.Background()

	fast := filepath.Join(dir, "tone.sync.wav")
	if err := stretcher.Stretch(ctx, tone, fast, 2.5); err != nil {
		t.Fatal(err)
	}
	duration, err := prober.Duration(ctx, fast)
	if err != nil {
		t.Fatal(err)
	}
	if duration < 0.7 || duration > 0.9 {
		t.Errorf("stretched duration = %v, want about 0.8", duration)
	}

	output := filepath.Join(dir, "video.mp4")
	err = NewVideoEncoder(logger).Encode(ctx, domain.Timeline{
		Width: 320, Height: 180, FPS: 24, Duration: 3,
		Background: background,
		Clips:      []domain.AudioClip{{Path: fast, Start: 0.5, Duration: duration}},
		OutputPath: output,
	})
	if err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(output); err != nil || info.Size() == 0 {
		t.Fatalf("no video written: %v", err)
	}
}
