package adapters

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
)

const (
	ffmpegBinary  = "ffmpeg"
	ffprobeBinary = "ffprobe"

	// atempo accepts factors in [0.5, 2.0] per filter instance.
	maxAtempo = 2.0
	minAtempo = 0.5
)

type ffmpegMedia struct {
	logger outbound.LoggerPort
}

func NewMediaProber(logger outbound.LoggerPort) outbound.MediaProberPort {
	return &ffmpegMedia{logger: logger}
}

func NewAudioStretcher(logger outbound.LoggerPort) outbound.AudioStretcherPort {
	return &ffmpegMedia{logger: logger}
}

func (m *ffmpegMedia) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, ffprobeBinary, "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)

	out, err := cmd.Output()
	if err != nil {
		m.logger.ErrorWithFields(err, "error getting media duration", map[string]interface{}{"path": path})
		return 0, err
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		m.logger.ErrorWithFields(err, "error parsing media duration", map[string]interface{}{"path": path})
		return 0, err
	}

	return duration, nil
}

func (m *ffmpegMedia) Stretch(ctx context.Context, src string, dst string, factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("invalid tempo factor %v", factor)
	}

	cmd := exec.CommandContext(ctx, ffmpegBinary, "-y", "-v", "error", "-i", src, "-filter:a", atempoChain(factor), dst)
	if out, err := cmd.CombinedOutput(); err != nil {
		m.logger.ErrorWithFields(err, "error changing audio tempo", map[string]interface{}{
			"path":   src,
			"factor": factor,
			"output": tail(string(out), 512),
		})
		return fmt.Errorf("ffmpeg atempo: %w", err)
	}

	return nil
}

// atempoChain splits factor into a product of filters that each stay inside the atempo range.
func atempoChain(factor float64) string {
	var filters []string
	for factor > maxAtempo {
		filters = append(filters, fmt.Sprintf("atempo=%.1f", maxAtempo))
		factor /= maxAtempo
	}
	for factor < minAtempo {
		filters = append(filters, fmt.Sprintf("atempo=%.1f", minAtempo))
		factor /= minAtempo
	}
	filters = append(filters, "atempo="+strconv.FormatFloat(factor, 'f', 6, 64))
	return strings.Join(filters, ",")
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
