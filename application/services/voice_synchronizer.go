package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Shogun05/VoiceFrame/application/ports/inbound"
	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/domain"
)

type VoiceSyncSettings struct {
	Margin         float64
	Tolerance      float64
	MaxSpeedFactor float64
}

type voiceSynchronizer struct {
	logger    outbound.LoggerPort
	prober    outbound.MediaProberPort
	stretcher outbound.AudioStretcherPort
	settings  VoiceSyncSettings
}

func NewVoiceSynchronizer(logger outbound.LoggerPort, prober outbound.MediaProberPort, stretcher outbound.AudioStretcherPort,
	settings VoiceSyncSettings) inbound.VoiceSynchronizerPort {
	return &voiceSynchronizer{
		logger:    logger,
		prober:    prober,
		stretcher: stretcher,
		settings:  settings,
	}
}

// Synchronize fits the clip at req.AudioPath into req.Requested. Clips that are too long are sped up
// in place. Clips that are shorter keep their length and are followed by silence in the final mix.
func (v *voiceSynchronizer) Synchronize(ctx context.Context, req inbound.SyncRequest) (inbound.SyncResult, error) {
	expected := req.Requested.Duration()
	if expected <= 0 {
		return inbound.SyncResult{}, fmt.Errorf("%w: expected duration %.3f", domain.ErrInvalidTimeRange, expected)
	}

	actual, err := v.prober.Duration(ctx, req.AudioPath)
	if err != nil {
		return inbound.SyncResult{}, fmt.Errorf("measure %s: %w", filepath.Base(req.AudioPath), err)
	}

	start := req.Requested.Start
	if actual <= expected {
		return inbound.SyncResult{
			Achieved:    domain.TimeRange{Start: start, End: start + actual},
			SpeedFactor: 1,
		}, nil
	}

	speed := actual/expected + v.settings.Margin
	if speed > v.settings.MaxSpeedFactor {
		v.logger.WarnWithFields("voice clip too long to speed up", map[string]interface{}{
			"audio":        req.AudioPath,
			"actual":       actual,
			"expected":     expected,
			"speed_factor": speed,
		})
		return inbound.SyncResult{
				Achieved:    domain.TimeRange{Start: start, End: start + actual},
				SpeedFactor: speed,
			}, fmt.Errorf("%w: needs speed factor %.2f, limit is %.2f", domain.ErrSyncOutOfTolerance,
				speed, v.settings.MaxSpeedFactor)
	}

	tmpPath := stretchedPath(req.AudioPath)
	if err := v.stretcher.Stretch(ctx, req.AudioPath, tmpPath, speed); err != nil {
		_ = os.Remove(tmpPath)
		return inbound.SyncResult{}, fmt.Errorf("stretch %s: %w", filepath.Base(req.AudioPath), err)
	}
	if err := os.Rename(tmpPath, req.AudioPath); err != nil {
		_ = os.Remove(tmpPath)
		return inbound.SyncResult{}, fmt.Errorf("replace %s: %w", filepath.Base(req.AudioPath), err)
	}

	achieved, err := v.prober.Duration(ctx, req.AudioPath)
	if err != nil {
		return inbound.SyncResult{}, fmt.Errorf("measure stretched %s: %w", filepath.Base(req.AudioPath), err)
	}

	result := inbound.SyncResult{
		Achieved:    domain.TimeRange{Start: start, End: start + achieved},
		SpeedFactor: speed,
		Stretched:   true,
	}

	v.logger.DebugWithFields("voice clip stretched", map[string]interface{}{
		"audio":        req.AudioPath,
		"actual":       actual,
		"achieved":     achieved,
		"expected":     expected,
		"speed_factor": speed,
	})

	if achieved-expected > v.settings.Tolerance {
		return result, fmt.Errorf("%w: %.3fs after stretching, expected %.3fs", domain.ErrSyncOutOfTolerance, achieved, expected)
	}

	return result, nil
}

func stretchedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".sync" + ext
}
