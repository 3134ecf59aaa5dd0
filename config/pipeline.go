package config

import (
	"fmt"
	"time"
)

type PipelineConfig struct {
	WorkDir         string
	RunPoolSize     int
	WorkPoolSize    int
	ScriptTimeout   time.Duration
	ImageTimeout    time.Duration
	VoiceTimeout    time.Duration
	RenderTimeout   time.Duration
	AssemblyTimeout time.Duration
	RetryAttempts   int
	RetryBackoff    time.Duration
	SyncMargin      float64
	SyncTolerance   float64
	MaxSpeedFactor  float64
	BubbleFade      time.Duration
	VideoFPS        int
	BubbleStyle     string
}

func GetPipelineConfig() (*PipelineConfig, error) {
	cfg := &PipelineConfig{
		WorkDir:     envString("WORK_DIR", "/tmp/voiceframe"),
		BubbleStyle: envString("BUBBLE_STYLE", "modern_bubbles"),
	}

	var err error
	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"RUN_POOL_SIZE", 64, &cfg.RunPoolSize},
		{"WORK_POOL_SIZE", 8, &cfg.WorkPoolSize},
		{"RETRY_ATTEMPTS", 3, &cfg.RetryAttempts},
		{"VIDEO_FPS", 24, &cfg.VideoFPS},
	}
	for _, v := range ints {
		if *v.dst, err = envInt(v.key, v.def); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"SCRIPT_TIMEOUT", 90 * time.Second, &cfg.ScriptTimeout},
		{"IMAGE_TIMEOUT", 120 * time.Second, &cfg.ImageTimeout},
		{"VOICE_TIMEOUT", 60 * time.Second, &cfg.VoiceTimeout},
		{"RENDER_TIMEOUT", 30 * time.Second, &cfg.RenderTimeout},
		{"ASSEMBLY_TIMEOUT", 10 * time.Minute, &cfg.AssemblyTimeout},
		{"RETRY_BACKOFF", 500 * time.Millisecond, &cfg.RetryBackoff},
		{"BUBBLE_FADE", 150 * time.Millisecond, &cfg.BubbleFade},
	}
	for _, v := range durations {
		if *v.dst, err = envDuration(v.key, v.def); err != nil {
			return nil, err
		}
	}

	floats := []struct {
		key string
		def float64
		dst *float64
	}{
		{"SYNC_MARGIN", 0.05, &cfg.SyncMargin},
		{"SYNC_TOLERANCE", 0.1, &cfg.SyncTolerance},
		{"SYNC_MAX_SPEED_FACTOR", 2.5, &cfg.MaxSpeedFactor},
	}
	for _, v := range floats {
		if *v.dst, err = envFloat(v.key, v.def); err != nil {
			return nil, err
		}
	}

	if cfg.RunPoolSize <= 0 || cfg.WorkPoolSize <= 0 {
		return nil, fmt.Errorf("RUN_POOL_SIZE and WORK_POOL_SIZE must be positive")
	}
	if cfg.RetryAttempts < 1 {
		return nil, fmt.Errorf("RETRY_ATTEMPTS must be at least 1")
	}
	if cfg.MaxSpeedFactor <= 1 {
		return nil, fmt.Errorf("SYNC_MAX_SPEED_FACTOR must be greater than 1")
	}

	return cfg, nil
}

// DefaultPipelineConfig holds short timeouts suited to tests.
func DefaultPipelineConfig(workDir string) *PipelineConfig {
	return &PipelineConfig{
		WorkDir:         workDir,
		RunPoolSize:     16,
		WorkPoolSize:    4,
		ScriptTimeout:   5 * time.Second,
		ImageTimeout:    5 * time.Second,
		VoiceTimeout:    5 * time.Second,
		RenderTimeout:   5 * time.Second,
		AssemblyTimeout: 30 * time.Second,
		RetryAttempts:   2,
		RetryBackoff:    10 * time.Millisecond,
		SyncMargin:      0.05,
		SyncTolerance:   0.1,
		MaxSpeedFactor:  2.5,
		BubbleFade:      150 * time.Millisecond,
		VideoFPS:        24,
		BubbleStyle:     "modern_bubbles",
	}
}
