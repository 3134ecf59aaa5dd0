package config

import (
	"fmt"
	"time"
)

type StoreKind string

const (
	NoStore     StoreKind = ""
	S3Store     StoreKind = "s3"
	MinioStore  StoreKind = "minio"
	DynamoStore StoreKind = "dynamo"
)

type ServerConfig struct {
	Port             string
	LogLevel         string
	JwksURL          string
	BubbleStylesPath string
	MockGenerators   bool
	MockDelay        int
	MockScenePath    string
	PingInterval     time.Duration
	VideoStore       StoreKind
	RunStore         StoreKind
	MirrorEvents     bool
}

func GetServerConfig() (*ServerConfig, error) {
	mockGenerators, err := envBool("MOCK_GENERATORS", false)
	if err != nil {
		return nil, err
	}
	mockDelay, err := envInt("MOCK_DELAY_MS", 0)
	if err != nil {
		return nil, err
	}
	pingInterval, err := envDuration("WS_PING_INTERVAL", 20*time.Second)
	if err != nil {
		return nil, err
	}
	mirrorEvents, err := envBool("MIRROR_EVENTS", false)
	if err != nil {
		return nil, err
	}

	videoStore := StoreKind(envString("VIDEO_STORE", ""))
	if videoStore != NoStore && videoStore != S3Store && videoStore != MinioStore {
		return nil, fmt.Errorf("VIDEO_STORE must be one of s3, minio or empty, got %q", videoStore)
	}
	runStore := StoreKind(envString("RUN_STORE", ""))
	if runStore != NoStore && runStore != DynamoStore {
		return nil, fmt.Errorf("RUN_STORE must be dynamo or empty, got %q", runStore)
	}

	return &ServerConfig{
		Port:             envString("PORT", "8080"),
		LogLevel:         envString("LOG_LEVEL", "info"),
		JwksURL:          envString("JWKS_URL", ""),
		BubbleStylesPath: envString("BUBBLE_STYLES_PATH", ""),
		MockGenerators:   mockGenerators,
		MockDelay:        mockDelay,
		MockScenePath:    envString("MOCK_SCENE_PATH", ""),
		PingInterval:     pingInterval,
		VideoStore:       videoStore,
		RunStore:         runStore,
		MirrorEvents:     mirrorEvents,
	}, nil
}
