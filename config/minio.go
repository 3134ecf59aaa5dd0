package config

import (
	"fmt"
	"os"
)

type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string
	UseSSL     bool
	KeyPrefix  string
}

func GetMinioConfig() (*MinioConfig, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT must be set")
	}
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	if accessKey == "" {
		return nil, fmt.Errorf("MINIO_ACCESS_KEY must be set")
	}
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("MINIO_SECRET_KEY must be set")
	}
	useSSL, err := envBool("MINIO_USE_SSL", false)
	if err != nil {
		return nil, err
	}

	return &MinioConfig{
		Endpoint:   endpoint,
		AccessKey:  accessKey,
		SecretKey:  secretKey,
		BucketName: envString("MINIO_BUCKET", "voiceframe-videos"),
		Region:     envString("MINIO_REGION", "us-east-1"),
		UseSSL:     useSSL,
		KeyPrefix:  envString("VIDEO_KEY_PREFIX", "videos"),
	}, nil
}
