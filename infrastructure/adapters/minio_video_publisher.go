package adapters

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioVideoPublisher struct {
	logger      outbound.LoggerPort
	client      *minio.Client
	minioConfig *config.MinioConfig
}

// NewMinioVideoPublisher connects to the object store and creates the bucket when it is missing.
func NewMinioVideoPublisher(ctx context.Context, logger outbound.LoggerPort, minioConfig *config.MinioConfig) (outbound.VideoPublisherPort, error) {
	client, err := minio.New(minioConfig.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(minioConfig.AccessKey, minioConfig.SecretKey, ""),
		Secure:    minioConfig.UseSSL,
		Region:    minioConfig.Region,
		Transport: newObjectStoreTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	if err := ensureBucket(ctx, client, minioConfig.BucketName, minioConfig.Region); err != nil {
		return nil, fmt.Errorf("ensure video bucket: %w", err)
	}

	return &minioVideoPublisher{
		logger:      logger,
		client:      client,
		minioConfig: minioConfig,
	}, nil
}

func (m *minioVideoPublisher) Publish(ctx context.Context, req outbound.PublishVideoRequest) (*outbound.PublishVideoResponse, error) {
	objectKey := videoObjectKey(m.minioConfig.KeyPrefix, req.RunID)

	info, err := m.client.FPutObject(ctx, m.minioConfig.BucketName, objectKey, req.VideoPath, minio.PutObjectOptions{
		ContentType: "video/mp4",
	})
	if err != nil {
		m.logger.ErrorWithFields(err, "Failed to upload object to MinIO", map[string]interface{}{
			"bucket": m.minioConfig.BucketName,
			"key":    objectKey,
		})
		return nil, err
	}

	return &outbound.PublishVideoResponse{
		VideoKey: info.Key,
		Location: fmt.Sprintf("%s/%s/%s", m.client.EndpointURL(), m.minioConfig.BucketName, info.Key),
	}, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string, region string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
}

func newObjectStoreTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
