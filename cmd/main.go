package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/config"
	"github.com/Shogun05/VoiceFrame/infrastructure/adapters"
	"github.com/Shogun05/VoiceFrame/middleware"
	mockgenerator "github.com/Shogun05/VoiceFrame/mock"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverConfig, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get server config")
	}

	pipelineConfig, err := config.GetPipelineConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get pipeline config")
	}

	bubbleStyles, err := config.LoadBubbleStyles(serverConfig.BubbleStylesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load bubble styles")
	}
	bubbleStyle, err := bubbleStyles.Get(pipelineConfig.BubbleStyle)
	if err != nil {
		log.Fatal().Err(err).Msg("Unknown bubble style")
	}

	if err := os.MkdirAll(pipelineConfig.WorkDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create work directory")
	}

	zeroLogger := adapters.NewZerologWrapper(serverConfig.LogLevel)

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	runPool, err := ants.NewPool(pipelineConfig.RunPoolSize, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create run pool")
	}
	defer runPool.Release()

	workPool, err := ants.NewPool(pipelineConfig.WorkPoolSize, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create work pool")
	}
	defer workPool.Release()

	deps, closeDeps, err := selectCollaborators(ctx, serverConfig, zeroLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create collaborators")
	}
	defer closeDeps()

	registry, pipeline, err := buildPipeline(zeroLogger, pipelineConfig, bubbleStyle, deps, pools{Run: runPool, Work: workPool})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}

	var authHandler middleware.AuthHandler
	if serverConfig.JwksURL != "" {
		authHandler, err = middleware.NewAuthHandler(serverConfig.JwksURL, zeroLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
	}

	if serverConfig.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := newRouter(zeroLogger, serverConfig, authHandler, registry, pipeline)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	srv := &http.Server{
		Addr:              ":" + serverConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zeroLogger.InfoWithFields("http server listening", map[string]interface{}{"addr": srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zeroLogger.Error(err, "Failed to shut down server")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zeroLogger.Error(err, "Failed to start server!")
		}
	}
}

// selectCollaborators picks model, storage and mirror adapters. The returned func releases what was opened.
func selectCollaborators(ctx context.Context, serverConfig *config.ServerConfig, logger outbound.LoggerPort) (collaborators, func(), error) {
	deps := collaborators{
		Prober:    adapters.NewMediaProber(logger),
		Stretcher: adapters.NewAudioStretcher(logger),
		Encoder:   adapters.NewVideoEncoder(logger),
		RunStore:  adapters.NewLogRunStore(logger),
		Publisher: adapters.NewLocalVideoPublisher(),
	}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if serverConfig.MockGenerators {
		generators := mockgenerator.Init(serverConfig.MockScenePath, time.Duration(serverConfig.MockDelay)*time.Millisecond, logger)
		deps.ScriptGenerator = generators.Script
		deps.ImageGenerator = generators.Image
		deps.AudioGenerator = generators.Audio
		logger.Warn("Using mock generators")
	} else {
		gptConfig, err := config.GetGptConfig()
		if err != nil {
			return deps, closeAll, err
		}
		dalleConfig, err := config.GetDaLLeConfig()
		if err != nil {
			return deps, closeAll, err
		}
		elevenLabsConfig, err := config.GetElevenLabsConfig()
		if err != nil {
			return deps, closeAll, err
		}

		contentFetcher := adapters.NewContentFetcher(logger, nil)
		deps.ScriptGenerator = adapters.NewStoryScriptGenerator(gptConfig, http.DefaultTransport, logger)
		deps.ImageGenerator = adapters.NewImageGenerator(contentFetcher, dalleConfig, logger)
		deps.AudioGenerator = adapters.NewAudioGenerator(contentFetcher, elevenLabsConfig, logger)
	}

	var sess *session.Session
	awsSession := func() (*session.Session, error) {
		if sess != nil {
			return sess, nil
		}
		var err error
		sess, err = session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
		})
		return sess, err
	}

	switch serverConfig.VideoStore {
	case config.S3Store:
		s3Config, err := config.GetS3Config()
		if err != nil {
			return deps, closeAll, err
		}
		s, err := awsSession()
		if err != nil {
			return deps, closeAll, fmt.Errorf("aws session: %w", err)
		}
		deps.Publisher = adapters.NewS3VideoPublisher(logger, s3.New(s), s3Config)
	case config.MinioStore:
		minioConfig, err := config.GetMinioConfig()
		if err != nil {
			return deps, closeAll, err
		}
		publisher, err := adapters.NewMinioVideoPublisher(ctx, logger, minioConfig)
		if err != nil {
			return deps, closeAll, err
		}
		deps.Publisher = publisher
	}

	if serverConfig.RunStore == config.DynamoStore {
		dynamoConfig, err := config.GetDynamoConfig()
		if err != nil {
			return deps, closeAll, err
		}
		s, err := awsSession()
		if err != nil {
			return deps, closeAll, fmt.Errorf("aws session: %w", err)
		}
		deps.RunStore = adapters.NewDynamoRunStore(logger, dynamodb.New(s), dynamoConfig)
	}

	if serverConfig.MirrorEvents {
		redisConfig, err := config.GetRedisConfig()
		if err != nil {
			return deps, closeAll, err
		}
		client := adapters.NewRedisClient(redisConfig)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error(err, "Redis unreachable, mirrored events will be retried per write")
		}
		mirror := adapters.NewRedisEventMirror(logger, client, redisConfig.EventTTL)
		deps.Mirror = mirror
		closers = append(closers, mirror.Close, func() {
			if err := client.Close(); err != nil {
				logger.Error(err, "Failed to close redis client")
			}
		})
	}

	return deps, closeAll, nil
}
