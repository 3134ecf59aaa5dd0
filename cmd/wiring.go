package main

import (
	"fmt"

	"github.com/Shogun05/VoiceFrame/application/ports/inbound"
	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/application/services"
	"github.com/Shogun05/VoiceFrame/config"
	"github.com/Shogun05/VoiceFrame/domain"
	"github.com/Shogun05/VoiceFrame/infrastructure/gin_interface/controllers"
	"github.com/Shogun05/VoiceFrame/middleware"
	"github.com/gin-gonic/gin"
)

// collaborators are the outbound adapters chosen from configuration.
type collaborators struct {
	ScriptGenerator outbound.StoryScriptGeneratorPort
	ImageGenerator  outbound.ImageGeneratorPort
	AudioGenerator  outbound.AudioGeneratorPort
	Prober          outbound.MediaProberPort
	Stretcher       outbound.AudioStretcherPort
	Encoder         outbound.VideoEncoderPort
	RunStore        outbound.RunStorePort
	Publisher       outbound.VideoPublisherPort
	Mirror          outbound.EventMirrorPort
}

type pools struct {
	Run  outbound.TaskDispatcher
	Work outbound.TaskDispatcher
}

func buildPipeline(logger outbound.LoggerPort, cfg *config.PipelineConfig, style domain.BubbleStyle,
	c collaborators, p pools) (inbound.RunRegistryPort, inbound.PipelineOrchestratorPort, error) {
	registry := services.NewRunRegistry(c.Mirror, logger)

	renderer, err := services.NewBubbleRenderer()
	if err != nil {
		return nil, nil, fmt.Errorf("bubble renderer: %w", err)
	}

	synchronizer := services.NewVoiceSynchronizer(logger, c.Prober, c.Stretcher, services.VoiceSyncSettings{
		Margin:         cfg.SyncMargin,
		Tolerance:      cfg.SyncTolerance,
		MaxSpeedFactor: cfg.MaxSpeedFactor,
	})

	assembler := services.NewVideoAssembler(logger, renderer, c.Encoder, p.Work, services.AssemblerSettings{
		FPS:           cfg.VideoFPS,
		Fade:          cfg.BubbleFade,
		RenderTimeout: cfg.RenderTimeout,
		Style:         style,
	})

	pipeline := services.NewPipelineOrchestrator(services.PipelineDependencies{
		Logger:          logger,
		Registry:        registry,
		ScriptGenerator: c.ScriptGenerator,
		ImageGenerator:  c.ImageGenerator,
		AudioGenerator:  c.AudioGenerator,
		Synchronizer:    synchronizer,
		Assembler:       assembler,
		RunStore:        c.RunStore,
		Publisher:       c.Publisher,
		RunPool:         p.Run,
		WorkPool:        p.Work,
	}, services.PipelineSettings{
		WorkDir:         cfg.WorkDir,
		ScriptTimeout:   cfg.ScriptTimeout,
		ImageTimeout:    cfg.ImageTimeout,
		VoiceTimeout:    cfg.VoiceTimeout,
		AssemblyTimeout: cfg.AssemblyTimeout,
		RetryAttempts:   cfg.RetryAttempts,
		RetryBackoff:    cfg.RetryBackoff,
	})

	return registry, pipeline, nil
}

func newRouter(logger outbound.LoggerPort, serverConfig *config.ServerConfig, auth middleware.AuthHandler,
	registry inbound.RunRegistryPort, pipeline inbound.PipelineOrchestratorPort) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORSMiddleware())

	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	if auth != nil {
		router.Use(auth.AuthMiddleware())
	}

	controllers.NewProgressController(logger, registry, pipeline, serverConfig.PingInterval).RegisterRoutes(router)
	controllers.NewVideoController(logger, registry).RegisterRoutes(router)

	return router, nil
}
