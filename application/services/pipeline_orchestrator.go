package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/inbound"
	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/channel_utils"
	"github.com/Shogun05/VoiceFrame/domain"
	"golang.org/x/sync/errgroup"
)

const degradedStatus = "Voice timing out of tolerance, assembling without dialogue overlays"

type PipelineSettings struct {
	WorkDir         string
	ScriptTimeout   time.Duration
	ImageTimeout    time.Duration
	VoiceTimeout    time.Duration
	AssemblyTimeout time.Duration
	RetryAttempts   int
	RetryBackoff    time.Duration
}

type PipelineDependencies struct {
	Logger          outbound.LoggerPort
	Registry        inbound.RunRegistryPort
	ScriptGenerator outbound.StoryScriptGeneratorPort
	ImageGenerator  outbound.ImageGeneratorPort
	AudioGenerator  outbound.AudioGeneratorPort
	Synchronizer    inbound.VoiceSynchronizerPort
	Assembler       inbound.VideoAssemblerPort
	RunStore        outbound.RunStorePort
	Publisher       outbound.VideoPublisherPort
	// RunPool hosts one control flow per run; WorkPool bounds external calls and media work.
	RunPool  outbound.TaskDispatcher
	WorkPool outbound.TaskDispatcher
}

type pipelineOrchestrator struct {
	PipelineDependencies
	settings PipelineSettings
}

func NewPipelineOrchestrator(deps PipelineDependencies, settings PipelineSettings) inbound.PipelineOrchestratorPort {
	return &pipelineOrchestrator{
		PipelineDependencies: deps,
		settings:             settings,
	}
}

func (p *pipelineOrchestrator) Submit(ctx context.Context, runID string, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.ErrInvalidPrompt
	}

	run, err := p.Registry.Get(runID)
	if err != nil {
		return err
	}
	if run.State != domain.AwaitingPromptStage {
		return domain.ErrPromptAlreadyAccepted
	}

	if err := p.Registry.Advance(runID, domain.ScriptingStage); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrRunTerminal) {
			return domain.ErrPromptAlreadyAccepted
		}
		return err
	}

	runCtx := context.WithoutCancel(ctx)
	p.saveRun(runCtx, runID)

	p.Logger.InfoWithFields("prompt accepted", map[string]interface{}{
		"run_id": runID,
		"prompt": prompt,
	})

	err = p.RunPool.Submit(func() {
		p.run(runCtx, runID, prompt)
	})
	if err != nil {
		p.Logger.ErrorWithFields(err, "Failed to submit run to worker pool", map[string]interface{}{
			"run_id": runID,
		})
		p.fail(runCtx, runID, domain.ScriptingStage, err)
	}

	return nil
}

func (p *pipelineOrchestrator) run(ctx context.Context, runID string, prompt string) {
	logger := p.Logger.With(map[string]interface{}{"run_id": runID})
	stage := domain.ScriptingStage

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Errorf("%v", r), "Panic while running pipeline")
			p.fail(ctx, runID, stage, fmt.Errorf("internal error: %v", r))
		}
	}()

	runDir := filepath.Join(p.settings.WorkDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		p.fail(ctx, runID, stage, fmt.Errorf("create run directory: %w", err))
		return
	}

	scene, err := p.generateScript(ctx, logger, prompt)
	if err != nil {
		p.fail(ctx, runID, stage, err)
		return
	}

	stage = domain.ImageGenerationStage
	if err := p.Registry.Advance(runID, stage); err != nil {
		p.fail(ctx, runID, stage, fmt.Errorf("advance run: %w", err))
		return
	}
	characterImages, err := p.generateImages(ctx, logger, runDir, scene)
	if err != nil {
		p.fail(ctx, runID, stage, err)
		return
	}

	stage = domain.VoiceSynthesisStage
	if err := p.Registry.Advance(runID, stage); err != nil {
		p.fail(ctx, runID, stage, fmt.Errorf("advance run: %w", err))
		return
	}
	degraded, err := p.synthesizeVoices(ctx, logger, runDir, scene)
	if err != nil {
		p.fail(ctx, runID, stage, err)
		return
	}
	if degraded {
		if err := p.Registry.Publish(runID, degradedStatus); err != nil {
			logger.Error(err, "Failed to publish degraded status")
		}
	}

	stage = domain.AssemblingStage
	if err := p.Registry.Advance(runID, stage); err != nil {
		p.fail(ctx, runID, stage, fmt.Errorf("advance run: %w", err))
		return
	}
	assembleCtx, cancel := context.WithTimeout(ctx, p.settings.AssemblyTimeout)
	result, err := p.Assembler.Assemble(assembleCtx, inbound.AssembleParams{
		RunDir:          runDir,
		Scene:           *scene,
		CharacterImages: characterImages,
		Degraded:        degraded,
	})
	cancel()
	if err != nil {
		p.fail(ctx, runID, stage, err)
		return
	}

	completed, err := p.Registry.Complete(runID, result.VideoPath, degraded)
	if err != nil {
		p.fail(ctx, runID, stage, fmt.Errorf("complete run: %w", err))
		return
	}
	if !completed {
		return
	}

	logger.InfoWithFields("run completed", map[string]interface{}{
		"video":    result.VideoPath,
		"duration": result.Duration,
		"degraded": degraded,
	})
	p.saveRun(ctx, runID)
	p.publish(ctx, logger, runID, result.VideoPath)
}

func (p *pipelineOrchestrator) generateScript(ctx context.Context, logger outbound.LoggerPort, prompt string) (*domain.Scene, error) {
	scene, err := withRetry(ctx, p.policy(p.settings.ScriptTimeout), logger, "script generation",
		func(ctx context.Context) (*domain.Scene, error) {
			return channel_utils.Await(ctx, p.WorkPool, func(ctx context.Context) (*domain.Scene, error) {
				return p.ScriptGenerator.Generate(ctx, prompt)
			})
		})
	if err != nil {
		return nil, err
	}

	if err := scene.Validate(); err != nil {
		return nil, err
	}

	logger.InfoWithFields("script generated", map[string]interface{}{
		"characters": len(scene.Characters),
		"dialogues":  len(scene.Dialogues),
		"duration":   scene.Background.Range.End,
	})
	return scene, nil
}

// generateImages produces the background and one image per character concurrently. The first failure cancels the rest.
func (p *pipelineOrchestrator) generateImages(ctx context.Context, logger outbound.LoggerPort, runDir string,
	scene *domain.Scene) (map[string]string, error) {
	imageDir := filepath.Join(runDir, "images")
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}

	characterPaths := make([]string, len(scene.Characters))
	g, gctx := errgroup.WithContext(ctx)

	backgroundPath := filepath.Join(imageDir, "background.png")
	g.Go(func() error {
		return p.generateImage(gctx, logger, outbound.GenerateImageRequest{
			Description: scene.Background.Description,
			Kind:        outbound.BackgroundImageKind,
		}, backgroundPath)
	})

	for i, c := range scene.Characters {
		i, c := i, c
		path := filepath.Join(imageDir, fmt.Sprintf("character_%02d.png", i))
		g.Go(func() error {
			if err := p.generateImage(gctx, logger, outbound.GenerateImageRequest{
				Description: fmt.Sprintf("%s, %s", c.Name, c.Appearance),
				Kind:        outbound.CharacterImageKind,
			}, path); err != nil {
				return err
			}
			characterPaths[i] = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	scene.Background.ImagePath = backgroundPath
	images := make(map[string]string, len(scene.Characters))
	for i, c := range scene.Characters {
		images[c.Name] = characterPaths[i]
	}
	return images, nil
}

func (p *pipelineOrchestrator) generateImage(ctx context.Context, logger outbound.LoggerPort, req outbound.GenerateImageRequest, path string) error {
	content, err := withRetry(ctx, p.policy(p.settings.ImageTimeout), logger, string(req.Kind)+" image generation",
		func(ctx context.Context) ([]byte, error) {
			return channel_utils.Await(ctx, p.WorkPool, func(ctx context.Context) ([]byte, error) {
				return p.ImageGenerator.Generate(ctx, req)
			})
		})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("save %s image: %w", req.Kind, err)
	}
	return nil
}

// synthesizeVoices reports degraded when at least one line could not be fitted to its requested range.
func (p *pipelineOrchestrator) synthesizeVoices(ctx context.Context, logger outbound.LoggerPort, runDir string,
	scene *domain.Scene) (bool, error) {
	audioDir := filepath.Join(runDir, "audio")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return false, fmt.Errorf("create audio directory: %w", err)
	}

	var degraded atomic.Bool
	g, gctx := errgroup.WithContext(ctx)

	for i := range scene.Dialogues {
		i := i
		dialogue := scene.Dialogues[i]
		gender := scene.Characters[scene.CharacterIndex(dialogue.Character)].Gender

		g.Go(func() error {
			audio, err := withRetry(gctx, p.policy(p.settings.VoiceTimeout), logger, "voice synthesis",
				func(ctx context.Context) (*outbound.GeneratedAudio, error) {
					return channel_utils.Await(ctx, p.WorkPool, func(ctx context.Context) (*outbound.GeneratedAudio, error) {
						return p.AudioGenerator.Generate(ctx, outbound.GenerateAudioRequest{
							Text:   dialogue.Line,
							Gender: gender,
						})
					})
				})
			if err != nil {
				return err
			}

			format := audio.Format
			if format == "" {
				format = "mp3"
			}
			path := filepath.Join(audioDir, fmt.Sprintf("%03d.%s", i, format))
			if err := os.WriteFile(path, audio.Content, 0o644); err != nil {
				return fmt.Errorf("save voice clip %d: %w", i, err)
			}

			syncCtx, cancel := context.WithTimeout(gctx, p.settings.VoiceTimeout)
			defer cancel()
			result, err := channel_utils.Await(syncCtx, p.WorkPool, func(ctx context.Context) (inbound.SyncResult, error) {
				return p.Synchronizer.Synchronize(ctx, inbound.SyncRequest{
					AudioPath: path,
					Requested: dialogue.Requested,
				})
			})
			if errors.Is(err, domain.ErrSyncOutOfTolerance) {
				logger.WarnWithFields("voice clip out of tolerance", map[string]interface{}{
					"dialogue": i,
					"error":    err.Error(),
				})
				degraded.Store(true)
			} else if err != nil {
				return fmt.Errorf("synchronize voice clip %d: %w", i, err)
			}

			scene.Dialogues[i].AudioPath = path
			scene.Dialogues[i].Achieved = result.Achieved
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return false, err
	}
	return degraded.Load(), nil
}

func (p *pipelineOrchestrator) fail(ctx context.Context, runID string, stage domain.Stage, err error) {
	var stageErr *domain.StageError
	if !errors.As(err, &stageErr) {
		stageErr = domain.NewStageError(stage, err)
	}

	failed, regErr := p.Registry.Fail(runID, stageErr)
	if regErr != nil {
		p.Logger.ErrorWithFields(regErr, "Failed to mark run as failed", map[string]interface{}{
			"run_id": runID,
		})
		return
	}
	if !failed {
		return
	}

	p.Logger.ErrorWithFields(err, "run failed", map[string]interface{}{
		"run_id": runID,
		"stage":  stageErr.Stage,
	})
	p.saveRun(ctx, runID)
}

func (p *pipelineOrchestrator) saveRun(ctx context.Context, runID string) {
	run, err := p.Registry.Get(runID)
	if err != nil {
		return
	}
	if err := p.RunStore.Save(ctx, run); err != nil {
		p.Logger.ErrorWithFields(err, "Failed to persist run", map[string]interface{}{
			"run_id": runID,
		})
	}
}

// publish copies the finished video to the configured object store after the client was told the run is done.
// Failures are logged only.
func (p *pipelineOrchestrator) publish(ctx context.Context, logger outbound.LoggerPort, runID string, videoPath string) {
	publishCtx, cancel := context.WithTimeout(ctx, p.settings.AssemblyTimeout)
	defer cancel()

	res, err := p.Publisher.Publish(publishCtx, outbound.PublishVideoRequest{
		VideoPath: videoPath,
		RunID:     runID,
	})
	if err != nil {
		logger.Error(err, "Failed to publish video")
		return
	}
	if res != nil && res.VideoKey != "" {
		logger.InfoWithFields("video published", map[string]interface{}{
			"key":      res.VideoKey,
			"location": res.Location,
		})
	}
}

func (p *pipelineOrchestrator) policy(timeout time.Duration) RetryPolicy {
	return RetryPolicy{
		Attempts: p.settings.RetryAttempts,
		Backoff:  p.settings.RetryBackoff,
		Timeout:  timeout,
	}
}
