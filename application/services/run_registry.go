package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/inbound"
	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/domain"
)

type runEntry struct {
	mu          sync.Mutex
	run         domain.PipelineRun
	events      []domain.ProgressEvent
	subscribers map[*subscription]struct{}
}

type runRegistry struct {
	mu     sync.RWMutex
	runs   map[string]*runEntry
	mirror outbound.EventMirrorPort
	logger outbound.LoggerPort
	now    func() time.Time
}

func NewRunRegistry(mirror outbound.EventMirrorPort, logger outbound.LoggerPort) inbound.RunRegistryPort {
	return &runRegistry{
		runs:   make(map[string]*runEntry),
		mirror: mirror,
		logger: logger,
		now:    time.Now,
	}
}

func (r *runRegistry) Create(runID string) (*domain.PipelineRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[runID]; ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunExists, runID)
	}

	now := r.now()
	entry := &runEntry{
		run: domain.PipelineRun{
			ID:        runID,
			State:     domain.AwaitingPromptStage,
			CreatedAt: now,
			UpdatedAt: now,
		},
		subscribers: make(map[*subscription]struct{}),
	}
	r.runs[runID] = entry

	run := entry.run
	return &run, nil
}

func (r *runRegistry) entry(runID string) (*runEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: run %s", domain.ErrNotFound, runID)
	}
	return entry, nil
}

// Advance moves the run to stage and, for working stages, emits a status event carrying the stage label.
func (r *runRegistry) Advance(runID string, stage domain.Stage) error {
	if stage.IsTerminal() {
		return fmt.Errorf("%w: use Complete or Fail to finish a run", domain.ErrInvalidTransition)
	}

	entry, err := r.entry(runID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := domain.CheckTransition(entry.run.State, stage); err != nil {
		return err
	}

	entry.run.State = stage
	entry.run.UpdatedAt = r.now()
	r.appendLocked(entry, domain.ProgressEvent{
		Kind:   domain.StatusEventKind,
		Status: stage.Label(),
	})

	return nil
}

// Publish emits an extra status event without changing the stage.
func (r *runRegistry) Publish(runID string, status string) error {
	entry, err := r.entry(runID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.run.State.IsTerminal() {
		return fmt.Errorf("%w: %s", domain.ErrRunTerminal, runID)
	}

	r.appendLocked(entry, domain.ProgressEvent{
		Kind:   domain.StatusEventKind,
		Status: status,
	})
	return nil
}

func (r *runRegistry) Complete(runID string, outputPath string, degraded bool) (bool, error) {
	entry, err := r.entry(runID)
	if err != nil {
		return false, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.run.State.IsTerminal() {
		return false, nil
	}
	if err := domain.CheckTransition(entry.run.State, domain.DoneStage); err != nil {
		return false, err
	}

	entry.run.State = domain.DoneStage
	entry.run.OutputPath = outputPath
	entry.run.Degraded = degraded
	entry.run.UpdatedAt = r.now()
	r.appendLocked(entry, domain.ProgressEvent{
		Kind:     domain.DoneEventKind,
		Status:   domain.DoneStage.Label(),
		VideoID:  runID,
		Degraded: degraded,
	})

	return true, nil
}

func (r *runRegistry) Fail(runID string, stageErr *domain.StageError) (bool, error) {
	entry, err := r.entry(runID)
	if err != nil {
		return false, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.run.State.IsTerminal() {
		return false, nil
	}

	if stageErr == nil {
		stageErr = domain.NewStageError(entry.run.State, fmt.Errorf("unknown failure"))
	}

	entry.run.State = domain.FailedStage
	entry.run.Err = stageErr
	entry.run.UpdatedAt = r.now()
	r.appendLocked(entry, domain.ProgressEvent{
		Kind:    domain.ErrorEventKind,
		Status:  domain.FailedStage.Label(),
		Stage:   stageErr.Stage,
		Message: stageErr.Err.Error(),
	})

	return true, nil
}

func (r *runRegistry) Get(runID string) (domain.PipelineRun, error) {
	entry, err := r.entry(runID)
	if err != nil {
		return domain.PipelineRun{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.run, nil
}

func (r *runRegistry) VideoPath(videoID string) (string, error) {
	run, err := r.Get(videoID)
	if err != nil {
		return "", err
	}
	if run.State != domain.DoneStage || run.OutputPath == "" {
		return "", fmt.Errorf("%w: video %s", domain.ErrNotFound, videoID)
	}
	return run.OutputPath, nil
}

func (r *runRegistry) Subscribe(runID string) (inbound.Subscription, error) {
	entry, err := r.entry(runID)
	if err != nil {
		return nil, err
	}

	sub := &subscription{
		entry:  entry,
		notify: make(chan struct{}, 1),
	}

	entry.mu.Lock()
	entry.subscribers[sub] = struct{}{}
	entry.mu.Unlock()

	return sub, nil
}

// appendLocked must be called with entry.mu held.
func (r *runRegistry) appendLocked(entry *runEntry, event domain.ProgressEvent) {
	event.RunID = entry.run.ID
	event.Sequence = len(entry.events) + 1
	event.EmittedAt = r.now()
	entry.events = append(entry.events, event)

	for sub := range entry.subscribers {
		select {
		case sub.notify <- struct{}{}:
		default:
		}
	}

	if r.mirror != nil {
		r.mirror.Mirror(event)
	}

	r.logger.DebugWithFields("progress event", map[string]interface{}{
		"run_id":   event.RunID,
		"sequence": event.Sequence,
		"kind":     event.Kind,
		"status":   event.Status,
	})
}

type subscription struct {
	entry  *runEntry
	cursor int
	notify chan struct{}
	closed bool
}

func (s *subscription) Next(ctx context.Context) (domain.ProgressEvent, error) {
	for {
		s.entry.mu.Lock()
		if s.closed {
			s.entry.mu.Unlock()
			return domain.ProgressEvent{}, io.EOF
		}
		if s.cursor < len(s.entry.events) {
			event := s.entry.events[s.cursor]
			s.cursor++
			s.entry.mu.Unlock()
			return event, nil
		}
		finished := s.entry.run.State.IsTerminal()
		s.entry.mu.Unlock()

		if finished {
			return domain.ProgressEvent{}, io.EOF
		}

		select {
		case <-ctx.Done():
			return domain.ProgressEvent{}, ctx.Err()
		case <-s.notify:
		}
	}
}

func (s *subscription) Close() {
	s.entry.mu.Lock()
	defer s.entry.mu.Unlock()

	s.closed = true
	delete(s.entry.subscribers, s)
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
