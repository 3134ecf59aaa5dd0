package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/inbound"
	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/domain"
	"github.com/Shogun05/VoiceFrame/infrastructure/gin_interface/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	maxFrameSize        = 1 << 20
	maxPromptSize       = 64 * 1024
	writeWait           = 10 * time.Second
	defaultPingInterval = 20 * time.Second
)

type ProgressController interface {
	Connect(c *gin.Context)
	RegisterRoutes(g gin.IRoutes)
}

type progressController struct {
	logger       outbound.LoggerPort
	registry     inbound.RunRegistryPort
	pipeline     inbound.PipelineOrchestratorPort
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

func NewProgressController(
	logger outbound.LoggerPort,
	registry inbound.RunRegistryPort,
	pipeline inbound.PipelineOrchestratorPort,
	pingInterval time.Duration,
) ProgressController {
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	return &progressController{
		logger:   logger,
		registry: registry,
		pipeline: pipeline,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingInterval: pingInterval,
	}
}

// progressConn serializes data frames; gorilla allows a single concurrent writer.
type progressConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *progressConn) send(msg dto.ProgressMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return p.conn.WriteJSON(msg)
}

func (p *progressConn) closeNormally() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (s *progressController) Connect(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error(err, "failed to upgrade connection")
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Debug("connection already closed")
		}
	}()

	runID := uuid.NewString()
	logger := s.logger.With(map[string]interface{}{"run_id": runID})

	if _, err := s.registry.Create(runID); err != nil {
		logger.Error(err, "failed to register run")
		return
	}
	sub, err := s.registry.Subscribe(runID)
	if err != nil {
		logger.Error(err, "failed to subscribe to run")
		return
	}
	defer sub.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pc := &progressConn{conn: conn}
	conn.SetReadLimit(maxFrameSize)
	pongWait := 2 * s.pingInterval
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go s.readPrompts(ctx, cancel, pc, runID, logger)
	go s.ping(ctx, pc)

	logger.Info("progress connection opened")
	for {
		event, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("client disconnected, run continues in the background")
			}
			break
		}
		if err := pc.send(dto.NewProgressMessage(event)); err != nil {
			logger.Error(err, "failed to send progress event")
			return
		}
		if event.IsTerminal() {
			pc.closeNormally()
			return
		}
	}
}

func (s *progressController) readPrompts(ctx context.Context, cancel context.CancelFunc, pc *progressConn, runID string, logger outbound.LoggerPort) {
	defer cancel()
	for {
		_, data, err := pc.conn.ReadMessage()
		if err != nil {
			return
		}
		if len(data) > maxPromptSize {
			s.protocolError(pc, logger, fmt.Sprintf("message exceeds %d bytes", maxPromptSize))
			continue
		}

		var msg dto.PromptMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Prompt == nil {
			s.protocolError(pc, logger, "expected a JSON object with a prompt field")
			continue
		}

		err = s.pipeline.Submit(ctx, runID, *msg.Prompt)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrInvalidPrompt):
			s.protocolError(pc, logger, "prompt must not be empty")
		case errors.Is(err, domain.ErrPromptAlreadyAccepted):
			s.protocolError(pc, logger, "a prompt was already accepted for this connection")
		default:
			logger.Error(err, "failed to submit prompt")
			s.protocolError(pc, logger, err.Error())
		}
	}
}

func (s *progressController) protocolError(pc *progressConn, logger outbound.LoggerPort, message string) {
	logger.WarnWithFields("protocol error", map[string]interface{}{"reason": message})
	if err := pc.send(dto.NewProtocolError(message)); err != nil {
		logger.Error(err, "failed to send protocol error")
	}
}

func (s *progressController) ping(ctx context.Context, pc *progressConn) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := pc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *progressController) RegisterRoutes(g gin.IRoutes) {
	g.GET("/ws", s.Connect)
}
