package controllers

import (
	"errors"
	"net/http"
	"os"

	"github.com/Shogun05/VoiceFrame/application/ports/inbound"
	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/domain"
	"github.com/Shogun05/VoiceFrame/infrastructure/gin_interface/dto"
	"github.com/gin-gonic/gin"
)

type VideoController interface {
	GetVideo(c *gin.Context)
	GetRun(c *gin.Context)
	Health(c *gin.Context)
	RegisterRoutes(g gin.IRoutes)
}

type videoController struct {
	logger   outbound.LoggerPort
	registry inbound.RunRegistryPort
}

func NewVideoController(logger outbound.LoggerPort, registry inbound.RunRegistryPort) VideoController {
	return &videoController{
		logger:   logger,
		registry: registry,
	}
}

// GetVideo serves the finished file of a run, honouring Range and conditional headers.
func (v *videoController) GetVideo(c *gin.Context) {
	videoID := c.Param("id")

	path, err := v.registry.VideoPath(videoID)
	if err != nil {
		v.notFound(c, err, "video not found")
		return
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.ErrorWithFields(err, "failed to open video file", map[string]interface{}{
			"video_id": videoID,
		})
		v.notFound(c, domain.ErrNotFound, "video not found")
		return
	}
	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			v.logger.Error(err, "failed to close video file")
		}
	}(file)

	info, err := file.Stat()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to read video"})
		return
	}

	c.Header("Content-Type", "video/mp4")
	http.ServeContent(c.Writer, c.Request, videoID+".mp4", info.ModTime(), file)
}

func (v *videoController) GetRun(c *gin.Context) {
	run, err := v.registry.Get(c.Param("id"))
	if err != nil {
		v.notFound(c, err, "run not found")
		return
	}
	c.JSON(http.StatusOK, run)
}

func (v *videoController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

func (v *videoController) notFound(c *gin.Context, err error, message string) {
	if !errors.Is(err, domain.ErrNotFound) {
		v.logger.Error(err, "lookup failed")
	}
	c.AbortWithStatusJSON(http.StatusNotFound, dto.ErrorResponse{Error: message})
}

func (v *videoController) RegisterRoutes(g gin.IRoutes) {
	g.GET("/videos/:id", v.GetVideo)
	g.HEAD("/videos/:id", v.GetVideo)
	g.GET("/runs/:id", v.GetRun)
	g.GET("/health", v.Health)
}
