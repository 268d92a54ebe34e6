package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/call-assistant/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	voiceHandler   *VoiceHandler
	recordsHandler *RecordsHandler
	contactHandler *ContactHandler
	webhookAuth    echo.MiddlewareFunc
	rateLimit      echo.MiddlewareFunc
	metrics        http.Handler
	now            func() time.Time
}

// NewRouter creates a new router with all handlers.
// rateLimit and metricsHandler may be nil.
func NewRouter(
	cfg *config.Config,
	voiceHandler *VoiceHandler,
	recordsHandler *RecordsHandler,
	contactHandler *ContactHandler,
	webhookAuth echo.MiddlewareFunc,
	rateLimit echo.MiddlewareFunc,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		cfg:            cfg,
		voiceHandler:   voiceHandler,
		recordsHandler: recordsHandler,
		contactHandler: contactHandler,
		webhookAuth:    webhookAuth,
		rateLimit:      rateLimit,
		metrics:        metricsHandler,
		now:            time.Now,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/healthz", rt.healthCheck)
	if rt.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metrics))
	}

	api := e.Group("/api")
	if rt.rateLimit != nil {
		api.Use(rt.rateLimit)
	}

	rt.setupVoiceRoutes(api)
	rt.setupRecordingRoutes(api)
	rt.setupTranscriptionRoutes(api)
	rt.setupContactRoutes(api)
}

// setupVoiceRoutes configures provider callbacks behind the signature check
func (rt *Router) setupVoiceRoutes(g *echo.Group) {
	voiceGroup := g.Group("/voice", rt.webhookAuth)

	voiceGroup.POST("/status", rt.voiceHandler.Status)
	voiceGroup.POST("/recording", rt.voiceHandler.Recording)
	voiceGroup.POST("/transcription", rt.voiceHandler.Transcription)
	voiceGroup.POST("/validate", rt.voiceHandler.Validate)
}

func (rt *Router) setupRecordingRoutes(g *echo.Group) {
	recordingGroup := g.Group("/recordings")

	recordingGroup.GET("", rt.recordsHandler.ListRecordings)
	recordingGroup.GET("/:sid", rt.recordsHandler.GetRecording)
	recordingGroup.GET("/:sid/download", rt.recordsHandler.DownloadRecording)
}

func (rt *Router) setupTranscriptionRoutes(g *echo.Group) {
	transcriptionGroup := g.Group("/transcriptions")

	transcriptionGroup.GET("", rt.recordsHandler.ListTranscriptions)
	transcriptionGroup.GET("/search", rt.recordsHandler.SearchTranscriptions)
	transcriptionGroup.GET("/:sid", rt.recordsHandler.GetTranscription)
	transcriptionGroup.GET("/:sid/export", rt.recordsHandler.ExportTranscription)
	transcriptionGroup.POST("/:sid/export/archive", rt.recordsHandler.ArchiveTranscription)
	transcriptionGroup.GET("/:sid/archives", rt.recordsHandler.ListArchives)
}

func (rt *Router) setupContactRoutes(g *echo.Group) {
	contactGroup := g.Group("/contacts")

	contactGroup.GET("", rt.contactHandler.ListContacts)
	contactGroup.GET("/:phone/history", rt.contactHandler.History)
	contactGroup.GET("/:phone/context", rt.contactHandler.Context)
	contactGroup.GET("/:phone/insights", rt.contactHandler.Insights)
	contactGroup.GET("/:phone/briefing", rt.contactHandler.Briefing)
	contactGroup.POST("/:phone/prepare", rt.contactHandler.Briefing)
	contactGroup.PATCH("/:phone/action-items/:id", rt.contactHandler.UpdateActionItem)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":             "ok",
		"time":               rt.now().UTC().Format(time.RFC3339),
		"environment":        rt.cfg.Server.Environment,
		"signature_enforced": rt.cfg.SignatureConfigured(),
	})
}
