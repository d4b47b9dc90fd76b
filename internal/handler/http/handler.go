package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	_ "github.com/aniladanir/hirechat/docs"
	"github.com/aniladanir/hirechat/internal/domain"
	"github.com/aniladanir/hirechat/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Config struct {
	Addr string
	// AllowOrigins empty means every origin is allowed
	AllowOrigins []string
	// RateLimit caps requests per client ip within RateLimitWindow, zero disables the limiter
	RateLimit       uint
	RateLimitWindow time.Duration
	// WatchInterval is the poll interval behind /api/watch
	WatchInterval time.Duration
}

type Handler struct {
	chat   service.MessagingService
	calls  service.CallSignaler
	cfg    Config
	logger *slog.Logger
	server *http.Server
}

// @title HireChat API
// @version 1.0
// @description Conversation messaging and video call signaling for job applications
// @host localhost:6060
// @BasePath /
func NewHttpHandler(cfg Config, chat service.MessagingService, calls service.CallSignaler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		chat:   chat,
		calls:  calls,
		cfg:    cfg,
		logger: logger,
	}

	// create router
	router := gin.Default()
	router.Use(corsMiddleware(cfg.AllowOrigins))

	// register routes
	api := router.Group("/api")
	if cfg.RateLimit > 0 {
		api.Use(rateLimitMiddleware(cfg.RateLimit, cfg.RateLimitWindow))
	}
	api.GET("/chat", h.listMessages)
	api.POST("/chat", h.sendMessage)
	api.PATCH("/chat", h.markRead)
	api.GET("/videocall", h.getCurrentCall)
	api.POST("/videocall", h.startCall)
	api.PATCH("/videocall", h.setCallStatus)
	router.GET("/api/watch", h.watch)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// create http server
	h.server = &http.Server{
		Addr:    cfg.Addr,
		Handler: router.Handler(),
	}

	return h
}

// Router exposes the route tree, mainly for httptest servers
func (h *Handler) Router() http.Handler {
	return h.server.Handler
}

func (h *Handler) Run() error {
	return h.server.ListenAndServe()
}

func (h *Handler) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func rateLimitMiddleware(limit uint, window time.Duration) gin.HandlerFunc {
	if window < time.Second {
		window = time.Second
	}
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  window,
		Limit: limit,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
			})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}

// writeError maps service errors onto status codes
func writeError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, service.ErrInvalidSender):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Video call not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

type markReadRequest struct {
	ApplicationID string `json:"applicationId"`
	UserEmail     string `json:"userEmail"`
}

type callStatusRequest struct {
	CallID string            `json:"callId"`
	Status domain.CallStatus `json:"status"`
}

// ListMessages godoc
// @Summary List conversation messages
// @Description Returns every message of an application in append order
// @Tags Chat
// @Param applicationId query string true "application id"
// @Success 200 {object} map[string][]domain.Message
// @Failure 400 {object} map[string]string
// @Router /api/chat [get]
func (h *Handler) listMessages(c *gin.Context) {
	appID := c.Query("applicationId")
	if appID == "" {
		badRequest(c, "applicationId is required")
		return
	}
	msgs, err := h.chat.ListMessages(c.Request.Context(), appID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SendMessage godoc
// @Summary Send a message
// @Description Appends a message to the application's conversation
// @Tags Chat
// @Param request body service.SendMessageParams true "message"
// @Success 201 {object} map[string]domain.Message
// @Failure 400 {object} map[string]string
// @Router /api/chat [post]
func (h *Handler) sendMessage(c *gin.Context) {
	var req service.SendMessageParams
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	msg, err := h.chat.SendMessage(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// MarkRead godoc
// @Summary Mark messages as read
// @Description Marks every message not sent by userEmail as read
// @Tags Chat
// @Param request body markReadRequest true "reader"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Router /api/chat [patch]
func (h *Handler) markRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if err := h.chat.MarkRead(c.Request.Context(), req.ApplicationID, req.UserEmail); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetCurrentCall godoc
// @Summary Get the ongoing call
// @Description Returns the most recent calling or active call, or null
// @Tags VideoCall
// @Param applicationId query string true "application id"
// @Success 200 {object} map[string]domain.VideoCall
// @Failure 400 {object} map[string]string
// @Router /api/videocall [get]
func (h *Handler) getCurrentCall(c *gin.Context) {
	appID := c.Query("applicationId")
	if appID == "" {
		badRequest(c, "applicationId is required")
		return
	}
	call, err := h.calls.GetCurrentCall(c.Request.Context(), appID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"call": call})
}

// StartCall godoc
// @Summary Start or join a call
// @Description Creates a ringing call, or connects both sides when the other participant is already calling
// @Tags VideoCall
// @Param request body service.StartCallParams true "initiator"
// @Success 201 {object} map[string]domain.VideoCall
// @Success 200 {object} map[string]domain.VideoCall
// @Failure 400 {object} map[string]string
// @Router /api/videocall [post]
func (h *Handler) startCall(c *gin.Context) {
	var req service.StartCallParams
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	res, err := h.calls.StartCall(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"call": res.Call})
}

// SetCallStatus godoc
// @Summary Answer or end a call
// @Tags VideoCall
// @Param request body callStatusRequest true "transition"
// @Success 200 {object} map[string]domain.VideoCall
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/videocall [patch]
func (h *Handler) setCallStatus(c *gin.Context) {
	var req callStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	call, err := h.calls.SetCallStatus(c.Request.Context(), req.CallID, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"call": call})
}
