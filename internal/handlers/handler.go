package handlers

import (
	"clariasense/internal/logger"
	"clariasense/internal/metrics"
	"clariasense/internal/service"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	statusOK = "ok"

	errInternal        = "Internal server error"
	errInvalidBodyPref = "invalid body: "

	corsMaxAge = 12 * time.Hour
)

// Options are the optional HTTP-layer collaborators.
type Options struct {
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
	origins  []string
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	return &Handler{
		services: services,
		log:      logger.OrNop(log),
		metrics:  opts.Metrics,
		origins:  opts.CORSOrigins,
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.metrics.GinMiddleware())
	if len(h.origins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: h.origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       corsMaxAge,
		}))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	// Device token endpoint
	h.registerAuthRoutes(router)

	// Public read + subscription API used by the dashboard
	h.registerPublicRoutes(router)

	// Device write API (protected)
	h.registerDeviceRoutes(router)

	// Live readings over WebSocket, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/token", h.issueToken)
	}
}

func (h *Handler) registerPublicRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/sensors", h.getSensors)
		api.POST("/subscribe", h.subscribe)
		api.GET("/unsubscribe", h.unsubscribe)

		logs := api.Group("/logs")
		{
			logs.GET("/hourly", h.getHourlyLogs)
			logs.GET("/errors", h.getErrorLogs)
		}
	}
}

func (h *Handler) registerDeviceRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1", h.deviceMiddleware)
	{
		v1.POST("/readings", h.postReadings)
		// Body example: {"distance": 15.2}
		v1.PUT("/refill/distance", h.putDistance)
		v1.POST("/error-logs", h.postErrorLog)
		v1.POST("/hourly-logs", h.postHourlyLog)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled, true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}
