package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/doorbell/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/doorbell/internal/usecase/signaling"
	"github.com/johnquangdev/doorbell/pkg/config"
)

// StatsProvider reports live hub counters
type StatsProvider interface {
	Stats() (signaling.Stats, error)
}

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	tokens          middleware.TokenValidator
	contactHandler  *Contact
	realtimeHandler *Realtime
	stats           StatsProvider
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	tokens middleware.TokenValidator,
	contactHandler *Contact,
	realtimeHandler *Realtime,
	stats StatsProvider,
) *Router {
	return &Router{
		cfg:             cfg,
		tokens:          tokens,
		contactHandler:  contactHandler,
		realtimeHandler: realtimeHandler,
		stats:           stats,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	rt.setupContactRoutes(v1)
	rt.setupRealtimeRoutes(v1)
}

// setupContactRoutes configures contact request routes
func (rt *Router) setupContactRoutes(g *echo.Group) {
	auth := middleware.EchoAuth(rt.tokens)
	optional := middleware.OptionalAuth(rt.tokens)

	contacts := g.Group("/contacts")
	contacts.POST("", rt.contactHandler.Create, optional)
	contacts.GET("/:id", rt.contactHandler.Get, optional)
	contacts.POST("/:id/respond", rt.contactHandler.Respond, auth)
	contacts.POST("/:id/messages", rt.contactHandler.SendMessage, optional)
	contacts.GET("/:id/messages", rt.contactHandler.ListMessages, optional)
	contacts.POST("/:id/cancel", rt.contactHandler.Cancel, optional)
	contacts.POST("/:id/continue", rt.contactHandler.Continue, auth)
	contacts.DELETE("/:id", rt.contactHandler.Archive, auth)

	g.GET("/hosts/me/contacts/pending", rt.contactHandler.ListPending, auth)
}

// setupRealtimeRoutes configures the websocket endpoint
func (rt *Router) setupRealtimeRoutes(g *echo.Group) {
	if rt.realtimeHandler == nil {
		g.GET("/ws", rt.notImplemented)
		return
	}
	g.GET("/ws", rt.realtimeHandler.ServeWS)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not enabled",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status with live connection counters
func (rt *Router) healthCheck(c echo.Context) error {
	body := map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	}
	if rt.stats != nil {
		stats, err := rt.stats.Stats()
		if err != nil {
			body["status"] = "degraded"
			return c.JSON(http.StatusServiceUnavailable, body)
		}
		body["connections"] = stats.Connections
		body["rooms"] = stats.Rooms
	}
	return c.JSON(http.StatusOK, body)
}
