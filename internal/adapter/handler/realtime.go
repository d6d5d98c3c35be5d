package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/doorbell/errors"
	"github.com/johnquangdev/doorbell/internal/infrastructure/http/middleware"
	wsinfra "github.com/johnquangdev/doorbell/internal/infrastructure/websocket"
	"github.com/johnquangdev/doorbell/pkg/config"
)

// Realtime upgrades HTTP requests to websocket connections
type Realtime struct {
	base       context.Context
	hub        RealtimeHub
	dispatcher *Dispatcher
	tokens     middleware.TokenValidator
	upgrader   websocket.Upgrader
	cfg        config.WebSocketConfig
	logger     *zap.Logger
}

// NewRealtimeHandler creates the websocket endpoint. Connections are closed
// when base is cancelled.
func NewRealtimeHandler(
	base context.Context,
	hub RealtimeHub,
	dispatcher *Dispatcher,
	tokens middleware.TokenValidator,
	cfg *config.Config,
	logger *zap.Logger,
) *Realtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Realtime{
		base:       base,
		hub:        hub,
		dispatcher: dispatcher,
		tokens:     tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(cfg.Server.AllowedOrigins),
		},
		cfg:    cfg.WebSocket,
		logger: logger.Named("realtime"),
	}
}

// originChecker accepts native clients (no Origin header) and listed origins
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeWS handles GET /ws
// @Summary      Real-time channel
// @Description  Upgrades to a websocket. Frames are {"type": "...", "data": {...}} in both directions. A bearer token (header or token query parameter) binds the connection to an identity; without one it is anonymous.
// @Tags         Realtime
// @Param        token  query  string  false  "Access token"
// @Success      101
// @Failure      401  {object}  map[string]interface{}  "Invalid token"
// @Router       /ws [get]
func (h *Realtime) ServeWS(c echo.Context) error {
	identity := ""
	if token := middleware.ExtractToken(c.Request()); token != "" {
		claims, err := h.tokens.ValidateAccessToken(token)
		if err != nil {
			appErr := errors.ErrInvalidToken()
			appErr.Raw = err
			return HandleError(h.logger, c, appErr)
		}
		identity = claims.Identity()
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("ws.upgrade.failed", zap.Error(err))
		return nil
	}

	client := wsinfra.NewClient(conn, identity, h.cfg, h.logger)
	if err := h.hub.Register(client, identity); err != nil {
		h.logger.Warn("ws.register.failed", zap.Error(err))
		client.Close()
		return nil
	}

	h.logger.Debug("ws.connected",
		zap.String("conn_id", client.ID()),
		zap.String("identity", identity),
		zap.String("request_id", getRequestID(c)),
	)
	client.Run(h.base, h.dispatcher)
	return nil
}
