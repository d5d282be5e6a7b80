package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/mebel-backend/internal/http/middleware"
	"github.com/ignatzorin/mebel-backend/internal/logger"
	"github.com/ignatzorin/mebel-backend/internal/service"
	"github.com/ignatzorin/mebel-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений админ-панели.
type WSHandler struct {
	hub      *ws.Hub
	tokens   middleware.TokenParser
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. Пустой allowedOrigins или "*" разрешает любой Origin.
func NewWSHandler(hub *ws.Hub, tokens middleware.TokenParser, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	_, anyOrigin := allowed["*"]

	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || anyOrigin || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "требуется авторизация"})
		return
	}

	subject, role, err := h.tokens.ParseAccess(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "невалидный токен"})
		return
	}
	if role != service.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "недостаточно прав"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту.
		logger.Log.WithError(err).Warn("ws: не удалось установить соединение")
		return
	}

	client := ws.NewClient(conn, h.hub, subject)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}
	client.Run(c.Request.Context())
}
