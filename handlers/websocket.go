package handlers

import (
	"log"
	"net/http"

	"civichub-service/middleware"
	ws "civichub-service/websocket"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now
		// In production, you should implement proper origin checking
		return true
	},
}

// ListenReportEvents handles GET /reports/events. Connected clients
// receive an invalidation event after every successful mutation so they
// can re-fetch their report snapshots.
func (h *Handlers) ListenReportEvents(c *gin.Context) {
	user := middleware.CurrentUser(c)
	log.Printf("INFO: WebSocket connection request from user %s", user.Email)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection to WebSocket: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, user.Email)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	log.Printf("WebSocket connection established for report events for user %s", user.Email)
}
