package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/fieldservice-app/hub"
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // origin sudah dibatasi oleh token di query
	},
}

type WSController struct {
	Hub *hub.Hub
}

func NewWSController(h *hub.Hub) *WSController {
	return &WSController{Hub: h}
}

// Stream -> endpoint WebSocket; channel harus sama dengan role di token
func (wc *WSController) Stream(c *gin.Context) {
	a := currentActor(c)
	channel := c.Param("channel")

	switch channel {
	case models.RoleAdmin, models.RoleCustomer, models.RoleTechnician:
	default:
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if a.Role != channel {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	wc.Hub.RegisterClient(ws, a.Role, a.ID)

	// Baca pesan sampai client disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	wc.Hub.UnregisterClient(ws)
}
