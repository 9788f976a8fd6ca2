package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/salonflow-backend/internal/app/service"
	"github.com/ikkim/salonflow-backend/internal/middleware"
	"github.com/ikkim/salonflow-backend/internal/websocket"
)

type RealtimeController struct {
	hub         *websocket.Hub
	shopService service.ShopService
	upgrader    gorillaws.Upgrader
}

func NewRealtimeController(hub *websocket.Hub, shopService service.ShopService, allowedOrigins []string) *RealtimeController {
	return &RealtimeController{
		hub:         hub,
		shopService: shopService,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// SubscribeMenus streams menu changes of one shop until the client leaves
func (ctrl *RealtimeController) SubscribeMenus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	shopID, ok := parseIDParam(c, "id", "shop")
	if !ok {
		return
	}
	if _, err := ctrl.shopService.GetShop(shopID); err != nil {
		respondShopError(c, err, "open menu stream")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already answered the client
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"shop_id": shopID,
			"error":   err.Error(),
		})
		return
	}

	websocket.Serve(conn, ctrl.hub.Subscribe(shopID))
}
