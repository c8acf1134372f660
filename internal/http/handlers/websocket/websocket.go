package websocket

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/princekumarofficial/marketplace-service/internal/utils/jwt"
	"github.com/princekumarofficial/marketplace-service/internal/utils/response"
	wsClient "github.com/princekumarofficial/marketplace-service/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Mobile clients send no Origin header; auth is the token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler upgrades an authenticated connection and registers it for
// badge unlock events
// @Summary Badge event stream
// @Tags websocket
// @Param token query string true "JWT"
// @Success 101 "Switching protocols"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 503 {object} response.Response "Server shutting down"
// @Router /ws [get]
func WebSocketHandler(hub *wsClient.Hub, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			slog.Warn("WebSocket connection attempted without token")
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("token required")))
			return
		}

		userID, err := jwt.ExtractUserIDFromToken(token, jwtSecret)
		if err != nil {
			slog.Warn("WebSocket connection attempted with invalid token", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid token")))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("Failed to upgrade WebSocket connection", slog.String("error", err.Error()))
			return
		}

		client := wsClient.NewClient(conn, userID, hub)
		if !hub.RegisterClient(client) {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			conn.Close()
			return
		}

		client.Start()

		slog.Info("WebSocket connection established", slog.String("user_id", userID))
	}
}
