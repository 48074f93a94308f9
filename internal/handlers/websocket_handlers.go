package handlers

import (
	"log/slog"
	"net/http"

	"hivedesk/internal/websocket"

	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering is handled by the CORS layer for the JSON surface;
		// the websocket endpoint relies on token auth.
		return true
	},
}

// HandleWebSocket upgrades the connection and subscribes the caller to the
// new-message stream. The stream carries no backfill; clients pair it with an
// initial list call.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Browsers cannot set headers on websocket dials, so the token rides a
		// query parameter.
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			http.Error(w, "Missing authentication token", http.StatusUnauthorized)
			return
		}

		claims, err := s.Auth.ValidateToken(tokenString)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		if claims.Email == "" {
			http.Error(w, "Token carries no email identity", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Cannot write an HTTP error after a failed upgrade attempt.
			slog.Debug("websocket upgrade failed", "email", claims.Email, "error", err)
			return
		}

		client := &websocket.Client{
			Hub:   s.Hub,
			Email: claims.Email,
			Conn:  conn,
			Send:  make(chan []byte, 256),
		}
		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
