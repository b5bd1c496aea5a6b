package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/changefeed"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/delivery"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/types"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// socketSink forwards change events to one admin's websocket. The mutex
// serializes event frames against the ping writer.
type socketSink struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *socketSink) HandleEvent(event changefeed.Event) {
	err := s.writeJSON(map[string]interface{}{
		"type":         string(event.Type),
		"notification": event.Notification,
	})

	if err != nil {
		log.Printf("Failed to forward %s event for notification %s: %v",
			event.Type, event.Notification.ID, err)
	}
}

func (s *socketSink) writeJSON(payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return s.conn.WriteJSON(payload)
}

func (s *socketSink) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// WebSocket upgrades the admin session to a live notification feed for its
// branch. One subscription per (admin, branch); it is released when the
// socket closes.
func WebSocket(c *gin.Context) {
	admin, err := utils.GetCurrentAdmin(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not authenticated"})
		return
	}

	branchID := c.Param("branch_id")

	if branchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Branch ID is required"})
		return
	}

	if branchID != admin.BranchID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Branch does not match session"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	sink := &socketSink{conn: conn}

	manager := delivery.NewChannelManager(notificationFeed, admin.ID, branchID, sink)
	manager.Start()

	defer func() {
		manager.Close()
		conn.Close()
		log.Printf("WebSocket connection closed for admin %s on branch %s", admin.ID, branchID)
	}()

	err = sink.writeJSON(map[string]string{
		"type":      "connected",
		"message":   "Notification feed established",
		"branch_id": branchID,
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		// Send pings periodically
		for range ticker.C {
			if err := sink.ping(); err != nil {
				log.Printf("Ping failed for admin %s on branch %s: %v", admin.ID, branchID, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for branch %s: %v", branchID, err)
			break
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for branch %s: %v", branchID, err)
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			log.Printf("Received message from admin %s on branch %s: %s", admin.ID, branchID, string(message))
		case websocket.PongMessage:
			log.Printf("Received pong from branch %s", branchID)
		}
	}
}
