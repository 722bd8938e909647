package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dshills/wordsmith/internal/app"
	"github.com/dshills/wordsmith/internal/notify"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	eventQueue = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleEvents streams a session's notifications over a websocket as JSON
// messages. The stream ends when the client disconnects or the session is
// closed. Notifications that arrive while the client is slow are dropped.
func HandleEvents(a *app.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, a)
		if !ok {
			return
		}

		// Subscribe before the handshake completes so nothing posted after
		// the client connects is missed.
		events := make(chan notify.Notification, eventQueue)
		sub := a.Notifier().SubscribeTopic(s.ID(), func(n notify.Notification) {
			select {
			case events <- n:
			default:
			}
		})
		defer sub.Unsubscribe()

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			a.Logger().Warn("websocket upgrade failed", "session", s.ID(), "error", err)
			return
		}
		defer ws.Close()

		// The read loop only services control frames and notices disconnects.
		closed := make(chan struct{})
		ws.SetReadLimit(512)
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		go func() {
			defer close(closed)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		sessionCheck := time.NewTicker(time.Second)
		defer sessionCheck.Stop()

		for {
			select {
			case n := <-events:
				_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
				if err := ws.WriteJSON(n); err != nil {
					return
				}
			case <-ticker.C:
				_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
				if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-sessionCheck.C:
				if _, err := a.Session(s.ID()); err != nil {
					msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed")
					_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
					return
				}
			case <-closed:
				return
			case <-c.Request.Context().Done():
				return
			}
		}
	}
}
