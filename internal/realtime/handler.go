package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Handler はWebSocketエンドポイントのHTTPハンドラー。
// 接続時の?uid=クエリ、または接続後のjoinメッセージでルームに参加する。
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler はHandlerを生成する。
// allowedOriginが空の場合はオリジン検査を行わない。
func NewHandler(hub *Hub, allowedOrigin string) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// ServeHTTP はHTTPリクエストをWebSocketにアップグレードし、
// 切断まで受信ループを回す。
// GET /ws?uid=xxx
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	conn := h.hub.Register(ws)
	defer func() {
		h.hub.Unregister(conn)
		ws.Close()
	}()

	// 接続時クエリによる暗黙のルーム参加
	if uid := r.URL.Query().Get("uid"); uid != "" {
		h.hub.Join(conn, uid)
	}

	h.readLoop(conn, ws)
}

// readLoop は受信メッセージを処理する。joinイベントのみを解釈し、
// それ以外は無視する。読み取りエラー（切断含む）でループを抜ける。
func (h *Handler) readLoop(conn *Conn, ws *websocket.Conn) {
	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			continue
		}

		if envelope.Event == EventJoin {
			var uid string
			if err := json.Unmarshal(envelope.Data, &uid); err != nil {
				continue
			}
			h.hub.Join(conn, uid)
		}
	}
}
