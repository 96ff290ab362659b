// Package realtime はWebSocketによるユーザー単位のイベント配信を提供する。
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Envelope はWebSocketで送受信するメッセージの共通フォーマット。
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// EventLogNew は記録作成時にルームへ配信されるイベント名。
const EventLogNew = "log:new"

// EventJoin はクライアントがルームへの参加を要求するイベント名。
const EventJoin = "join"

// ConnectionObserver は接続数と配信数の観測先。metrics.Collectorが実装する。
type ConnectionObserver interface {
	SetLiveConnections(n int)
	RecordFanoutDelivered(count int)
}

// Conn はハブが管理する1本のWebSocket接続。
// gorillaのConnは並行書き込みを許さないため、書き込みをミューテックスで直列化する。
type Conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

// send はエンコード済みメッセージを1件書き込む。
func (c *Conn) send(message []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, message)
}

// Hub は接続の登録簿を所有する明示的なサービスオブジェクト。
// ユーザーIDを名前とする論理ルームごとに参加中の接続集合を保持し、
// 配信操作（EmitNewLog）だけを外部に公開する。グローバル状態としては扱わない。
type Hub struct {
	mu       sync.Mutex
	rooms    map[string]map[*Conn]struct{} // ルームID（ユーザーID） -> 接続集合
	conns    map[*Conn]map[string]struct{} // 接続 -> 参加中ルーム集合
	observer ConnectionObserver
}

// NewHub はHubを生成する。observerはnil可。
func NewHub(observer ConnectionObserver) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Conn]struct{}),
		conns:    make(map[*Conn]map[string]struct{}),
		observer: observer,
	}
}

// Register は接続をハブの管理下に置く。
func (h *Hub) Register(ws *websocket.Conn) *Conn {
	conn := &Conn{ws: ws}

	h.mu.Lock()
	h.conns[conn] = make(map[string]struct{})
	total := len(h.conns)
	h.mu.Unlock()

	h.notifyConnections(total)
	return conn
}

// Unregister は接続を全ルームから外し、管理下から除外する。
// 切断時に必ず呼ぶこと。
func (h *Hub) Unregister(conn *Conn) {
	h.mu.Lock()
	for room := range h.conns[conn] {
		h.leaveRoomLocked(conn, room)
	}
	delete(h.conns, conn)
	total := len(h.conns)
	h.mu.Unlock()

	h.notifyConnections(total)
}

// Join は接続を指定ルームに参加させる。
// ルームIDはクライアント申告のユーザーIDをそのまま信頼する（DESIGN.md参照）。
func (h *Hub) Join(conn *Conn, room string) {
	if room == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, registered := h.conns[conn]; !registered {
		return
	}

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Conn]struct{})
	}
	h.rooms[room][conn] = struct{}{}
	h.conns[conn][room] = struct{}{}
}

// EmitNewLog はpayloadをlog:newイベントとしてルームuserIDの全接続に配信する。
// 書き込みに失敗した接続は登録簿から外す。配信保証はなく、
// 参加中の接続が存在しない場合は何もしない（失敗は呼び出し元に伝播しない）。
// 戻り値は配信できた接続数。
func (h *Hub) EmitNewLog(userID string, payload any) int {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal fan-out payload", slog.String("error", err.Error()))
		return 0
	}
	message, err := json.Marshal(Envelope{Event: EventLogNew, Data: data})
	if err != nil {
		slog.Error("failed to marshal fan-out envelope", slog.String("error", err.Error()))
		return 0
	}

	h.mu.Lock()
	targets := make([]*Conn, 0, len(h.rooms[userID]))
	for conn := range h.rooms[userID] {
		targets = append(targets, conn)
	}
	h.mu.Unlock()

	delivered := 0
	var failed []*Conn
	for _, conn := range targets {
		if err := conn.send(message); err != nil {
			failed = append(failed, conn)
			continue
		}
		delivered++
	}

	for _, conn := range failed {
		h.Unregister(conn)
	}

	if delivered > 0 && h.observer != nil {
		h.observer.RecordFanoutDelivered(delivered)
	}

	slog.Info("log fan-out",
		slog.String("user_id", userID),
		slog.Int("delivered", delivered),
	)

	return delivered
}

// RoomSize は指定ルームの参加接続数を返す。テストおよびメトリクス用。
func (h *Hub) RoomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

// ConnectionCount は管理下の接続数を返す。テストおよびメトリクス用。
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// leaveRoomLocked は接続をルームから外す。空になったルームは登録簿から消す。
// 呼び出し側がh.muを保持していること。
func (h *Hub) leaveRoomLocked(conn *Conn, room string) {
	if set, ok := h.rooms[room]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
}

// notifyConnections は接続数の変化を観測先に通知する。
func (h *Hub) notifyConnections(total int) {
	if h.observer != nil {
		h.observer.SetLiveConnections(total)
	}
}
