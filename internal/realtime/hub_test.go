package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialTestServer はHandlerをhttptestサーバーに載せ、クライアント接続を返す。
func dialTestServer(t *testing.T, hub *Hub, query string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(NewHandler(hub, ""))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws" + query
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

// waitFor は条件が満たされるまで短い間隔でポーリングする。
// 接続登録はサーバー側ゴルーチンで行われるため、直接の同期手段がない。
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// readEnvelope は1件のメッセージを読み取ってデコードする。
func readEnvelope(t *testing.T, client *websocket.Conn) Envelope {
	t.Helper()
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var envelope Envelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return envelope
}

// TestHub_ImplicitJoinViaQuery は?uid=クエリで接続時にルームへ参加することを検証する。
func TestHub_ImplicitJoinViaQuery(t *testing.T) {
	hub := NewHub(nil)
	dialTestServer(t, hub, "?uid=user-1")

	waitFor(t, func() bool { return hub.RoomSize("user-1") == 1 })
}

// TestHub_ExplicitJoinMessage はjoinメッセージでルームへ参加することを検証する。
func TestHub_ExplicitJoinMessage(t *testing.T) {
	hub := NewHub(nil)
	client := dialTestServer(t, hub, "")

	waitFor(t, func() bool { return hub.ConnectionCount() == 1 })
	if hub.RoomSize("user-1") != 0 {
		t.Fatal("connection joined a room before join message")
	}

	if err := client.WriteMessage(websocket.TextMessage, []byte(`{"event":"join","data":"user-1"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	waitFor(t, func() bool { return hub.RoomSize("user-1") == 1 })
}

// TestHub_EmitNewLog_DeliversToRoom はルーム参加中の接続にlog:newが届くことを検証する。
func TestHub_EmitNewLog_DeliversToRoom(t *testing.T) {
	hub := NewHub(nil)
	client := dialTestServer(t, hub, "?uid=user-1")

	waitFor(t, func() bool { return hub.RoomSize("user-1") == 1 })

	payload := map[string]string{"id": "log-1", "userId": "user-1"}
	if delivered := hub.EmitNewLog("user-1", payload); delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}

	envelope := readEnvelope(t, client)
	if envelope.Event != EventLogNew {
		t.Errorf("event = %q, want %q", envelope.Event, EventLogNew)
	}
	var got map[string]string
	if err := json.Unmarshal(envelope.Data, &got); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if got["id"] != "log-1" {
		t.Errorf("data.id = %q, want log-1", got["id"])
	}
}

// TestHub_EmitNewLog_OnlyOwnRoom は別ルームの接続に配信されないことを検証する。
func TestHub_EmitNewLog_OnlyOwnRoom(t *testing.T) {
	hub := NewHub(nil)
	dialTestServer(t, hub, "?uid=user-1")
	other := dialTestServer(t, hub, "?uid=user-2")

	waitFor(t, func() bool { return hub.RoomSize("user-1") == 1 && hub.RoomSize("user-2") == 1 })

	if delivered := hub.EmitNewLog("user-1", map[string]string{"id": "log-1"}); delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}

	// user-2の接続には届かない
	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("user-2 connection received a message for user-1's room")
	}
}

// TestHub_EmitNewLog_NoRecipients は参加者ゼロのルームへの配信が
// エラーにならないことを検証する（静かに何もしない）。
func TestHub_EmitNewLog_NoRecipients(t *testing.T) {
	hub := NewHub(nil)

	if delivered := hub.EmitNewLog("nobody", map[string]string{"id": "log-1"}); delivered != 0 {
		t.Errorf("delivered = %d, want 0", delivered)
	}
}

// TestHub_MultipleSessionsSameUser は同一ユーザーの複数接続すべてに配信されることを検証する。
func TestHub_MultipleSessionsSameUser(t *testing.T) {
	hub := NewHub(nil)
	first := dialTestServer(t, hub, "?uid=user-1")
	second := dialTestServer(t, hub, "?uid=user-1")

	waitFor(t, func() bool { return hub.RoomSize("user-1") == 2 })

	if delivered := hub.EmitNewLog("user-1", map[string]string{"id": "log-1"}); delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}

	for _, client := range []*websocket.Conn{first, second} {
		envelope := readEnvelope(t, client)
		if envelope.Event != EventLogNew {
			t.Errorf("event = %q, want %q", envelope.Event, EventLogNew)
		}
	}
}

// TestHub_DisconnectLeavesRooms は切断された接続がルームと登録簿から消えることを検証する。
func TestHub_DisconnectLeavesRooms(t *testing.T) {
	hub := NewHub(nil)
	client := dialTestServer(t, hub, "?uid=user-1")

	waitFor(t, func() bool { return hub.RoomSize("user-1") == 1 })

	client.Close()

	waitFor(t, func() bool { return hub.ConnectionCount() == 0 })
	if hub.RoomSize("user-1") != 0 {
		t.Error("room still holds the disconnected connection")
	}
}

// observerStub はConnectionObserverのテスト実装。
type observerStub struct {
	connections int
	delivered   int
}

func (o *observerStub) SetLiveConnections(n int)      { o.connections = n }
func (o *observerStub) RecordFanoutDelivered(count int) { o.delivered += count }

// TestHub_ObserverNotified は接続数と配信数が観測先に通知されることを検証する。
func TestHub_ObserverNotified(t *testing.T) {
	observer := &observerStub{}
	hub := NewHub(observer)
	dialTestServer(t, hub, "?uid=user-1")

	waitFor(t, func() bool { return observer.connections == 1 })

	waitFor(t, func() bool { return hub.RoomSize("user-1") == 1 })
	hub.EmitNewLog("user-1", map[string]string{"id": "log-1"})

	if observer.delivered != 1 {
		t.Errorf("observed delivered = %d, want 1", observer.delivered)
	}
}
