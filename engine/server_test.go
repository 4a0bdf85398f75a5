package engine

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := NewServer(ServerConfig{Game: testConfig(), APIToken: "secret_token"})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Stop()
	})
	return srv, ts
}

func createGame(t *testing.T, ts *httptest.Server, token string, users ...string) (*http.Response, createGameResponse) {
	t.Helper()
	body, _ := json.Marshal(createGamePayload{APIToken: token, UserIDs: users})
	resp, err := http.Post(ts.URL+"/create_game", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var out createGameResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp, out
}

func TestCreateGameRequiresAPIToken(t *testing.T) {
	srv, ts := newTestServer(t)
	resp, out := createGame(t, ts, "wrong", "a", "b")
	if resp.StatusCode != http.StatusUnauthorized || out.Type != "Error" {
		t.Fatalf("expected 401 Error, got %d %+v", resp.StatusCode, out)
	}
	if srv.Registry.Len() != 0 {
		t.Fatalf("game created without a valid token")
	}
}

func TestCreateGameRejectsBadPlayers(t *testing.T) {
	_, ts := newTestServer(t)
	resp, out := createGame(t, ts, "secret_token", "a", "a")
	if resp.StatusCode != http.StatusBadRequest || out.Type != "Error" || out.Error == "" {
		t.Fatalf("expected 400 Error, got %d %+v", resp.StatusCode, out)
	}
}

func TestCreateGameAndConnect(t *testing.T) {
	srv, ts := newTestServer(t)
	resp, out := createGame(t, ts, "secret_token", "a", "b")
	if resp.StatusCode != http.StatusOK || out.Type != "Success" {
		t.Fatalf("expected Success, got %d %+v", resp.StatusCode, out)
	}
	if _, ok := srv.Registry.Lookup(out.GameID); !ok {
		t.Fatalf("game %s not registered", out.GameID)
	}
	if len(out.Users) != 2 {
		t.Fatalf("expected two tokens, got %+v", out.Users)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	auth, _ := json.Marshal(ClientMessage{Kind: CmdAuthenticate, GameID: out.GameID, AccessToken: out.Users[1].AccessToken})
	if err := conn.WriteMessage(websocket.TextMessage, auth); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	msgType, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Fatalf("expected binary frame, got %d", msgType)
	}
	if string(frame) != `{"type":"Authenticated"}` {
		t.Fatalf("unexpected first frame %s", frame)
	}

	_, frame, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var status struct {
		Type   string        `json:"type"`
		Status []ReadyStatus `json:"status"`
	}
	if err := json.Unmarshal(frame, &status); err != nil || status.Type != "ReadyStatus" || len(status.Status) != 2 {
		t.Fatalf("expected ReadyStatus for both players, got %s", frame)
	}
}

func TestWebSocketRejectsForgedToken(t *testing.T) {
	_, ts := newTestServer(t)
	_, out := createGame(t, ts, "secret_token", "a")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	auth, _ := json.Marshal(ClientMessage{Kind: CmdAuthenticate, GameID: out.GameID, AccessToken: "forged"})
	conn.WriteMessage(websocket.TextMessage, auth)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, frame, err := conn.ReadMessage(); err == nil {
		t.Fatalf("forged token received a frame: %s", frame)
	}
}

func TestBoardImage(t *testing.T) {
	_, ts := newTestServer(t)
	_, out := createGame(t, ts, "secret_token", "a", "b")

	resp, err := http.Get(ts.URL + "/games/" + out.GameID + "/board.png?block=4&grid=1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 40 {
		t.Fatalf("image is %dx%d, want 80x40", b.Dx(), b.Dy())
	}

	missing, err := http.Get(ts.URL + "/games/nope/board.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown game, got %d", missing.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	createGame(t, ts, "secret_token", "a")

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var snap StatsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Games != 1 || len(snap.List) != 1 || snap.Version != Version {
		t.Fatalf("unexpected stats %+v", snap)
	}
}

func TestZeroServerConfigRunsDefaultGames(t *testing.T) {
	srv := NewServer(ServerConfig{APIToken: "x"})
	defer srv.Stop()
	if srv.Registry.Config() != DefaultConfig() {
		t.Fatalf("registry config = %+v, want defaults", srv.Registry.Config())
	}
}
