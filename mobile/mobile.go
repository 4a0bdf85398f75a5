// Package mobile provides gomobile-compatible bindings for embedding
// the snakepit game server in iOS/tvOS/Android applications.
//
// All exported functions use only primitive types (int, string, error)
// to satisfy gomobile's type restrictions.
package mobile

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"

	"snakepit.tv/engine"
)

var (
	srv  *engine.Server
	mu   sync.Mutex
	port int
)

// Start initializes and starts the game server on the given port with the
// default game config. apiToken guards game creation.
// The server runs in the background. Call Stop() to shut it down.
func Start(serverPort int, apiToken string) error {
	mu.Lock()
	defer mu.Unlock()

	if srv != nil {
		return fmt.Errorf("server already running")
	}

	s := engine.NewServer(engine.ServerConfig{
		Game:     engine.DefaultConfig(),
		APIToken: apiToken,
	})
	if err := s.Start(serverPort); err != nil {
		return err
	}
	srv = s
	port = serverPort
	return nil
}

// CreateGame registers a game for the comma-separated player ids and
// returns the creation result as JSON: the game id plus one access token
// per player.
func CreateGame(playerIDs string) (string, error) {
	mu.Lock()
	s := srv
	mu.Unlock()

	if s == nil {
		return "", fmt.Errorf("server not running")
	}
	var players []string
	for _, id := range strings.Split(playerIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			players = append(players, id)
		}
	}
	gameID, users, err := s.Registry.Create(players, engine.DefaultCosts())
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(map[string]any{"game_id": gameID, "users": users})
	return string(b), err
}

// Stop shuts down the running server.
func Stop() {
	mu.Lock()
	defer mu.Unlock()

	if srv != nil {
		srv.Stop()
		srv = nil
	}
}

// IsRunning returns true if the server is currently running.
func IsRunning() bool {
	mu.Lock()
	defer mu.Unlock()
	return srv != nil
}

// GetStats returns registry, connection and per-game stats as JSON.
func GetStats() string {
	mu.Lock()
	s := srv
	mu.Unlock()

	if s == nil {
		return "{}"
	}
	return s.GetStatsJSON()
}

// GetLocalIP returns the device's local network IP address.
func GetLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "unknown"
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return "unknown"
}

// GetConnectURL returns the websocket endpoint game clients dial.
func GetConnectURL() string {
	mu.Lock()
	p := port
	mu.Unlock()

	return fmt.Sprintf("ws://%s:%d/game", GetLocalIP(), p)
}

// GetDashboardURL returns the address of the server dashboard.
func GetDashboardURL() string {
	mu.Lock()
	p := port
	mu.Unlock()

	return fmt.Sprintf("http://%s:%d/dashboard", GetLocalIP(), p)
}

// GetVersion returns the server version string.
func GetVersion() string {
	return engine.Version
}
