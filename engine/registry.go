package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownGame     = errors.New("unknown game")
	ErrUnknownToken    = errors.New("unknown access token")
	ErrNoPlayers       = errors.New("game needs at least one player")
	ErrDuplicatePlayer = errors.New("duplicate player id")
	ErrEmptyPlayer     = errors.New("empty player id")
)

// Entry is one registered game: its fixed token table and the running game.
type Entry struct {
	ID      string
	Game    *Game
	Created time.Time

	tokens map[string]string // access token -> player id
	cancel context.CancelFunc
}

// UserAccessToken is handed back to the creator, one per player.
type UserAccessToken struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

// Registry is the process-wide directory of games. Lookups share the read
// lock; only Create and eviction take the write lock, and never across a
// tick.
type Registry struct {
	cfg Config
	ctx context.Context

	mu    sync.RWMutex
	games map[string]*Entry
}

// NewRegistry creates an empty registry. Game loops it launches stop when
// ctx is cancelled.
func NewRegistry(ctx context.Context, cfg Config) *Registry {
	return &Registry{
		cfg:   cfg.withDefaults(),
		ctx:   ctx,
		games: make(map[string]*Entry),
	}
}

func (r *Registry) Config() Config { return r.cfg }

// Create registers a new game in the lobby phase, mints one access token per
// player and launches its tick loop.
func (r *Registry) Create(players []string, costs PowerUpCosts) (string, []UserAccessToken, error) {
	if len(players) == 0 {
		return "", nil, ErrNoPlayers
	}
	seen := make(map[string]bool, len(players))
	for _, id := range players {
		if id == "" {
			return "", nil, ErrEmptyPlayer
		}
		if seen[id] {
			return "", nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, id)
		}
		seen[id] = true
	}

	gameID := uuid.NewString()
	tokens := make(map[string]string, len(players))
	issued := make([]UserAccessToken, 0, len(players))
	for _, id := range players {
		token := uuid.NewString()
		tokens[token] = id
		issued = append(issued, UserAccessToken{AccessToken: token, UserID: id})
	}

	ctx, cancel := context.WithCancel(r.ctx)
	entry := &Entry{
		ID:      gameID,
		Game:    NewGame(gameID, players, r.cfg, costs),
		Created: time.Now(),
		tokens:  tokens,
		cancel:  cancel,
	}

	r.mu.Lock()
	r.games[gameID] = entry
	r.mu.Unlock()

	go entry.Game.Run(ctx)

	log.Printf("[REGISTRY] created game %s for %d players", gameID, len(players))
	return gameID, issued, nil
}

func (r *Registry) Lookup(gameID string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.games[gameID]
	return e, ok
}

// Authenticate resolves a game id and access token to the game and the
// player the token was minted for.
func (r *Registry) Authenticate(gameID, token string) (*Game, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.games[gameID]
	if !ok {
		return nil, "", ErrUnknownGame
	}
	playerID, ok := e.tokens[token]
	if !ok {
		return nil, "", ErrUnknownToken
	}
	return e.Game, playerID, nil
}

// List returns every entry, oldest first.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	out := make([]*Entry, 0, len(r.games))
	for _, e := range r.games {
		out = append(out, e)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Evict removes games whose loop halted, and games that finished more than
// FinishedTTL before now. A zero TTL keeps finished games but halted ones are
// always removed. Their loops are cancelled, which closes their broadcast
// streams. It returns the evicted ids.
func (r *Registry) Evict(now time.Time) []string {
	ttl := r.cfg.FinishedTTL()

	// Game state is checked outside the registry lock so a slow tick never
	// holds up lookups.
	var stale []*Entry
	for _, e := range r.List() {
		if e.Game.Halted() != nil {
			stale = append(stale, e)
			continue
		}
		finished := e.Game.finishedSince()
		if ttl > 0 && !finished.IsZero() && now.Sub(finished) >= ttl {
			stale = append(stale, e)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	r.mu.Lock()
	for _, e := range stale {
		delete(r.games, e.ID)
	}
	r.mu.Unlock()

	ids := make([]string, 0, len(stale))
	for _, e := range stale {
		e.cancel()
		ids = append(ids, e.ID)
		log.Printf("[REGISTRY] evicted game %s", e.ID)
	}
	return ids
}

// Run sweeps finished games every EvictInterval until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.EvictInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Evict(now)
			snap := r.Stats()
			log.Printf("[STATS] games=%d waiting=%d playing=%d finished=%d connections=%d",
				snap.Games, snap.Waiting, snap.Playing, snap.Finished, snap.Connections)
		}
	}
}
