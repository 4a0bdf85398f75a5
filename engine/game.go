package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

var (
	ErrGameHalted = errors.New("game halted")
	ErrGameClosed = errors.New("game closed")
)

// Game is one authoritative game instance. The state is only read or
// written with mu held, and a tick holds mu for its whole transition.
type Game struct {
	ID string

	cfg     Config
	board   Board
	costs   PowerUpCosts
	players []string // registration order; every iteration follows it
	rng     *rand.Rand

	inbox chan Command
	hub   *Hub
	done  chan struct{}

	mu         sync.Mutex
	state      State
	ticks      int64
	startedAt  time.Time
	finishedAt time.Time
	halted     error

	// Tick performance
	tickDurations [60]time.Duration
	tickDurIdx    int
	maxTick       time.Duration
}

func NewGame(id string, players []string, cfg Config, costs PowerUpCosts) *Game {
	cfg = cfg.withDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Game{
		ID:        id,
		cfg:       cfg,
		board:     cfg.Board(),
		costs:     costs,
		players:   append([]string(nil), players...),
		rng:       rand.New(rand.NewSource(seed)),
		inbox:     make(chan Command, cfg.InboxSize),
		hub:       NewHub(cfg.BroadcastBuffer * max(len(players), 1)),
		done:      make(chan struct{}),
		state:     newWaiting(players),
		startedAt: time.Now(),
	}
}

func (g *Game) Players() []string { return append([]string(nil), g.players...) }

func (g *Game) Costs() PowerUpCosts { return g.costs }

// Subscribe attaches a receiver to the broadcast stream.
func (g *Game) Subscribe() *Subscription { return g.hub.Subscribe() }

// Done is closed once the tick loop has exited.
func (g *Game) Done() <-chan struct{} { return g.done }

// Submit queues cmd for the next tick, blocking while the inbox is full.
func (g *Game) Submit(ctx context.Context, cmd Command) error {
	select {
	case g.inbox <- cmd:
		return nil
	case <-g.done:
		return ErrGameClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inspect runs fn with the state locked. fn must not retain st.
func (g *Game) Inspect(fn func(st State)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.state)
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Phase()
}

// Halted returns the error that stopped the game, if any.
func (g *Game) Halted() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.halted
}

// ---------------------------------------------------------------------------
// Tick + Run
// ---------------------------------------------------------------------------

// Run ticks the game until ctx is cancelled or a tick fails. Either way the
// broadcast stream is closed on return, which ends every connection's
// outbound task.
func (g *Game) Run(ctx context.Context) error {
	defer close(g.done)
	defer g.hub.Close()

	ticker := time.NewTicker(g.cfg.TickInterval())
	defer ticker.Stop()

	log.Printf("[GAME %s] running with %d players", g.ID, len(g.players))
	for {
		select {
		case <-ctx.Done():
			log.Printf("[GAME %s] stopped", g.ID)
			return nil
		case <-ticker.C:
			if err := g.Tick(); err != nil {
				log.Printf("[GAME %s] halted: %v", g.ID, err)
				return err
			}
		}
	}
}

// Tick runs one simulation step and broadcasts its events.
func (g *Game) Tick() error {
	start := time.Now()
	cmds := g.drain()

	events, err := g.advance(cmds)
	if err != nil {
		return err
	}
	g.broadcast(events)

	g.recordTick(time.Since(start))
	return nil
}

// drain takes exactly the commands queued right now. Anything that arrives
// while draining waits for the next tick.
func (g *Game) drain() []Command {
	n := len(g.inbox)
	if n == 0 {
		return nil
	}
	cmds := make([]Command, 0, n)
	for i := 0; i < n; i++ {
		select {
		case cmd := <-g.inbox:
			cmds = append(cmds, cmd)
		default:
			return cmds
		}
	}
	return cmds
}

func (g *Game) advance(cmds []Command) (events []Event, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.halted != nil {
		return nil, g.halted
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic in tick %d: %v", ErrGameHalted, g.ticks, r)
		}
		if err != nil {
			g.halted = err
		}
	}()

	var (
		start    bool
		finished bool
		winner   string
	)

	switch st := g.state.(type) {
	case *WaitingForPlayers:
		for _, cmd := range cmds {
			if cmd.Message.Kind != CmdSetReady {
				continue
			}
			if _, known := st.Ready[cmd.PlayerID]; known {
				st.Ready[cmd.PlayerID] = cmd.Message.Ready
			}
		}
		events = append(events, g.readyStatus(st))
		start = allReady(st)
	case *Playing:
		var snapshot GameStateEvent
		snapshot, winner, finished = g.simulate(st, cmds)
		events = append(events, snapshot)
	case *GameOver:
		events = append(events, gameOverEvent(st))
	default:
		return nil, fmt.Errorf("%w: unexpected state %T", ErrGameHalted, st)
	}

	if start {
		g.state = newPlaying(g.players, g.cfg)
		events = append(events, StartGameEvent{})
		log.Printf("[GAME %s] all players ready, starting", g.ID)
	}

	if finished {
		playing, ok := g.state.(*Playing)
		if !ok {
			return nil, fmt.Errorf("%w: game over while %s", ErrGameHalted, g.state.Phase())
		}
		g.state = &GameOver{Winner: winner, AmountsSpent: g.ledger(playing)}
		g.finishedAt = time.Now()
		log.Printf("[GAME %s] over after %d ticks, winner %q", g.ID, playing.Ticks, winner)
	}

	g.ticks++
	return events, nil
}

// broadcast fans every event out to every registered player. Addressing per
// connection happens in the routing layer, so each subscriber sees one copy
// per player and the hub buffer is sized for that.
func (g *Game) broadcast(events []Event) {
	for _, e := range events {
		for _, id := range g.players {
			g.hub.Publish(Outgoing{To: id, Event: e})
		}
	}
}

func (g *Game) readyStatus(st *WaitingForPlayers) ReadyStatusEvent {
	status := make([]ReadyStatus, 0, len(g.players))
	for _, id := range g.players {
		status = append(status, ReadyStatus{UserID: id, Ready: st.Ready[id]})
	}
	return ReadyStatusEvent{Status: status}
}

func allReady(st *WaitingForPlayers) bool {
	for _, ready := range st.Ready {
		if !ready {
			return false
		}
	}
	return true
}

func (g *Game) ledger(st *Playing) []AmountSpent {
	out := make([]AmountSpent, 0, len(g.players))
	for _, id := range g.players {
		out = append(out, AmountSpent{UserID: id, AmountSpent: st.Spent[id]})
	}
	return out
}

func gameOverEvent(st *GameOver) GameOverEvent {
	return GameOverEvent{
		Winner:       st.Winner,
		AmountsSpent: append([]AmountSpent{}, st.AmountsSpent...),
	}
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func (g *Game) recordTick(elapsed time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tickDurations[g.tickDurIdx%len(g.tickDurations)] = elapsed
	g.tickDurIdx++
	if elapsed > g.maxTick {
		g.maxTick = elapsed
	}
}

type GameStats struct {
	ID          string   `json:"id"`
	Phase       string   `json:"phase"`
	Players     []string `json:"players"`
	Ticks       int64    `json:"ticks"`
	Uptime      string   `json:"uptime"`
	AvgTickMs   float64  `json:"avgTickMs"`
	MaxTickMs   float64  `json:"maxTickMs"`
	Subscribers int      `json:"subscribers"`
	Dropped     int64    `json:"dropped"`
	Winner      string   `json:"winner,omitempty"`
	Halted      string   `json:"halted,omitempty"`
}

func (g *Game) Stats() GameStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	var total time.Duration
	count := 0
	for _, d := range g.tickDurations {
		if d > 0 {
			total += d
			count++
		}
	}
	avg := 0.0
	if count > 0 {
		avg = float64(total.Nanoseconds()) / float64(count) / 1e6
	}

	s := GameStats{
		ID:          g.ID,
		Phase:       g.state.Phase().String(),
		Players:     append([]string(nil), g.players...),
		Ticks:       g.ticks,
		Uptime:      formatDuration(time.Since(g.startedAt)),
		AvgTickMs:   roundMs(avg),
		MaxTickMs:   roundMs(float64(g.maxTick.Nanoseconds()) / 1e6),
		Subscribers: g.hub.Subscribers(),
		Dropped:     g.hub.Dropped(),
	}
	if over, ok := g.state.(*GameOver); ok {
		s.Winner = over.Winner
	}
	if g.halted != nil {
		s.Halted = g.halted.Error()
	}
	return s
}

// finishedSince reports when the game reached GameOver, or zero.
func (g *Game) finishedSince() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finishedAt
}
