package engine

type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// State is one of *WaitingForPlayers, *Playing or *GameOver. It is owned by
// a single Game and only touched while that game's lock is held.
type State interface {
	Phase() Phase
}

type WaitingForPlayers struct {
	Ready map[string]bool
}

type Playing struct {
	Snakes map[string]Snake
	Apples []Point
	Spent  map[string]float64
	Ticks  int
}

type GameOver struct {
	Winner       string
	AmountsSpent []AmountSpent
}

func (*WaitingForPlayers) Phase() Phase { return PhaseWaiting }
func (*Playing) Phase() Phase           { return PhasePlaying }
func (*GameOver) Phase() Phase          { return PhaseFinished }

func newWaiting(players []string) *WaitingForPlayers {
	ready := make(map[string]bool, len(players))
	for _, id := range players {
		ready[id] = false
	}
	return &WaitingForPlayers{Ready: ready}
}

// newPlaying spreads the snakes evenly across the board at half height.
func newPlaying(players []string, cfg Config) *Playing {
	n := len(players)
	p := &Playing{
		Snakes: make(map[string]Snake, n),
		Spent:  make(map[string]float64, n),
	}
	w, h := cfg.BoardWidth, cfg.BoardHeight
	for i, id := range players {
		head := Point{X: w*i/n + w/(2*n), Y: h / 2}
		p.Snakes[id] = newSnake(id, head, cfg.StartLength)
		p.Spent[id] = 0
	}
	return p
}

func (p *Playing) alive(id string) (*AliveSnake, bool) {
	s, ok := p.Snakes[id].(*AliveSnake)
	return s, ok
}
