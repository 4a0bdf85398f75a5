package engine

import (
	"encoding/json"
	"fmt"
)

type PowerUpKind uint8

const (
	ExtraLife PowerUpKind = iota
	AddLength
	ShrinkOpponent
	FreezeOpponent
	Revive
)

var powerUpNames = [...]string{"ExtraLife", "AddLength", "ShrinkOpponent", "FreezeOpponent", "Revive"}

func (k PowerUpKind) String() string {
	if int(k) < len(powerUpNames) {
		return powerUpNames[k]
	}
	return fmt.Sprintf("PowerUpKind(%d)", k)
}

// PowerUp is a costed player action. Opponent is only meaningful for the
// targeted kinds.
type PowerUp struct {
	Kind     PowerUpKind
	Opponent string
}

func (p PowerUp) targeted() bool {
	return p.Kind == ShrinkOpponent || p.Kind == FreezeOpponent
}

type powerUpJSON struct {
	Type     string `json:"type"`
	Opponent string `json:"opponent,omitempty"`
}

func (p PowerUp) MarshalJSON() ([]byte, error) {
	v := powerUpJSON{Type: p.Kind.String()}
	if p.targeted() {
		v.Opponent = p.Opponent
	}
	return json.Marshal(v)
}

func (p *PowerUp) UnmarshalJSON(data []byte) error {
	var v powerUpJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	for i, name := range powerUpNames {
		if name != v.Type {
			continue
		}
		p.Kind = PowerUpKind(i)
		p.Opponent = ""
		if p.targeted() {
			if v.Opponent == "" {
				return fmt.Errorf("power-up %s needs an opponent", v.Type)
			}
			p.Opponent = v.Opponent
		}
		return nil
	}
	return fmt.Errorf("unknown power-up %q", v.Type)
}

// ---------------------------------------------------------------------------
// Resolution (called from the tick with the game lock held)
// ---------------------------------------------------------------------------

// applyPowerUp resolves p cast by caster against the playing state and
// reports whether it took effect. Failed preconditions are silent no-ops.
func (g *Game) applyPowerUp(st *Playing, caster string, p PowerUp) bool {
	switch p.Kind {
	case ExtraLife:
		s, ok := st.alive(caster)
		if !ok {
			return false
		}
		s.HasExtraLife = true
	case AddLength:
		s, ok := st.alive(caster)
		if !ok {
			return false
		}
		s.Grow(g.cfg.AddLength)
	case FreezeOpponent:
		target, ok := st.alive(p.Opponent)
		if !ok {
			return false
		}
		target.Frozen = CountdownOf(g.cfg.StatusTicks())
	case ShrinkOpponent:
		target, ok := st.alive(p.Opponent)
		if !ok {
			return false
		}
		target.Shrink(g.cfg.ShrinkAmount, g.cfg.MinLength)
	case Revive:
		if _, dead := st.Snakes[caster].(*DeadSnake); !dead {
			return false
		}
		s := newSnake(caster, g.board.Center(), g.cfg.StartLength)
		s.Invulnerable = CountdownOf(g.cfg.StatusTicks())
		st.Snakes[caster] = s
	default:
		return false
	}
	st.Spent[caster] += g.costs.Cost(p)
	return true
}
