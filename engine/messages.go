package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Client -> server
// ---------------------------------------------------------------------------

type CommandKind uint8

const (
	CmdAuthenticate CommandKind = iota
	CmdUsePowerUp
	CmdSetDirection
	CmdSetReady
)

// ClientMessage is one decoded client frame. Only the fields that belong to
// Kind are set.
type ClientMessage struct {
	Kind        CommandKind
	AccessToken string
	GameID      string
	PowerUp     PowerUp
	Direction   Direction
	Ready       bool
}

type clientMessageJSON struct {
	Type        string     `json:"type"`
	AccessToken *string    `json:"access_token"`
	GameID      *string    `json:"game_id"`
	PowerUp     *PowerUp   `json:"power_up"`
	Direction   *Direction `json:"direction"`
	Ready       *bool      `json:"ready"`
}

var errMissingField = errors.New("missing field")

func ParseClientMessage(data []byte) (ClientMessage, error) {
	var raw clientMessageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return ClientMessage{}, err
	}
	var m ClientMessage
	switch raw.Type {
	case "Authenticate":
		if raw.AccessToken == nil || raw.GameID == nil {
			return m, fmt.Errorf("Authenticate: %w", errMissingField)
		}
		m.Kind, m.AccessToken, m.GameID = CmdAuthenticate, *raw.AccessToken, *raw.GameID
	case "UsePowerUp":
		if raw.PowerUp == nil {
			return m, fmt.Errorf("UsePowerUp: %w", errMissingField)
		}
		m.Kind, m.PowerUp = CmdUsePowerUp, *raw.PowerUp
	case "SetDirection":
		if raw.Direction == nil {
			return m, fmt.Errorf("SetDirection: %w", errMissingField)
		}
		m.Kind, m.Direction = CmdSetDirection, *raw.Direction
	case "SetReady":
		if raw.Ready == nil {
			return m, fmt.Errorf("SetReady: %w", errMissingField)
		}
		m.Kind, m.Ready = CmdSetReady, *raw.Ready
	default:
		return m, fmt.Errorf("unknown message type %q", raw.Type)
	}
	return m, nil
}

func (m *ClientMessage) UnmarshalJSON(data []byte) error {
	parsed, err := ParseClientMessage(data)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m ClientMessage) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case CmdAuthenticate:
		return json.Marshal(struct {
			Type        string `json:"type"`
			AccessToken string `json:"access_token"`
			GameID      string `json:"game_id"`
		}{"Authenticate", m.AccessToken, m.GameID})
	case CmdUsePowerUp:
		return json.Marshal(struct {
			Type    string  `json:"type"`
			PowerUp PowerUp `json:"power_up"`
		}{"UsePowerUp", m.PowerUp})
	case CmdSetDirection:
		return json.Marshal(struct {
			Type      string    `json:"type"`
			Direction Direction `json:"direction"`
		}{"SetDirection", m.Direction})
	case CmdSetReady:
		return json.Marshal(struct {
			Type  string `json:"type"`
			Ready bool   `json:"ready"`
		}{"SetReady", m.Ready})
	}
	return nil, fmt.Errorf("unknown command kind %d", m.Kind)
}

// Command is a client message tagged with the player that sent it.
type Command struct {
	PlayerID string
	Message  ClientMessage
}

// ---------------------------------------------------------------------------
// Server -> client
// ---------------------------------------------------------------------------

// Event is an outbound message. EncodeEvent adds the "type" tag.
type Event interface {
	EventType() string
}

type AuthenticatedEvent struct{}

type ReadyStatus struct {
	UserID string `json:"user_id"`
	Ready  bool   `json:"ready"`
}

type ReadyStatusEvent struct {
	Status []ReadyStatus `json:"status"`
}

type StartGameEvent struct{}

type AmountSpent struct {
	UserID      string  `json:"user_id"`
	AmountSpent float64 `json:"amount_spent"`
}

type GameOverEvent struct {
	Winner       string        `json:"winner"`
	AmountsSpent []AmountSpent `json:"amounts_spent"`
}

type RecentPowerUp struct {
	UserID  string  `json:"user_id"`
	PowerUp PowerUp `json:"power_up"`
}

type GameStateEvent struct {
	Apples         []Point         `json:"apples"`
	Snakes         []SnakeView     `json:"snakes"`
	JustAteApple   []string        `json:"just_ate_apple"`
	RecentPowerUps []RecentPowerUp `json:"recent_power_ups"`
}

func (AuthenticatedEvent) EventType() string { return "Authenticated" }
func (ReadyStatusEvent) EventType() string   { return "ReadyStatus" }
func (StartGameEvent) EventType() string     { return "StartGame" }
func (GameOverEvent) EventType() string      { return "GameOver" }
func (GameStateEvent) EventType() string     { return "GameState" }

// SnakeView is the wire form of a snake: *AliveView or *DeadView.
type SnakeView interface {
	viewOwner() string
}

type AliveView struct {
	Type          string    `json:"type"`
	UserID        string    `json:"user_id"`
	Head          Point     `json:"head"`
	HeadDirection Direction `json:"head_direction"`
	Blocks        []Segment `json:"blocks"`
	Invulnerable  bool      `json:"invulnerable"`
	Frozen        bool      `json:"frozen"`
	HasExtraLife  bool      `json:"has_extra_life"`
}

type DeadView struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	ReviveLeft int    `json:"revive_left"`
}

func (v *AliveView) viewOwner() string { return v.UserID }
func (v *DeadView) viewOwner() string  { return v.UserID }

func viewOf(s Snake) SnakeView {
	switch s := s.(type) {
	case *AliveSnake:
		return &AliveView{
			Type:          "Alive",
			UserID:        s.UserID,
			Head:          s.Head,
			HeadDirection: s.Heading,
			Blocks:        append([]Segment(nil), s.Blocks...),
			Invulnerable:  s.Invulnerable.Active(),
			Frozen:        s.Frozen.Active(),
			HasExtraLife:  s.HasExtraLife,
		}
	case *DeadSnake:
		return &DeadView{Type: "Dead", UserID: s.UserID, ReviveLeft: s.Revive.Left()}
	}
	return nil
}

// EncodeEvent renders e as a JSON object whose first key is "type".
func EncodeEvent(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(e.EventType())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(body) + len(tag) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Outgoing is one event addressed to one player, as carried by the hub.
type Outgoing struct {
	To    string
	Event Event
}
