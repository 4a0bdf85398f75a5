package engine

import "encoding/json"

// Countdown is an optional tick counter. The zero value is inactive.
type Countdown struct {
	left   int
	active bool
}

func CountdownOf(ticks int) Countdown {
	return Countdown{left: ticks, active: true}
}

func (c Countdown) Active() bool { return c.active }

func (c Countdown) Left() int {
	if !c.active {
		return 0
	}
	return c.left
}

// Tick decrements an active countdown; one already at zero goes inactive.
func (c *Countdown) Tick() {
	if !c.active {
		return
	}
	if c.left > 0 {
		c.left--
	} else {
		c.active = false
	}
}

// Segment is a straight run of the body: the direction it was travelled in
// and how many cells it covers.
type Segment struct {
	Dir Direction
	Len int
}

func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{s.Dir, s.Len})
}

func (s *Segment) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &s.Dir); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &s.Len)
}

// Snake is either *AliveSnake or *DeadSnake.
type Snake interface {
	Owner() string
	isSnake()
}

type AliveSnake struct {
	UserID       string
	Head         Point
	Heading      Direction
	Blocks       []Segment // head first
	Invulnerable Countdown
	Frozen       Countdown
	HasExtraLife bool
}

func (s *AliveSnake) Owner() string { return s.UserID }
func (*AliveSnake) isSnake()        {}

type DeadSnake struct {
	UserID string
	Head   Point
	Revive Countdown // inactive once revival-eligible
}

func (s *DeadSnake) Owner() string { return s.UserID }
func (*DeadSnake) isSnake()        {}

func newSnake(userID string, head Point, length int) *AliveSnake {
	return &AliveSnake{
		UserID:  userID,
		Head:    head,
		Heading: Up,
		Blocks:  []Segment{{Dir: Up, Len: length}},
	}
}

func (s *AliveSnake) Length() int {
	n := 0
	for _, seg := range s.Blocks {
		n += seg.Len
	}
	return n
}

// Grow extends the tail segment by n cells.
func (s *AliveSnake) Grow(n int) {
	s.Blocks[len(s.Blocks)-1].Len += n
}

// TrimTail removes up to n cells from the tail, dropping emptied segments.
// The head segment is never removed entirely.
func (s *AliveSnake) TrimTail(n int) {
	for n > 0 {
		last := len(s.Blocks) - 1
		tail := &s.Blocks[last]
		if tail.Len > n {
			tail.Len -= n
			return
		}
		if last == 0 {
			if tail.Len > 1 {
				tail.Len = 1
			}
			return
		}
		n -= tail.Len
		s.Blocks = s.Blocks[:last]
	}
}

// Shrink removes up to n cells without taking the snake below minLength.
func (s *AliveSnake) Shrink(n, minLength int) {
	if room := s.Length() - minLength; n > room {
		n = room
	}
	if n > 0 {
		s.TrimTail(n)
	}
}

// Advance moves the head one cell along the heading and pulls the tail in.
func (s *AliveSnake) Advance(b Board) {
	dx, dy := s.Heading.delta()
	s.Head = b.step(s.Head, dx, dy)

	if s.Blocks[0].Dir != s.Heading {
		s.Blocks = append([]Segment{{Dir: s.Heading}}, s.Blocks...)
	}
	s.Blocks[0].Len++
	last := len(s.Blocks) - 1
	s.Blocks[last].Len--
	if s.Blocks[last].Len == 0 {
		s.Blocks = s.Blocks[:last]
	}
}

// Turn applies the turning rule and reports whether the heading changed.
func (s *AliveSnake) Turn(d Direction) bool {
	if d == s.Heading || d == s.Heading.Opposite() {
		return false
	}
	s.Heading = d
	return true
}

func (s *AliveSnake) kill(reviveTicks int) *DeadSnake {
	return &DeadSnake{UserID: s.UserID, Head: s.Head, Revive: CountdownOf(reviveTicks)}
}
