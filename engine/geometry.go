package engine

import (
	"encoding/json"
	"fmt"
)

type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{"Up", "Down", "Left", "Right"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", d)
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// delta is the one-cell step taken when travelling in d. y grows downward.
func (d Direction) delta() (int, int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 1, 0
	}
}

type directionJSON struct {
	Type string `json:"type"`
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(directionJSON{Type: d.String()})
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var v directionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	for i, name := range directionNames {
		if name == v.Type {
			*d = Direction(i)
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", v.Type)
}

// Point is a grid cell, encoded as [x, y] on the wire.
type Point struct {
	X, Y int
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var v [2]int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.X, p.Y = v[0], v[1]
	return nil
}

// Board is the toroidal playing field.
type Board struct {
	Width, Height int
}

func (b Board) Wrap(p Point) Point {
	x, y := p.X%b.Width, p.Y%b.Height
	if x < 0 {
		x += b.Width
	}
	if y < 0 {
		y += b.Height
	}
	return Point{X: x, Y: y}
}

func (b Board) Center() Point {
	return Point{X: b.Width / 2, Y: b.Height / 2}
}

func (b Board) step(p Point, dx, dy int) Point {
	return b.Wrap(Point{X: p.X + dx, Y: p.Y + dy})
}

// Overlaps reports whether p lies on any cell of s, head included. The body
// is walked from the head backward, each segment for its run length.
func (b Board) Overlaps(p Point, s *AliveSnake) bool {
	cur := s.Head
	for _, seg := range s.Blocks {
		dx, dy := seg.Dir.delta()
		for i := 0; i < seg.Len; i++ {
			if cur == p {
				return true
			}
			cur = b.step(cur, -dx, -dy)
		}
	}
	return false
}

// Cells lists every occupied cell of s from head to tail.
func (b Board) Cells(s *AliveSnake) []Point {
	cells := make([]Point, 0, s.Length())
	cur := s.Head
	for _, seg := range s.Blocks {
		dx, dy := seg.Dir.delta()
		for i := 0; i < seg.Len; i++ {
			cells = append(cells, cur)
			cur = b.step(cur, -dx, -dy)
		}
	}
	return cells
}
