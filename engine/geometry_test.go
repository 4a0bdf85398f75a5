package engine

import (
	"encoding/json"
	"testing"
)

func TestDirectionOppositeIsInvolution(t *testing.T) {
	for _, d := range []Direction{Up, Down, Left, Right} {
		if d.Opposite() == d {
			t.Fatalf("%s is its own opposite", d)
		}
		if d.Opposite().Opposite() != d {
			t.Fatalf("opposite of opposite of %s is %s", d, d.Opposite().Opposite())
		}
	}
}

func TestDirectionJSON(t *testing.T) {
	b, err := json.Marshal(Left)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"type":"Left"}` {
		t.Fatalf("unexpected encoding %s", b)
	}

	var d Direction
	if err := json.Unmarshal([]byte(`{"type":"Down"}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d != Down {
		t.Fatalf("expected Down, got %s", d)
	}
	if err := json.Unmarshal([]byte(`{"type":"Sideways"}`), &d); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}

func TestPointJSON(t *testing.T) {
	b, _ := json.Marshal(Point{X: 3, Y: 7})
	if string(b) != `[3,7]` {
		t.Fatalf("unexpected encoding %s", b)
	}
}

func TestBoardWrap(t *testing.T) {
	board := Board{Width: 10, Height: 5}
	cases := []struct {
		in, want Point
	}{
		{Point{0, 0}, Point{0, 0}},
		{Point{10, 5}, Point{0, 0}},
		{Point{-1, -1}, Point{9, 4}},
		{Point{23, 11}, Point{3, 1}},
	}
	for _, tc := range cases {
		if got := board.Wrap(tc.in); got != tc.want {
			t.Fatalf("Wrap(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestOverlapsWalksBody(t *testing.T) {
	board := Board{Width: 20, Height: 20}
	// Moving Up now, having turned off a run to the Right.
	s := &AliveSnake{
		Head:    Point{5, 5},
		Heading: Up,
		Blocks:  []Segment{{Dir: Up, Len: 2}, {Dir: Right, Len: 3}},
	}

	want := []Point{{5, 5}, {5, 6}, {5, 7}, {4, 7}, {3, 7}}
	got := board.Cells(s)
	if len(got) != len(want) {
		t.Fatalf("expected %d cells, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cell %d = %v, want %v", i, got[i], want[i])
		}
		if !board.Overlaps(want[i], s) {
			t.Fatalf("expected %v to overlap", want[i])
		}
	}

	for _, p := range []Point{{5, 4}, {6, 7}, {2, 7}, {4, 6}} {
		if board.Overlaps(p, s) {
			t.Fatalf("unexpected overlap at %v", p)
		}
	}
}

func TestOverlapsAcrossEdge(t *testing.T) {
	board := Board{Width: 10, Height: 10}
	s := &AliveSnake{
		Head:    Point{0, 3},
		Heading: Right,
		Blocks:  []Segment{{Dir: Right, Len: 3}},
	}
	for _, p := range []Point{{0, 3}, {9, 3}, {8, 3}} {
		if !board.Overlaps(p, s) {
			t.Fatalf("expected wrapped overlap at %v", p)
		}
	}
	if board.Overlaps(Point{7, 3}, s) {
		t.Fatalf("overlap past the tail")
	}
}
