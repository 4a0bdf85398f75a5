package engine

import (
	"encoding/json"
	"testing"
)

func TestCountdownTicksDownThenExpires(t *testing.T) {
	c := CountdownOf(2)
	for i, want := range []int{1, 0} {
		c.Tick()
		if !c.Active() || c.Left() != want {
			t.Fatalf("tick %d: active=%v left=%d, want active left=%d", i, c.Active(), c.Left(), want)
		}
	}
	c.Tick()
	if c.Active() {
		t.Fatalf("expected countdown to expire after reaching zero")
	}

	var zero Countdown
	zero.Tick()
	if zero.Active() || zero.Left() != 0 {
		t.Fatalf("zero countdown should stay inactive")
	}
}

func TestAdvanceKeepsLength(t *testing.T) {
	board := Board{Width: 20, Height: 20}
	s := newSnake("a", Point{10, 10}, 5)

	s.Advance(board)
	if s.Head != (Point{10, 9}) {
		t.Fatalf("unexpected head %v", s.Head)
	}
	if s.Length() != 5 || len(s.Blocks) != 1 {
		t.Fatalf("unexpected body after straight move: %+v", s.Blocks)
	}

	s.Turn(Right)
	s.Advance(board)
	if s.Head != (Point{11, 9}) {
		t.Fatalf("unexpected head after turn %v", s.Head)
	}
	if s.Length() != 5 {
		t.Fatalf("length changed to %d", s.Length())
	}
	want := []Segment{{Dir: Right, Len: 1}, {Dir: Up, Len: 4}}
	for i := range want {
		if s.Blocks[i] != want[i] {
			t.Fatalf("blocks = %+v, want %+v", s.Blocks, want)
		}
	}

	for i := 0; i < 4; i++ {
		s.Advance(board)
	}
	if len(s.Blocks) != 1 || s.Blocks[0] != (Segment{Dir: Right, Len: 5}) {
		t.Fatalf("expected the old segment to be pulled in, got %+v", s.Blocks)
	}
}

func TestAdvanceWraps(t *testing.T) {
	board := Board{Width: 4, Height: 4}
	s := newSnake("a", Point{1, 0}, 2)
	s.Advance(board)
	if s.Head != (Point{1, 3}) {
		t.Fatalf("expected head to wrap to the bottom row, got %v", s.Head)
	}
}

func TestTurnRejectsSameAndOpposite(t *testing.T) {
	s := newSnake("a", Point{0, 0}, 3)
	if s.Turn(Up) {
		t.Fatalf("turn to current heading accepted")
	}
	if s.Turn(Down) {
		t.Fatalf("reversal accepted")
	}
	if !s.Turn(Left) || s.Heading != Left {
		t.Fatalf("perpendicular turn rejected")
	}
	if s.Turn(Right) {
		t.Fatalf("reversal after turn accepted")
	}
}

func TestGrowExtendsTail(t *testing.T) {
	s := &AliveSnake{Blocks: []Segment{{Dir: Left, Len: 2}, {Dir: Up, Len: 3}}}
	s.Grow(4)
	if s.Blocks[1].Len != 7 || s.Length() != 9 {
		t.Fatalf("unexpected blocks after grow: %+v", s.Blocks)
	}
}

func TestShrinkFloorsAtMinimumLength(t *testing.T) {
	cases := []struct {
		name   string
		blocks []Segment
		amount int
		want   int
	}{
		{"floor from five", []Segment{{Dir: Up, Len: 2}, {Dir: Left, Len: 3}}, 10, 3},
		{"partial tail", []Segment{{Dir: Up, Len: 10}, {Dir: Left, Len: 10}}, 4, 16},
		{"exact tail segment", []Segment{{Dir: Up, Len: 5}, {Dir: Left, Len: 4}}, 4, 5},
		{"already minimal", []Segment{{Dir: Up, Len: 3}}, 10, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &AliveSnake{Blocks: append([]Segment(nil), tc.blocks...)}
			s.Shrink(tc.amount, 3)
			if s.Length() != tc.want {
				t.Fatalf("length = %d, want %d (blocks %+v)", s.Length(), tc.want, s.Blocks)
			}
			for _, seg := range s.Blocks {
				if seg.Len <= 0 {
					t.Fatalf("empty segment left behind: %+v", s.Blocks)
				}
			}
		})
	}
}

func TestTrimTailKeepsHeadCell(t *testing.T) {
	s := &AliveSnake{Blocks: []Segment{{Dir: Up, Len: 2}, {Dir: Left, Len: 2}}}
	s.TrimTail(100)
	if len(s.Blocks) != 1 || s.Blocks[0].Len != 1 {
		t.Fatalf("expected a single one-cell segment, got %+v", s.Blocks)
	}
}

func TestSegmentJSON(t *testing.T) {
	b, err := json.Marshal(Segment{Dir: Right, Len: 4})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `[{"type":"Right"},4]` {
		t.Fatalf("unexpected encoding %s", b)
	}
	var seg Segment
	if err := json.Unmarshal(b, &seg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if seg != (Segment{Dir: Right, Len: 4}) {
		t.Fatalf("round trip mismatch: %+v", seg)
	}
}
