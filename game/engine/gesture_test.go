package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newGestureFixture(n int) (*PuzzleState, *Layout, *GestureController) {
	config := createTestConfig()
	layout := NewLayout(config)
	state := NewPuzzleState(config.PegCount)
	if err := state.Reset(n); err != nil {
		panic(err)
	}
	layout.Arrange(state)
	return state, layout, NewGestureController(state, layout)
}

func TestLayoutGeometry(t *testing.T) {
	layout := NewLayout(createTestConfig())

	if diff := cmp.Diff([]float64{200, 400, 600}, layout.PegX); diff != "" {
		t.Errorf("peg anchors mismatch (-want +got):\n%s", diff)
	}

	widths := []float64{layout.DiskWidth(0, 3), layout.DiskWidth(1, 3), layout.DiskWidth(2, 3)}
	if diff := cmp.Diff([]float64{60, 150, 240}, widths); diff != "" {
		t.Errorf("disk widths mismatch (-want +got):\n%s", diff)
	}
	if w := layout.DiskWidth(0, 1); w != 60 {
		t.Errorf("single disk width = %v, want 60", w)
	}
	if y := layout.RestingY(0); y != 378 {
		t.Errorf("RestingY(0) = %v, want 378", y)
	}
}

func TestLayoutNearestPeg(t *testing.T) {
	layout := NewLayout(createTestConfig())
	tests := map[float64]int{
		0:    0,
		199:  0,
		300:  0, // tie between 0 and 1
		301:  1,
		500:  1, // tie between 1 and 2
		650:  2,
		1000: 2,
	}
	for x, want := range tests {
		if got := layout.NearestPeg(x); got != want {
			t.Errorf("NearestPeg(%v) = %d, want %d", x, got, want)
		}
	}
}

func TestLayoutHitTolerance(t *testing.T) {
	layout := NewLayout(createTestConfig())
	d := &Disk{Size: 0, Width: 60, X: 200, Y: 334}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 200, 320, true},
		{"right tolerance edge", 260, 334, true},
		{"past right tolerance", 261, 334, false},
		{"left tolerance edge", 140, 334, true},
		{"below within tolerance", 200, 364, true},
		{"below past tolerance", 200, 365, false},
		{"top edge", 200, 312, true},
		{"above the disk", 200, 311, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := layout.Hit(d, tt.x, tt.y); got != tt.want {
				t.Errorf("Hit(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestGestureDragToEmptyPeg(t *testing.T) {
	state, layout, g := newGestureFixture(3)

	grabbed, err := g.PointerDown(200, 320)
	if err != nil || !grabbed {
		t.Fatalf("expected to grab the top disk, grabbed=%v err=%v", grabbed, err)
	}
	session := g.Session()
	if session.Origin != 0 || session.Disk.Size != 0 {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.OffsetX != 0 || session.OffsetY != -14 {
		t.Errorf("offset = (%v, %v), want (0, -14)", session.OffsetX, session.OffsetY)
	}

	if !g.PointerMove(390, 250) {
		t.Fatal("PointerMove should follow an active drag")
	}
	if session.Disk.X != 390 || session.Disk.Y != 264 {
		t.Errorf("dragged disk at (%v, %v), want (390, 264)", session.Disk.X, session.Disk.Y)
	}

	result, err := g.PointerUp(390, 250)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Committed || result.To != 1 {
		t.Errorf("expected committed drop on peg 1, got %+v", result)
	}
	if state.MoveCount != 1 {
		t.Errorf("expected move count 1, got %d", state.MoveCount)
	}
	if g.Active() {
		t.Error("drag session should be cleared after drop")
	}

	top := state.TopOf(1)
	if top.X != layout.PegX[1] || top.Y != layout.RestingY(0) {
		t.Errorf("dropped disk not snapped to rest: (%v, %v)", top.X, top.Y)
	}
	if len(state.History) != 1 || state.History[0].Origin != OriginDrag {
		t.Errorf("expected one drag history record, got %+v", state.History)
	}
}

func TestGestureIllegalDropReverts(t *testing.T) {
	state, _, g := newGestureFixture(3)

	// smallest disk to peg 1
	_, _ = g.PointerDown(200, 320)
	_, _ = g.PointerUp(400, 320)

	before := copyState(state)

	grabbed, _ := g.PointerDown(200, 345)
	if !grabbed {
		t.Fatal("expected to grab the middle disk")
	}
	g.PointerMove(400, 300)
	result, err := g.PointerUp(400, 300)
	if err != nil {
		t.Fatal(err)
	}

	if result.Committed {
		t.Error("larger disk onto smaller must not commit")
	}
	if diff := cmp.Diff(before, state, cmpopts.IgnoreUnexported(PuzzleState{}), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("illegal drop changed the puzzle (-want +got):\n%s", diff)
	}
	if state.InFlight() != nil {
		t.Error("reverted disk still in flight")
	}
}

func TestGestureDropOnOriginCounts(t *testing.T) {
	state, layout, g := newGestureFixture(2)

	_, _ = g.PointerDown(200, 340)
	result, err := g.PointerUp(210, 340)
	if err != nil {
		t.Fatal(err)
	}

	want := DropResult{Handled: true, Committed: true, Disk: 0, From: 0, To: 0}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("drop on origin result mismatch (-want +got):\n%s", diff)
	}
	if state.MoveCount != 1 || len(state.History) != 1 {
		t.Errorf("drop on origin should count, moves=%d history=%d", state.MoveCount, len(state.History))
	}
	if diff := cmp.Diff([][]int{{1, 0}, nil, nil}, state.Sizes(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("pegs mismatch (-want +got):\n%s", diff)
	}
	top := state.TopOf(0)
	if top.X != layout.PegX[0] || top.Y != layout.RestingY(1) {
		t.Errorf("disk not back at rest: (%v, %v)", top.X, top.Y)
	}
}

func TestGestureNoOps(t *testing.T) {
	state, _, g := newGestureFixture(3)

	result, err := g.PointerUp(400, 300)
	if err != nil || result.Handled {
		t.Errorf("pointer up without a drag should be a no-op, got %+v %v", result, err)
	}
	if g.PointerMove(10, 10) {
		t.Error("pointer move without a drag should be a no-op")
	}

	grabbed, err := g.PointerDown(600, 300)
	if err != nil || grabbed {
		t.Errorf("pointer down on an empty peg should grab nothing, grabbed=%v err=%v", grabbed, err)
	}

	// bottom disk is covered by the smaller ones
	grabbed, _ = g.PointerDown(200, 395)
	if grabbed {
		t.Error("only top disks may be grabbed")
	}
	if state.InFlight() != nil {
		t.Error("no disk should be in flight")
	}
}

func TestGestureCancel(t *testing.T) {
	state, _, g := newGestureFixture(3)
	before := state.Sizes()

	_, _ = g.PointerDown(200, 320)
	if err := g.Cancel(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, state.Sizes()); diff != "" {
		t.Errorf("cancel changed pegs (-want +got):\n%s", diff)
	}
	if err := state.Validate(); err != nil {
		t.Error(err)
	}
}
