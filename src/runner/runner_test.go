package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"lifegrid/src/seed"
	"lifegrid/src/stats"
	"lifegrid/src/universe"
)

type testViewer struct {
	frames   []Frame
	messages []string
}

func (v *testViewer) Refresh(f Frame)     { v.frames = append(v.frames, f) }
func (v *testViewer) Message(text string) { v.messages = append(v.messages, text) }

func (v *testViewer) last() Frame { return v.frames[len(v.frames)-1] }

var blinker = []universe.Cell{{X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}}

func newRunner(t *testing.T, o Options, cells ...universe.Cell) (*Runner, *testViewer) {
	t.Helper()
	u := universe.NewSparseUniverse()
	if err := u.Initialize(universe.NewLiveSet(cells...), universe.DefaultRule, universe.UnboundedGrid); err != nil {
		t.Fatal(err)
	}
	r := New(u, o, log.New(io.Discard))
	v := &testViewer{}
	r.RegisterViewer(v)
	return r, v
}

func commands(cmds ...Command) chan Command {
	ch := make(chan Command, len(cmds))
	for _, c := range cmds {
		ch <- c
	}
	return ch
}

func TestLoopMaxSteps(t *testing.T) {
	r, v := newRunner(t, Options{MaxSteps: 5, ExitOnFinish: true}, blinker...)
	if err := r.Loop(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	f := v.last()
	if f.Status.Generation != 5 || f.Mode != RunningStateFinished {
		t.Fatalf("unexpected last frame %+v", f)
	}
	//blinker has period 2, odd generation is vertical
	if !f.Cells.Has(universe.Cell{X: 2, Y: 1}) || f.Cells.Len() != 3 {
		t.Fatalf("unexpected cells %v", f.Cells.Cells())
	}
	if v.frames[0].Status.Generation != 0 {
		t.Fatalf("first frame is not the seed generation")
	}
	if rep := r.Report(); rep.Generations != 5 || rep.MeanPopulation != 3 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestLoopManualCommands(t *testing.T) {
	dir := t.TempDir()
	r, v := newRunner(t, Options{StartPaused: true, SnapshotDir: dir}, blinker...)
	r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	cmds := commands(CmdStep, CmdStep, CmdStep, CmdSnapshot, CmdQuit)
	if err := r.Loop(context.Background(), cmds); err != nil {
		t.Fatal(err)
	}
	if g := v.last().Status.Generation; g != 3 {
		t.Fatalf("generation %d, expected 3", g)
	}
	if r.Mode() != RunningStateManual {
		t.Fatalf("mode %v, expected manual", r.Mode())
	}

	path := filepath.Join(dir, "20240102-030405_seed.txt")
	if len(v.messages) != 1 || !strings.Contains(v.messages[0], path) {
		t.Fatalf("unexpected messages %q", v.messages)
	}
	saved, err := seed.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	vertical := universe.NewLiveSet(universe.Cell{X: 2, Y: 1}, universe.Cell{X: 2, Y: 2}, universe.Cell{X: 2, Y: 3})
	if !saved.Equal(vertical) {
		t.Fatalf("saved %v, expected %v", saved.Cells(), vertical.Cells())
	}
}

func TestSnapshotFailureKeepsRunning(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")
	r, v := newRunner(t, Options{StartPaused: true, SnapshotDir: dir}, blinker...)

	if err := r.Loop(context.Background(), commands(CmdSnapshot, CmdStep, CmdQuit)); err != nil {
		t.Fatal(err)
	}
	if len(v.messages) != 1 || !strings.Contains(v.messages[0], "snapshot failed") {
		t.Fatalf("unexpected messages %q", v.messages)
	}
	if g := v.last().Status.Generation; g != 1 {
		t.Fatalf("generation %d, expected 1", g)
	}
}

func TestStopWhenStable(t *testing.T) {
	block := []universe.Cell{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 2}}
	r, v := newRunner(t, Options{StopWhenStable: true, ExitOnFinish: true}, block...)
	if err := r.Loop(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if f := v.last(); f.Status.Generation != 1 || f.Mode != RunningStateFinished {
		t.Fatalf("unexpected last frame %+v", f)
	}
}

func TestContinueAfterPause(t *testing.T) {
	r, v := newRunner(t, Options{StartPaused: true, MaxSteps: 4, ExitOnFinish: true}, blinker...)
	if err := r.Loop(context.Background(), commands(CmdPause, CmdContinue)); err != nil {
		t.Fatal(err)
	}
	if g := v.last().Status.Generation; g != 4 {
		t.Fatalf("generation %d, expected 4", g)
	}
}

func TestStepAfterFinish(t *testing.T) {
	r, v := newRunner(t, Options{MaxSteps: 1, StartPaused: true}, blinker...)
	if err := r.Loop(context.Background(), commands(CmdStep, CmdStep, CmdContinue, CmdQuit)); err != nil {
		t.Fatal(err)
	}
	if f := v.last(); f.Status.Generation != 1 || f.Mode != RunningStateFinished {
		t.Fatalf("unexpected last frame %+v", f)
	}
}

func TestLoopContextCancel(t *testing.T) {
	r, _ := newRunner(t, Options{StartPaused: true}, blinker...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Loop(ctx, make(chan Command)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoopRecordsStats(t *testing.T) {
	var b bytes.Buffer
	r, _ := newRunner(t, Options{MaxSteps: 3, ExitOnFinish: true, Interval: time.Millisecond}, blinker...)
	r.SetRecorder(stats.NewRecorder(&b))
	if err := r.Loop(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %q", lines)
	}
	if !strings.HasPrefix(lines[3], "3,3,2,2,") {
		t.Fatalf("unexpected last row %q", lines[3])
	}
}

func TestSnapshotSize(t *testing.T) {
	cells := universe.NewLiveSet(universe.Cell{X: 4, Y: 1}, universe.Cell{X: 0, Y: 7})
	tests := []struct {
		bounds universe.Bounds
		w, h   int
	}{
		{universe.Bounds{Width: 80, Height: 24}, 81, 25},
		{universe.UnboundedGrid, 5, 8},
		{universe.Bounds{Width: 10, Height: universe.Unbounded}, 11, 8},
	}
	for _, tc := range tests {
		if w, h := snapshotSize(tc.bounds, cells); w != tc.w || h != tc.h {
			t.Fatalf("%+v: %dx%d, expected %dx%d", tc.bounds, w, h, tc.w, tc.h)
		}
	}
}

func TestSnapshotDropsReported(t *testing.T) {
	var logs bytes.Buffer
	u := universe.NewSparseUniverse()
	//the seed cell at x=7 is outside the 5x5 bounds and can't be encoded
	cells := universe.NewLiveSet(universe.Cell{X: 1, Y: 1}, universe.Cell{X: 7, Y: 1})
	if err := u.Initialize(cells, universe.DefaultRule, universe.Bounds{Width: 5, Height: 5}); err != nil {
		t.Fatal(err)
	}
	r := New(u, Options{StartPaused: true, SnapshotDir: t.TempDir()}, log.New(&logs))
	if err := r.Loop(context.Background(), commands(CmdSnapshot, CmdQuit)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "dropped") {
		t.Fatalf("dropped cells are not logged: %q", logs.String())
	}
}

func TestToggleCells(t *testing.T) {
	r, v := newRunner(t, Options{StartPaused: true}, blinker...)
	cmds := commands(
		Toggle(universe.Cell{X: 0, Y: 0}),
		Toggle(universe.Cell{X: 1, Y: 2}),
		Toggle(universe.Cell{X: -1, Y: 0}),
		CmdQuit,
	)
	if err := r.Loop(context.Background(), cmds); err != nil {
		t.Fatal(err)
	}
	f := v.last()
	expected := universe.NewLiveSet(universe.Cell{X: 0, Y: 0}, universe.Cell{X: 2, Y: 2}, universe.Cell{X: 3, Y: 2})
	if !f.Cells.Equal(expected) {
		t.Fatalf("cells %v, expected %v", f.Cells.Cells(), expected.Cells())
	}
	//the first frame is not changed by the edits
	if !v.frames[0].Cells.Equal(universe.NewLiveSet(blinker...)) {
		t.Fatalf("seed frame is modified: %v", v.frames[0].Cells.Cells())
	}
}

func TestClearReopensFinished(t *testing.T) {
	r, v := newRunner(t, Options{StartPaused: true, MaxSteps: 1}, blinker...)
	cmds := commands(CmdStep, CmdClear, CmdStep, CmdQuit)
	if err := r.Loop(context.Background(), cmds); err != nil {
		t.Fatal(err)
	}
	f := v.last()
	if f.Status.Generation != 1 || f.Cells.Len() != 0 || f.Mode != RunningStateFinished {
		t.Fatalf("unexpected last frame %+v", f)
	}
	//the frame after clear starts over from the generation 0
	var cleared bool
	for _, fr := range v.frames {
		if fr.Status.Generation == 0 && fr.Cells.Len() == 0 && fr.Mode == RunningStateManual {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("no frame of the cleared universe")
	}
}

func TestRandomFill(t *testing.T) {
	u := universe.NewSparseUniverse()
	bounds := universe.Bounds{Width: 9, Height: 4}
	if err := u.Initialize(universe.NewLiveSet(), universe.DefaultRule, bounds); err != nil {
		t.Fatal(err)
	}
	r := New(u, Options{StartPaused: true}, log.New(io.Discard))
	r.rnd = rand.New(rand.NewSource(1))
	v := &testViewer{}
	r.RegisterViewer(v)
	if err := r.Loop(context.Background(), commands(CmdRandom, CmdQuit)); err != nil {
		t.Fatal(err)
	}
	f := v.last()
	if f.Cells.Len() == 0 || f.Cells.Len() > 50 {
		t.Fatalf("unexpected number of random cells %d", f.Cells.Len())
	}
	for _, c := range f.Cells.Cells() {
		if bounds.Excludes(c) {
			t.Fatalf("random cell %v is outside the field", c)
		}
	}
}

func TestRandomFillNeedsBounds(t *testing.T) {
	r, v := newRunner(t, Options{StartPaused: true}, blinker...)
	if err := r.Loop(context.Background(), commands(CmdRandom, CmdQuit)); err != nil {
		t.Fatal(err)
	}
	if len(v.messages) != 1 || !strings.Contains(v.messages[0], "bounded") {
		t.Fatalf("unexpected messages %q", v.messages)
	}
	if !v.last().Cells.Equal(universe.NewLiveSet(blinker...)) {
		t.Fatalf("cells are changed")
	}
}
