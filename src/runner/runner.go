//Package runner drives the universe: paces the ticks, executes the commands and refreshes the viewers
//
//All universe calls are made from the goroutine running Loop,
//command sources and viewers only exchange commands and immutable frames with it
package runner

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"lifegrid/src/seed"
	"lifegrid/src/stats"
	"lifegrid/src/universe"
)

//RunningState is the runner state at the concrete moment
type RunningState int

const (
	RunningStateManual   RunningState = 0x0
	RunningStateStep     RunningState = 0x1
	RunningStateRun      RunningState = 0x2
	RunningStateFinished RunningState = 0x3
)

func (s RunningState) String() string {
	switch s {
	case RunningStateManual:
		return "waiting"
	case RunningStateStep:
		return "do the step"
	case RunningStateRun:
		return "running"
	case RunningStateFinished:
		return "finished"
	}
	return fmt.Sprintf("RunningState(%d)", int(s))
}

//Options represents the runner's configurable options
type Options struct {
	Interval       time.Duration
	MaxSteps       int  // 0 = unlimited
	StopWhenStable bool // finish when all cells died or nothing changed
	ExitOnFinish   bool // return from Loop when finished instead of waiting for commands
	StartPaused    bool
	SnapshotDir    string
}

//Frame is the immutable view of the universe passed to the viewers
type Frame struct {
	Status   universe.Status
	Cells    universe.LiveSet
	Bounds   universe.Bounds
	Rule     universe.Rule
	Engine   string
	Mode     RunningState
	Interval time.Duration
	MaxSteps int
}

//Viewer is the interface to any Viewer - the object who can display simulation data
type Viewer interface {
	Refresh(f Frame)
	Message(text string)
}

//Runner owns the universe for the duration of Loop
type Runner struct {
	u        universe.Universe
	options  Options
	logger   *log.Logger
	views    []Viewer
	recorder *stats.Recorder
	summary  stats.Summary
	mode     RunningState
	now      func() time.Time
	rnd      *rand.Rand
}

//New creates the runner for the initialized universe
func New(u universe.Universe, o Options, logger *log.Logger) *Runner {
	return &Runner{
		u:       u,
		options: o,
		logger:  logger,
		mode:    RunningStateManual,
		now:     time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

//RegisterViewer registers the viewer - the runner will call the viewer when the state is changed
func (r *Runner) RegisterViewer(v Viewer) {
	r.views = append(r.views, v)
}

//SetRecorder sets the per-generation stats log
func (r *Runner) SetRecorder(rec *stats.Recorder) {
	r.recorder = rec
}

//Report returns the population statistics collected so far
//it must not be called while Loop is running
func (r *Runner) Report() stats.Report {
	return r.summary.Report()
}

//Mode returns the current running state, it must not be called while Loop is running
func (r *Runner) Mode() RunningState {
	return r.mode
}

//Loop runs the simulation until quit command, ctx cancellation,
//or finish when ExitOnFinish is set
//a closed cmds channel is ignored, the loop continues on its own
func (r *Runner) Loop(ctx context.Context, cmds <-chan Command) error {
	if r.options.StartPaused {
		r.mode = RunningStateManual
	} else {
		r.mode = RunningStateRun
	}
	r.checkFinished()
	r.refresh()

	var ticker <-chan time.Time
	if r.options.Interval > 0 {
		t := time.NewTicker(r.options.Interval)
		defer t.Stop()
		ticker = t.C
	} else {
		//run as fast as possible
		ready := make(chan time.Time)
		close(ready)
		ticker = ready
	}

	for {
		if r.mode == RunningStateFinished && r.options.ExitOnFinish {
			return nil
		}
		var tick <-chan time.Time
		if r.mode == RunningStateRun {
			tick = ticker
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-cmds:
			if !ok {
				cmds = nil
				continue
			}
			if quit := r.dispatch(cmd); quit {
				return nil
			}
		case <-tick:
			r.step()
		}
	}
}

//dispatch executes the command, returns true on quit
func (r *Runner) dispatch(cmd Command) (quit bool) {
	r.logger.Debug("command", "cmd", cmd, "mode", r.mode)
	switch cmd.Op {
	case OpQuit:
		return true
	case OpSnapshot:
		r.snapshot()
	case OpContinue:
		if r.mode == RunningStateManual {
			r.mode = RunningStateRun
		}
	case OpPause:
		if r.mode == RunningStateRun {
			r.mode = RunningStateManual
		}
	case OpStep:
		if r.mode != RunningStateFinished {
			r.mode = RunningStateManual
			r.step()
			return false
		}
	case OpClear:
		r.reset(universe.NewLiveSet())
	case OpRandom:
		r.settleWithRandomData()
	case OpToggle:
		r.toggle(cmd.Cell)
	default:
		r.message(fmt.Sprintf("unsupported command %v", cmd))
	}
	r.refresh()
	return false
}

//step does one tick of the universe
func (r *Runner) step() {
	if r.checkFinished() {
		r.refresh()
		return
	}
	resume := r.mode
	r.mode = RunningStateStep
	r.u.Tick()
	st := r.u.Status()
	r.mode = resume

	r.summary.Add(st)
	if err := r.recorder.Write(st); err != nil {
		r.logger.Warn("stats are not recorded", "err", err)
	}
	if r.options.StopWhenStable && (st.LiveCells == 0 || !st.Changed) {
		r.logger.Info("universe is stable", "generation", st.Generation, "live", st.LiveCells)
		r.mode = RunningStateFinished
	}
	r.checkFinished()
	r.refresh()
}

//checkFinished switches to the finished state when the step limit is reached
func (r *Runner) checkFinished() bool {
	if r.mode == RunningStateFinished {
		return true
	}
	if r.options.MaxSteps > 0 && r.u.Generation() >= r.options.MaxSteps {
		r.logger.Info("max steps reached", "generation", r.u.Generation())
		r.mode = RunningStateFinished
		return true
	}
	return false
}

//reset starts the universe over with the cells, the generation counter is cleared
func (r *Runner) reset(cells universe.LiveSet) {
	if err := r.u.Initialize(cells, r.u.Rule(), r.u.Bounds()); err != nil {
		r.logger.Error("reset failed", "err", err)
		r.message(fmt.Sprintf("reset failed: %v", err))
		return
	}
	r.logger.Info("universe is reset", "live", cells.Len())
	r.reopen()
}

//settleWithRandomData fills the bounded field with random cells
//as many random positions are picked as the field has cells, some of them repeat
func (r *Runner) settleWithRandomData() {
	b := r.u.Bounds()
	if !b.Bounded() {
		r.message("random fill needs a bounded field")
		return
	}
	w, h := b.Width+1, b.Height+1
	cells := universe.NewLiveSet()
	for i := 0; i < w*h; i++ {
		cells.Add(universe.Cell{X: r.rnd.Intn(w), Y: r.rnd.Intn(h)})
	}
	r.reset(cells)
}

//toggle inverses the cell state, cells outside the bounds are ignored
func (r *Runner) toggle(c universe.Cell) {
	if r.u.Bounds().Excludes(c) {
		return
	}
	cells := r.u.LiveCells().Clone()
	if cells.Has(c) {
		cells.Remove(c)
	} else {
		cells.Add(c)
	}
	r.u.Settle(cells)
	r.reopen()
}

//reopen leaves the finished state after the field is edited, the step limit still applies
func (r *Runner) reopen() {
	if r.mode == RunningStateFinished {
		r.mode = RunningStateManual
	}
	r.checkFinished()
}

//snapshot writes the current generation to the snapshot directory
//the failure is reported to the viewers and the simulation continues
func (r *Runner) snapshot() {
	cells := r.u.LiveCells()
	w, h := snapshotSize(r.u.Bounds(), cells)
	path, dropped, err := seed.Snapshot(r.options.SnapshotDir, cells, w, h, r.now())
	if len(dropped) > 0 {
		r.logger.Warn("live cells outside the snapshot area are dropped",
			"count", len(dropped), "width", w, "height", h, "first", dropped[0])
	}
	if err != nil {
		r.logger.Error("snapshot failed", "err", err)
		r.message(fmt.Sprintf("snapshot failed: %v", err))
		return
	}
	r.logger.Info("snapshot saved", "path", path, "generation", r.u.Generation(), "live", cells.Len())
	r.message(fmt.Sprintf("snapshot saved to %s", path))
}

//snapshotSize returns the encoding rectangle:
//the bounds on the bounded axes (the upper limit is inclusive), the extent of the live cells on the unbounded ones
func snapshotSize(b universe.Bounds, cells universe.LiveSet) (w int, h int) {
	if b.Width > 0 {
		w = b.Width + 1
	}
	if b.Height > 0 {
		h = b.Height + 1
	}
	if w > 0 && h > 0 {
		return
	}
	maxX, maxY := 0, 0
	for _, c := range cells.Cells() {
		if c.X+1 > maxX {
			maxX = c.X + 1
		}
		if c.Y+1 > maxY {
			maxY = c.Y + 1
		}
	}
	if w <= 0 {
		w = maxX
	}
	if h <= 0 {
		h = maxY
	}
	return
}

func (r *Runner) frame() Frame {
	return Frame{
		Status:   r.u.Status(),
		Cells:    r.u.LiveCells(),
		Bounds:   r.u.Bounds(),
		Rule:     r.u.Rule(),
		Engine:   r.u.Name(),
		Mode:     r.mode,
		Interval: r.options.Interval,
		MaxSteps: r.options.MaxSteps,
	}
}

//refresh calls Refresh event for all registered views
func (r *Runner) refresh() {
	if len(r.views) == 0 {
		return
	}
	f := r.frame()
	for _, v := range r.views {
		v.Refresh(f)
	}
}

func (r *Runner) message(text string) {
	for _, v := range r.views {
		v.Message(text)
	}
}
