package view

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"lifegrid/src/runner"
)

const (
	leftColumnWidth = 28
	minWindowHeight = 20
	headerHeight    = 3
	footerHeight    = 5

	fieldView  = "battlefield"
	promptView = "command"
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//ConsoleUI is the interactive terminal viewer
//the key presses are converted into runner commands
type ConsoleUI struct {
	g          *gocui.Gui
	k          []keyBindings
	cmds       chan<- runner.Command
	latest     latestFrame
	frame      runner.Frame
	hasFrame   bool
	prompt     bool
	message    string
	liveFiller string
	deadFiller string
	closeOnce  sync.Once
}

var runningStateDescr = map[runner.RunningState]string{
	runner.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
	runner.RunningStateStep:     "do the step",
	runner.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
	runner.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
}

//NewConsoleUI takes over the terminal, commands are sent to cmds
func NewConsoleUI(cmds chan<- runner.Command, g Glyphs) (*ConsoleUI, error) {
	var err error
	t := ConsoleUI{
		cmds:       cmds,
		liveFiller: aurora.Green(g.Live).BgBrightGreen().String(),
		deadFiller: g.Dead,
	}

	t.g, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("creating terminal ui: %w", err)
	}

	t.k = t.bindings()
	t.g.SetManagerFunc(t.layout)

	if err := t.initKeyBindings(t.k); err != nil {
		t.g.Close()
		return nil, err
	}
	return &t, nil
}

//bindings returns the key table
//letter keys belong to the field view, so they are typed into the prompt while it is open
func (t *ConsoleUI) bindings() []keyBindings {
	return []keyBindings{
		{gocui.KeyCtrlC, "^C", "Exit", t.cmdQuit, ""},
		{'q', "Q", "Quit", t.onRune('q', t.cmdQuit), fieldView},
		{'n', "N", "Next step", t.onRune('n', t.cmdSend(runner.CmdStep)), fieldView},
		{'c', "C", "Continue", t.onRune('c', t.cmdSend(runner.CmdContinue)), fieldView},
		{'p', "P", "Pause", t.onRune('p', t.cmdSend(runner.CmdPause)), fieldView},
		{'s', "S", "Snapshot", t.onRune('s', t.cmdSend(runner.CmdSnapshot)), fieldView},
		{'x', "X", "Clear", t.onRune('x', t.cmdSend(runner.CmdClear)), fieldView},
		{'w', "W", "Settle with random", t.onRune('w', t.cmdSend(runner.CmdRandom)), fieldView},
		{':', ":", "Command", t.onRune(':', t.cmdPrompt), fieldView},
		{gocui.KeyEnter, "", "", t.cmdEnter, promptView},
		{gocui.KeyEsc, "", "", t.cmdClosePrompt, promptView},
	}
}

//onRune runs h for the field key, while the prompt is open the rune goes to the prompt instead
func (t *ConsoleUI) onRune(ch rune, h func(v *gocui.View) error) func(v *gocui.View) error {
	return func(v *gocui.View) error {
		if t.prompt {
			if v != nil && v.Name() == promptView {
				v.EditWrite(ch)
			}
			return nil
		}
		return h(v)
	}
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) error {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			return fmt.Errorf("binding %s: %w", kb.name, err)
		}
	}
	return nil
}

//Size returns the dimensions of the battle field view
//it implements terminal.SizeProvider
func (t *ConsoleUI) Size() (rows int, cols int, err error) {
	maxX, maxY := t.g.Size()
	if maxY < minWindowHeight {
		return 0, 0, fmt.Errorf("terminal height %d is too small, at least %d rows needed", maxY, minWindowHeight)
	}
	x0, y0, x1, y1 := fieldRect(maxX, maxY)
	return y1 - y0 - 1, x1 - x0 - 1, nil
}

func fieldRect(maxX int, maxY int) (x0, y0, x1, y1 int) {
	return leftColumnWidth + 1, headerHeight, maxX - 1, maxY - footerHeight
}

//Start runs the ui main loop, returns when the user quits
func (t *ConsoleUI) Start() error {
	defer t.Close()
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

//Close gives the terminal back, it is safe to call more than once
func (t *ConsoleUI) Close() {
	t.closeOnce.Do(t.g.Close)
}

//Refresh is called from the runner goroutine, drawing is moved to the ui goroutine
//frames arriving before the previous one is drawn replace it
func (t *ConsoleUI) Refresh(f runner.Frame) {
	if !t.latest.put(f) {
		return
	}
	t.g.Update(func(g *gocui.Gui) error {
		t.frame = t.latest.take()
		t.hasFrame = true
		t.renderField(g)
		t.renderConfiguration(g)
		t.renderStatus(g)
		return nil
	})
}

func (t *ConsoleUI) Message(text string) {
	t.g.Update(func(g *gocui.Gui) error {
		t.message = text
		t.renderMessage(g)
		return nil
	})
}

func (t *ConsoleUI) renderField(g *gocui.Gui) {
	v, e := g.View(fieldView)
	if e != nil || !t.hasFrame {
		return
	}
	//the entire field is redrawing at once
	v.Clear()
	maxW, maxH := v.Size()
	w, h := viewport(t.frame.Bounds, maxW, maxH)
	lines := Render(t.frame.Cells, w, h, Glyphs{Live: t.liveFiller, Dead: t.deadFiller})
	_, _ = fmt.Fprint(v, strings.Join(lines, "\n"))
}

func (t *ConsoleUI) renderStatus(g *gocui.Gui) {
	v, e := g.View("status")
	if e != nil || !t.hasFrame {
		return
	}
	s := t.frame.Status
	v.Clear()
	_, _ = fmt.Fprintln(v, t.renderProp("Step", "%v", s.Generation))
	_, _ = fmt.Fprintln(v, t.renderProp("Live Cells", "%v", s.LiveCells))
	_, _ = fmt.Fprintln(v, t.renderProp("Born / Died", "%v / %v", s.Born, s.Died))
	_, _ = fmt.Fprintln(v, t.renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
	_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", runningStateDescr[t.frame.Mode]))
}

func (t *ConsoleUI) renderConfiguration(g *gocui.Gui) {
	v, e := g.View("configuration")
	if e != nil || !t.hasFrame {
		return
	}
	f := t.frame
	v.Clear()
	_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v", dimension(f.Bounds.Width, f.Bounds.Height)))
	_, _ = fmt.Fprintln(v, t.renderProp("Rule", "%v", f.Rule))
	_, _ = fmt.Fprintln(v, t.renderProp("Engine", "%v", f.Engine))
	_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", f.Interval))
	if f.MaxSteps > 0 {
		_, _ = fmt.Fprintln(v, t.renderProp("Iterations", "%v steps", f.MaxSteps))
	} else {
		_, _ = fmt.Fprintln(v, t.renderProp("Iterations", "unlimited"))
	}
}

func (t *ConsoleUI) renderMessage(g *gocui.Gui) {
	if v, e := g.View("message"); e == nil {
		v.Clear()
		_, _ = fmt.Fprint(v, aurora.Yellow(t.message).String())
	}
}

func dimension(w int, h int) string {
	axis := func(n int) string {
		if n <= 0 {
			return "∞"
		}
		return fmt.Sprint(n + 1)
	}
	return axis(w) + " x " + axis(h)
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView(fieldView)
		return nil
	}
	if _, err := t.headerLayout(g, headerHeight, "This is \"The Life\" game simulation"); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
	}

	if v, err := g.SetView("configuration", 0, headerHeight, leftColumnWidth, headerHeight+(maxY-footerHeight-headerHeight)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
	}
	t.renderConfiguration(g)

	if v, err := g.SetView("status", 0, headerHeight+(maxY-footerHeight-headerHeight)/2+1, leftColumnWidth, maxY-footerHeight); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
	}
	t.renderStatus(g)

	x0, y0, x1, y1 := fieldRect(maxX, maxY)
	if v, err := g.SetView(fieldView, x0, y0, x1, y1); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Battle Field"
		v.Frame = true
		if !t.prompt {
			if _, err := g.SetCurrentView(fieldView); err != nil {
				return err
			}
		}
	}
	t.renderField(g)

	if v, err := g.SetView("message", -1, maxY-footerHeight, maxX, maxY-footerHeight+2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
	}
	t.renderMessage(g)

	if v, err := g.SetView("help", -1, maxY-footerHeight+1, maxX, maxY-footerHeight+3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		first := true
		for _, k := range t.k {
			if k.name == "" {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		pad := 0
		if maxX > len(text) {
			pad = (maxX - len(text)) / 2
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2)+strings.Repeat(" ", pad)+text)
	}
	return
}

//send passes the command to the runner without blocking the ui loop
func (t *ConsoleUI) send(cmd runner.Command) {
	select {
	case t.cmds <- cmd:
	default:
		t.message = fmt.Sprintf("the simulation is busy, %v is ignored", cmd)
		t.renderMessage(t.g)
	}
}

func (t *ConsoleUI) cmdSend(cmd runner.Command) func(v *gocui.View) error {
	return func(_ *gocui.View) error {
		t.send(cmd)
		return nil
	}
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	t.send(runner.CmdQuit)
	return gocui.ErrQuit
}

//cmdPrompt opens the command line, the typed command is executed on Enter
func (t *ConsoleUI) cmdPrompt(_ *gocui.View) error {
	maxX, maxY := t.g.Size()
	v, err := t.g.SetView(promptView, leftColumnWidth+1, maxY-footerHeight-2, maxX-1, maxY-footerHeight)
	if err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Command (" + runner.CommandHelp + ")"
		v.Editable = true
	}
	t.g.Cursor = true
	t.prompt = true
	_, err = t.g.SetCurrentView(promptView)
	return err
}

func (t *ConsoleUI) cmdEnter(v *gocui.View) error {
	text := strings.TrimSpace(v.Buffer())
	v.Clear()
	_ = v.SetCursor(0, 0)
	if text == "" {
		return nil
	}
	cmd, err := runner.ParseCommand(text)
	if err != nil {
		//keep the prompt open for the next attempt
		t.message = err.Error()
		t.renderMessage(t.g)
		return nil
	}
	if err := t.cmdClosePrompt(v); err != nil {
		return err
	}
	if cmd == runner.CmdQuit {
		return t.cmdQuit(v)
	}
	t.send(cmd)
	return nil
}

func (t *ConsoleUI) cmdClosePrompt(_ *gocui.View) error {
	t.g.Cursor = false
	t.prompt = false
	if err := t.g.DeleteView(promptView); err != nil && err != gocui.ErrUnknownView {
		return err
	}
	//the deleted view stays current otherwise and keeps receiving the prompt keys
	if _, err := t.g.SetCurrentView(fieldView); err != nil && err != gocui.ErrUnknownView {
		return err
	}
	return nil
}

//latestFrame keeps the newest frame until the ui goroutine draws it
type latestFrame struct {
	mu      sync.Mutex
	frame   runner.Frame
	pending bool
}

//put stores the frame, returns true when the draw has to be scheduled
func (l *latestFrame) put(f runner.Frame) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frame = f
	if l.pending {
		return false
	}
	l.pending = true
	return true
}

//take returns the newest frame, the next put schedules a new draw
func (l *latestFrame) take() runner.Frame {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = false
	return l.frame
}
