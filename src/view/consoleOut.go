package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"

	"lifegrid/src/runner"
)

//clearScreen moves the cursor home and erases the display
const clearScreen = "\033[H\033[2J"

//ConsoleOut prints the generations to the plain terminal
//in the quiet mode only the progress lines are printed
type ConsoleOut struct {
	out       io.Writer
	au        aurora.Aurora
	glyphs    Glyphs
	width     int
	height    int
	quiet     bool
	startTime time.Time
}

//NewConsoleOut creates the viewer drawing at most width x height cells
func NewConsoleOut(out io.Writer, width int, height int, g Glyphs, colors bool, quiet bool) *ConsoleOut {
	au := aurora.NewAurora(colors)
	return &ConsoleOut{
		out:       out,
		au:        au,
		glyphs:    Glyphs{Live: au.Green(g.Live).Bold().String(), Dead: au.Faint(g.Dead).String()},
		width:     width,
		height:    height,
		quiet:     quiet,
		startTime: time.Now(),
	}
}

func (c *ConsoleOut) Refresh(f runner.Frame) {
	if c.quiet {
		c.progress(f)
		return
	}
	var b strings.Builder
	//the seed generation is drawn below the shell prompt
	if f.Status.Generation > 0 {
		b.WriteString(clearScreen)
	}
	w, h := viewport(f.Bounds, c.width, c.height)
	for _, l := range Render(f.Cells, w, h, c.glyphs) {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString(c.statusLine(f))
	b.WriteByte('\n')
	_, _ = fmt.Fprint(c.out, b.String())
}

func (c *ConsoleOut) progress(f runner.Frame) {
	st := f.Status
	switch {
	case f.Mode == runner.RunningStateFinished:
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		_, _ = fmt.Fprintf(c.out, "Finished, iteration is: %v, live cells: %v, total running time: %v\n",
			st.Generation, st.LiveCells, totalTime)
	case st.Generation == 0:
		_, _ = fmt.Fprintf(c.out, "\"The Life\" game simulation started, rule %v, live cells: %v\n", f.Rule, st.LiveCells)
	case st.Generation%10 == 0:
		_, _ = fmt.Fprintf(c.out, "  Iterations done: %v, live cells: %v\n", st.Generation, st.LiveCells)
	}
}

func (c *ConsoleOut) statusLine(f runner.Frame) string {
	return fmt.Sprintf("%s: %v  %s: %v  %s: %v  %s: %v",
		c.au.Cyan("Step"), f.Status.Generation,
		c.au.Cyan("Live"), f.Status.LiveCells,
		c.au.Cyan("Rule"), f.Rule,
		c.au.Cyan("Mode"), f.Mode)
}

func (c *ConsoleOut) Message(text string) {
	_, _ = fmt.Fprintln(c.out, c.au.Yellow(text))
}
