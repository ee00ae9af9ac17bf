package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lifegrid/src/universe"
)

//ErrUnknownCommand is returned by ParseCommand for unrecognized input
var ErrUnknownCommand = errors.New("unknown command")

//Op is the kind of the command
type Op int

const (
	OpQuit Op = iota
	OpSnapshot
	OpContinue
	OpPause
	OpStep
	OpClear
	OpRandom
	OpToggle
)

var opNames = map[Op]string{
	OpQuit:     "quit",
	OpSnapshot: "snapshot",
	OpContinue: "continue",
	OpPause:    "pause",
	OpStep:     "step",
	OpClear:    "clear",
	OpRandom:   "random",
	OpToggle:   "toggle",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

//Command is the request from the command source to the runner
//Cell is used by OpToggle only
type Command struct {
	Op   Op
	Cell universe.Cell
}

var (
	CmdQuit     = Command{Op: OpQuit}
	CmdSnapshot = Command{Op: OpSnapshot}
	CmdContinue = Command{Op: OpContinue}
	CmdPause    = Command{Op: OpPause}
	CmdStep     = Command{Op: OpStep}
	CmdClear    = Command{Op: OpClear}
	CmdRandom   = Command{Op: OpRandom}
)

//Toggle inverses the cell state
func Toggle(c universe.Cell) Command {
	return Command{Op: OpToggle, Cell: c}
}

func (c Command) String() string {
	if c.Op == OpToggle {
		return fmt.Sprintf("toggle (%d,%d)", c.Cell.X, c.Cell.Y)
	}
	return c.Op.String()
}

//CommandHelp lists the accepted commands
const CommandHelp = "quit|snapshot|continue|pause|step|clear|random|toggle X Y"

//ParseCommand parses the command name or its short alias, case insensitive
func ParseCommand(text string) (Command, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	if f := strings.Fields(t); len(f) > 0 && (f[0] == "toggle" || f[0] == "t") {
		return parseToggle(f[1:])
	}
	switch t {
	case "quit", "q", "exit":
		return CmdQuit, nil
	case "snapshot", "s", "save":
		return CmdSnapshot, nil
	case "continue", "c", "run":
		return CmdContinue, nil
	case "pause", "p", "stop":
		return CmdPause, nil
	case "step", "n", "next":
		return CmdStep, nil
	case "clear", "x":
		return CmdClear, nil
	case "random", "w":
		return CmdRandom, nil
	}
	return Command{}, fmt.Errorf("%w %q, expected one of %s", ErrUnknownCommand, t, CommandHelp)
}

func parseToggle(args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, fmt.Errorf("%w: toggle expects the X and Y coordinates", ErrUnknownCommand)
	}
	x, errX := strconv.Atoi(args[0])
	y, errY := strconv.Atoi(args[1])
	if errX != nil || errY != nil {
		return Command{}, fmt.Errorf("%w: toggle coordinates %q %q are not integers", ErrUnknownCommand, args[0], args[1])
	}
	return Toggle(universe.Cell{X: x, Y: y}), nil
}

//ReadCommands reads one command per line from r and sends them to out
//unknown commands are passed to report and reading continues
//out is closed when r is exhausted or ctx is done
func ReadCommands(ctx context.Context, r io.Reader, out chan<- Command, report func(msg string)) error {
	defer close(out)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			report(err.Error())
			continue
		}
		select {
		case out <- cmd:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return sc.Err()
}
