//Package terminal detects the size of the controlling terminal
package terminal

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

//SizeProvider returns the terminal dimensions in characters
type SizeProvider interface {
	Size() (rows int, cols int, err error)
}

//Fixed is the provider with the predefined size
type Fixed struct {
	Rows int
	Cols int
}

func (f Fixed) Size() (int, int, error) {
	return f.Rows, f.Cols, nil
}

//Stty asks `stty size` about the terminal attached to stdin
type Stty struct{}

func (Stty) Size() (int, int, error) {
	cmd := exec.Command("stty", "size")
	cmd.Stdin = os.Stdin
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("running stty: %w", err)
	}
	return ParseSttySize(string(out))
}

//ParseSttySize parses the "rows cols" output of stty
func ParseSttySize(out string) (rows int, cols int, err error) {
	f := strings.Fields(out)
	if len(f) != 2 {
		return 0, 0, fmt.Errorf("unexpected stty output %q", out)
	}
	if rows, err = strconv.Atoi(f[0]); err != nil {
		return 0, 0, fmt.Errorf("parsing rows: %w", err)
	}
	if cols, err = strconv.Atoi(f[1]); err != nil {
		return 0, 0, fmt.Errorf("parsing columns: %w", err)
	}
	return rows, cols, nil
}

//Env reads the LINES and COLUMNS variables exported by most shells
type Env struct{}

func (Env) Size() (int, int, error) {
	rows, err := strconv.Atoi(os.Getenv("LINES"))
	if err != nil {
		return 0, 0, fmt.Errorf("parsing LINES: %w", err)
	}
	cols, err := strconv.Atoi(os.Getenv("COLUMNS"))
	if err != nil {
		return 0, 0, fmt.Errorf("parsing COLUMNS: %w", err)
	}
	return rows, cols, nil
}

//Chain returns the size from the first provider that succeeds
type Chain []SizeProvider

func (c Chain) Size() (rows int, cols int, err error) {
	err = fmt.Errorf("no size provider")
	for _, p := range c {
		if rows, cols, err = p.Size(); err == nil && rows > 0 && cols > 0 {
			return rows, cols, nil
		}
	}
	if err == nil {
		err = fmt.Errorf("terminal size %dx%d is empty", cols, rows)
	}
	return 0, 0, err
}
