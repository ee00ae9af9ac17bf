//Package seed converts between live cell sets and the flat text pattern format
//
//Line index is the row (y), character index inside the line is the column (x).
//'*' marks a live cell, any other character is a dead one.
package seed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lifegrid/src/universe"
)

const (
	AliveGlyph = '*'
	DeadGlyph  = ' '

	//SnapshotSuffix is appended to the timestamp to build the snapshot file name
	SnapshotSuffix = "_seed.txt"
	//SnapshotTimeLayout is the timestamp layout of the snapshot file name
	SnapshotTimeLayout = "20060102-150405"
)

var (
	ErrSeedUnreadable      = errors.New("seed is unreadable")
	ErrSnapshotWriteFailed = errors.New("snapshot write failed")
)

//Decode builds the live set from the text lines
//no bounds are enforced, cells outside any grid are kept
func Decode(lines []string) universe.LiveSet {
	s := universe.NewLiveSet()
	for y, line := range lines {
		x := 0
		for _, r := range line {
			if r == AliveGlyph {
				s.Add(universe.Cell{X: x, Y: y})
			}
			x++
		}
	}
	return s
}

//Read decodes the pattern from r, the line length is not limited
func Read(r io.Reader) (universe.LiveSet, error) {
	var lines []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return universe.LiveSet{}, fmt.Errorf("%w: %w", ErrSeedUnreadable, err)
		}
	}
	return Decode(lines), nil
}

//Load decodes the pattern file
func Load(path string) (universe.LiveSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return universe.LiveSet{}, fmt.Errorf("%w: %w", ErrSeedUnreadable, err)
	}
	defer f.Close()
	s, err := Read(f)
	if err != nil {
		return universe.LiveSet{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return s, nil
}

//Encode renders the set into height lines of width columns
//cells outside [0,width)x[0,height) are not rendered and returned as dropped
//trailing dead glyphs are trimmed from every line
func Encode(s universe.LiveSet, width int, height int) (lines []string, dropped []universe.Cell) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	grid := make([][]byte, height)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(string(DeadGlyph), width))
	}
	for _, c := range s.Cells() {
		if c.X < 0 || c.Y < 0 || c.X >= width || c.Y >= height {
			dropped = append(dropped, c)
			continue
		}
		grid[c.Y][c.X] = AliveGlyph
	}
	lines = make([]string, height)
	for y, row := range grid {
		lines[y] = strings.TrimRight(string(row), string(DeadGlyph))
	}
	return lines, dropped
}

//Write encodes the set to w, one line per row
func Write(w io.Writer, s universe.LiveSet, width int, height int) ([]universe.Cell, error) {
	lines, dropped := Encode(s, width, height)
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return dropped, fmt.Errorf("%w: %w", ErrSnapshotWriteFailed, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return dropped, fmt.Errorf("%w: %w", ErrSnapshotWriteFailed, err)
	}
	return dropped, nil
}

//SnapshotName returns the file name of the snapshot taken at now
func SnapshotName(now time.Time) string {
	return now.Format(SnapshotTimeLayout) + SnapshotSuffix
}

//Snapshot writes the set to a new timestamped file inside dir
func Snapshot(dir string, s universe.LiveSet, width int, height int, now time.Time) (path string, dropped []universe.Cell, err error) {
	path = filepath.Join(dir, SnapshotName(now))
	f, err := os.Create(path)
	if err != nil {
		return path, nil, fmt.Errorf("%w: %w", ErrSnapshotWriteFailed, err)
	}
	dropped, err = Write(f, s, width, height)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("%w: %w", ErrSnapshotWriteFailed, cerr)
	}
	return path, dropped, err
}
