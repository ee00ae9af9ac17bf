package view

import (
	"strings"

	"lifegrid/src/universe"
)

//Glyphs are the strings used to paint the cells
type Glyphs struct {
	Live string
	Dead string
}

//Render maps the live cells onto a grid of height rows and width columns
//cells outside the grid are not painted
func Render(cells universe.LiveSet, width int, height int, g Glyphs) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	rows := make([][]bool, height)
	for y := range rows {
		rows[y] = make([]bool, width)
	}
	for _, c := range cells.Cells() {
		if c.X < 0 || c.Y < 0 || c.X >= width || c.Y >= height {
			continue
		}
		rows[c.Y][c.X] = true
	}
	lines := make([]string, height)
	var b strings.Builder
	for y, row := range rows {
		b.Reset()
		for _, alive := range row {
			if alive {
				b.WriteString(g.Live)
			} else {
				b.WriteString(g.Dead)
			}
		}
		lines[y] = b.String()
	}
	return lines
}

//viewport returns the rendered area: the universe bounds on the bounded axes (upper limit inclusive),
//limited by the available space
func viewport(b universe.Bounds, maxW int, maxH int) (w int, h int) {
	w, h = maxW, maxH
	if b.Width > 0 && b.Width+1 < w {
		w = b.Width + 1
	}
	if b.Height > 0 && b.Height+1 < h {
		h = b.Height + 1
	}
	return
}
