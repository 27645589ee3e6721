package term

// grid is the console area: the characters written by the machine,
// laid out like a glass teletype.
type grid struct {
	w, h  int
	cells [][]rune
	x, y  int
}

func newGrid(w, h int) *grid {
	g := &grid{}
	g.resize(w, h)
	return g
}

func blankRow(w int) []rune {
	r := make([]rune, w)
	for i := range r {
		r[i] = ' '
	}
	return r
}

// put writes b at the cursor and reports whether the grid scrolled.
func (g *grid) put(b byte) (scrolled bool) {
	switch b {
	case '\r':
		g.x = 0
	case '\n':
		scrolled = g.lineFeed()
	default:
		if g.x >= g.w {
			g.x = 0
			scrolled = g.lineFeed()
		}
		g.cells[g.y][g.x] = rune(b)
		g.x++
	}
	return scrolled
}

func (g *grid) lineFeed() bool {
	if g.y < g.h-1 {
		g.y++
		return false
	}
	copy(g.cells, g.cells[1:])
	g.cells[g.h-1] = blankRow(g.w)
	return true
}

// cursor returns the position at which the terminal cursor is shown.
func (g *grid) cursor() (int, int) {
	if g.x >= g.w {
		return g.w - 1, g.y
	}
	return g.x, g.y
}

// resize keeps the rows up to and including the cursor row, dropping rows
// from the top when the grid shrinks.
func (g *grid) resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = blankRow(w)
	}
	skip := 0
	if g.y >= h {
		skip = g.y - h + 1
	}
	for i := skip; i < len(g.cells) && i-skip < h; i++ {
		copy(cells[i-skip], g.cells[i])
	}
	g.y -= skip
	if g.x > w {
		g.x = w
	}
	g.w, g.h, g.cells = w, h, cells
}

func (g *grid) String() string {
	var b []rune
	for i, row := range g.cells {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, row...)
	}
	return string(b)
}
