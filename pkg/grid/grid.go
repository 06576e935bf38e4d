// Package grid maps text onto a fixed character grid for the desktop viewer.
package grid

// GetGridCoords returns the column and row of cell index in a grid cols wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Wrap hard-wraps every line to at most cols runes. Empty lines are kept.
func Wrap(lines []string, cols int) []string {
	if cols <= 0 {
		return lines
	}
	var out []string
	for _, l := range lines {
		r := []rune(l)
		if len(r) == 0 {
			out = append(out, "")
			continue
		}
		for len(r) > cols {
			out = append(out, string(r[:cols]))
			r = r[cols:]
		}
		out = append(out, string(r))
	}
	return out
}

// Window returns at most rows lines starting at top, with top clamped so
// the window never runs past the end. It also returns the clamped top.
func Window(lines []string, top, rows int) ([]string, int) {
	if rows <= 0 || len(lines) == 0 {
		return nil, 0
	}
	top = min(top, len(lines)-rows)
	top = max(top, 0)
	end := min(top+rows, len(lines))
	return lines[top:end], top
}
