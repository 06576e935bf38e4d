// Package viz renders a syntax tree as a PNG image.
package viz

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"minijavac/pkg/compiler"
)

const (
	charW   = 7 // basicfont.Face7x13 advance
	lineH   = 13
	padX    = 4
	padY    = 3
	gapX    = 10
	levelH  = 48
	margin  = 12
	maxText = 28
)

var (
	background = color.RGBA{0xFF, 0xF1, 0xE8, 0xFF}
	boxFill    = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	boxEdge    = color.RGBA{0x1D, 0x2B, 0x53, 0xFF}
	edgeColor  = color.RGBA{0x5F, 0x57, 0x4F, 0xFF}
	textColor  = color.RGBA{0x00, 0x00, 0x00, 0xFF}
)

// box is one laid-out node.
type box struct {
	label    string
	x, y     int // top-left
	w, h     int
	children []*box
}

func (b *box) centerX() int { return b.x + b.w/2 }

// layout positions every node of root. Leaves are placed left to right;
// each parent is centered over its children, and a subtree is pushed right
// whenever a node would overlap its left neighbour on the same level.
func layout(root compiler.Node) (*box, image.Rectangle) {
	nextX := margin
	right := map[int]int{} // first free x on each level

	var mark func(b *box)
	mark = func(b *box) {
		if end := b.x + b.w + gapX; end > right[b.y] {
			right[b.y] = end
		}
		for _, c := range b.children {
			mark(c)
		}
	}

	var build func(n compiler.Node, depth int) *box
	build = func(n compiler.Node, depth int) *box {
		label := compiler.Label(n)
		if len(label) > maxText {
			label = label[:maxText-1] + "~"
		}
		b := &box{
			label: label,
			y:     margin + depth*levelH,
			w:     len(label)*charW + 2*padX,
			h:     lineH + 2*padY,
		}
		for _, c := range compiler.Children(n) {
			b.children = append(b.children, build(c, depth+1))
		}
		if len(b.children) == 0 {
			b.x = max(nextX, right[b.y], margin)
			nextX = b.x + b.w + gapX
		} else {
			first, last := b.children[0], b.children[len(b.children)-1]
			b.x = (first.centerX()+last.centerX())/2 - b.w/2
			if low := max(right[b.y], margin); b.x < low {
				shift(b, low-b.x)
			}
			if end := b.x + b.w + gapX; end > nextX {
				nextX = end
			}
		}
		mark(b)
		return b
	}
	tree := build(root, 0)

	bounds := image.Rect(0, 0, margin, margin)
	var grow func(b *box)
	grow = func(b *box) {
		bounds = bounds.Union(image.Rect(b.x, b.y, b.x+b.w+margin, b.y+b.h+margin))
		for _, c := range b.children {
			grow(c)
		}
	}
	grow(tree)
	return tree, bounds
}

// shift moves b and its subtree right by dx.
func shift(b *box, dx int) {
	b.x += dx
	for _, c := range b.children {
		shift(c, dx)
	}
}

// Render draws the tree of root onto a new image.
func Render(root compiler.Node) *image.RGBA {
	tree, bounds := layout(root)
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, image.NewUniform(background), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(textColor), Face: basicfont.Face7x13}
	var paint func(b *box)
	paint = func(b *box) {
		for _, c := range b.children {
			line(img, b.centerX(), b.y+b.h, c.centerX(), c.y, edgeColor)
			paint(c)
		}
		rect := image.Rect(b.x, b.y, b.x+b.w, b.y+b.h)
		draw.Draw(img, rect, image.NewUniform(boxFill), image.Point{}, draw.Src)
		outline(img, rect, boxEdge)
		d.Dot = fixed.P(b.x+padX, b.y+padY+basicfont.Face7x13.Ascent)
		d.DrawString(b.label)
	}
	paint(tree)
	return img
}

// WritePNG renders root and encodes it to w.
func WritePNG(w io.Writer, root compiler.Node) error {
	return png.Encode(w, Render(root))
}

func outline(img *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// line draws with Bresenham's algorithm.
func line(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
