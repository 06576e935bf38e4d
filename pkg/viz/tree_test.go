package viz

import (
	"bytes"
	"image/png"
	"testing"

	"minijavac/pkg/compiler"
)

const src = `class Main {
  public static void main(String[] a) {
    int x;
    x = 1 + 2;
    System.out.println(x);
  }
}`

func parse(t *testing.T) *compiler.Program {
	t.Helper()
	tokens, lexErrs := compiler.Lex(src)
	if len(lexErrs) > 0 {
		t.Fatalf("Lex failed: %v", lexErrs)
	}
	prog, err := compiler.Parse(tokens, src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return prog
}

func TestLayoutNoOverlapAtDepth(t *testing.T) {
	root, bounds := layout(parse(t))

	byDepth := map[int][]*box{}
	var walk func(b *box)
	walk = func(b *box) {
		byDepth[b.y] = append(byDepth[b.y], b)
		if b.x < 0 || b.x+b.w > bounds.Max.X || b.y+b.h > bounds.Max.Y {
			t.Errorf("box %q outside bounds %v", b.label, bounds)
		}
		for _, c := range b.children {
			if c.y <= b.y {
				t.Errorf("child %q not below parent %q", c.label, b.label)
			}
			walk(c)
		}
	}
	walk(root)

	for y, row := range byDepth {
		for i := 1; i < len(row); i++ {
			if row[i].x < row[i-1].x+row[i-1].w {
				t.Errorf("boxes %q and %q overlap at y=%d", row[i-1].label, row[i].label, y)
			}
		}
	}
}

func TestLayoutCountsEveryNode(t *testing.T) {
	prog := parse(t)
	root, _ := layout(prog)
	n := 0
	var count func(b *box)
	count = func(b *box) {
		n++
		for _, c := range b.children {
			count(c)
		}
	}
	count(root)
	if want := compiler.CountNodes(prog); n != want {
		t.Errorf("laid out %d boxes, want %d", n, want)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, parse(t)); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() < 100 || b.Dy() < levelH {
		t.Errorf("image too small: %v", b)
	}
}

func TestLongLabelsAreClipped(t *testing.T) {
	root, _ := layout(&compiler.VarRef{Name: "aVeryLongVariableNameThatKeepsGoing"})
	if len(root.label) != maxText {
		t.Errorf("label length = %d, want %d", len(root.label), maxText)
	}
}
