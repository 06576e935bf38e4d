package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"minijavac/pkg/asm"
	"minijavac/pkg/compiler"
	"minijavac/pkg/cpu"
	"minijavac/pkg/grid"
	"minijavac/pkg/utils"
	"minijavac/pkg/viz"
)

const (
	screenW = 640
	screenH = 480

	// ebitenutil debug font cell
	charW = 6
	charH = 16
)

type Game struct {
	panes   []pane
	current int
	scroll  map[int]int

	vm     *cpu.CPU
	prog   *asm.Program
	runErr error

	ast    *image.RGBA
	astImg *ebiten.Image // created on first draw
	panX   int
}

// machinePane and imagePane follow the static panes.
func (g *Game) machinePane() int { return len(g.panes) }
func (g *Game) imagePane() int   { return len(g.panes) + 1 }
func (g *Game) paneCount() int   { return len(g.panes) + 2 }

func (g *Game) title() string {
	switch g.current {
	case g.machinePane():
		return "Machine (space: step, enter: run, r: reset)"
	case g.imagePane():
		return "AST image (arrows, a/d: pan)"
	}
	return g.panes[g.current].title
}

func (g *Game) lines() []string {
	if g.current == g.machinePane() {
		if g.vm == nil {
			return []string{"(nothing to run)"}
		}
		return machineLines(g.vm, g.prog, g.runErr)
	}
	if g.current < len(g.panes) {
		return g.panes[g.current].lines
	}
	return nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) || inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		g.current = (g.current + 1) % g.paneCount()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		g.current = (g.current + g.paneCount() - 1) % g.paneCount()
	}

	step := 0
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		step = 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		step = -1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		step = 20
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		step = -20
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		step -= int(dy) * 3
	}
	g.scroll[g.current] = max(g.scroll[g.current]+step, 0)

	if g.current == g.imagePane() {
		if ebiten.IsKeyPressed(ebiten.KeyA) {
			g.panX = max(g.panX-8, 0)
		}
		if ebiten.IsKeyPressed(ebiten.KeyD) {
			g.panX += 8
		}
	}

	if g.vm != nil && g.current == g.machinePane() {
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeySpace):
			if !g.vm.Halted && g.runErr == nil {
				g.runErr = g.vm.Step()
			}
		case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
			if g.runErr == nil {
				g.runErr = g.vm.Run()
			}
		case inpututil.IsKeyJustPressed(ebiten.KeyR):
			g.vm.Reset()
			g.runErr = nil
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	header := fmt.Sprintf("[%d/%d] %s", g.current+1, g.paneCount(), g.title())
	ebitenutil.DebugPrintAt(screen, header, 0, 0)

	if g.current == g.imagePane() {
		g.drawAST(screen)
		return
	}

	cols, rows := screenW/charW, screenH/charH-1
	lines := grid.Wrap(g.lines(), cols)
	visible, top := grid.Window(lines, g.scroll[g.current], rows)
	g.scroll[g.current] = top
	for i, l := range visible {
		ebitenutil.DebugPrintAt(screen, l, 0, (i+1)*charH)
	}
}

func (g *Game) drawAST(screen *ebiten.Image) {
	if g.ast == nil {
		ebitenutil.DebugPrintAt(screen, "(not parsed)", 0, charH)
		return
	}
	if g.astImg == nil {
		g.astImg = ebiten.NewImageFromImage(g.ast)
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(-g.panX), float64(charH-g.scroll[g.current]*charH))
	screen.DrawImage(g.astImg, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

func newGame(src string, maxSteps int) *Game {
	res, err := compiler.Compile(src, compiler.Options{EmitLLVM: true})
	g := &Game{
		panes:  buildPanes(src, res, err),
		scroll: make(map[int]int),
	}
	if res.LLVM != "" {
		g.panes = append(g.panes, pane{title: "LLVM IR", lines: splitLines(res.LLVM)})
	}
	if res.AST != nil {
		g.ast = viz.Render(res.AST)
	}
	if err == nil {
		g.vm = cpu.NewCPU(cpu.Config{MaxSteps: maxSteps, Output: os.Stdout})
		g.prog = res.Program
		g.runErr = g.vm.Load(res.Program)
	} else {
		// open on the diagnostics
		for i, p := range g.panes {
			if p.title == "Diagnostics" {
				g.current = i
			}
		}
	}
	return g
}

func main() {
	maxSteps := flag.Int("max-steps", cpu.DefaultMaxSteps, "instruction limit for a full run")
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: desktop [flags] <file.java>")
		os.Exit(2)
	}

	fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
	if err != nil {
		log.Fatalf("Bad source path: %v", err)
	}
	sourceBytes, err := os.ReadFile(fullPath)
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	game := newGame(string(sourceBytes), *maxSteps)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenW*2, screenH*2)
	ebiten.SetWindowTitle("minijavac - " + utils.BaseName(fullPath))

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
