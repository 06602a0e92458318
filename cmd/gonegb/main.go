// Command gonegb runs the emulator against a ROM file, either headless
// under the bubbletea step debugger or live in an ebiten window.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"gonegb/internal/debugger"
	"gonegb/internal/emulator"
)

func main() {
	debug := flag.Bool("debug", false, "launch the step debugger instead of the video window")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gonegb [-debug] <rom>")
		os.Exit(1)
	}

	rom, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "gonegb: %v\n", err)
		os.Exit(1)
	}

	emu := emulator.New()
	if err := emu.LoadROM(rom); err != nil {
		fmt.Fprintf(os.Stderr, "gonegb: %v\n", err)
		os.Exit(1)
	}
	emu.SetSerialSink(func(b byte) { fmt.Fprintf(os.Stderr, "%c", b) })

	if *debug {
		if err := debugger.Run(emu); err != nil {
			fmt.Fprintf(os.Stderr, "gonegb: %v\n", err)
			os.Exit(1)
		}
		return
	}

	g := &game{emu: emu}
	ebiten.SetWindowSize(width*scale, height*scale)
	ebiten.SetWindowTitle("gonegb")
	if err := ebiten.RunGame(g); err != nil {
		fmt.Fprintf(os.Stderr, "gonegb: %v\n", err)
		os.Exit(1)
	}
	if err := g.emu.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "gonegb: %v\n", err)
		os.Exit(1)
	}
}

const (
	width  = 160
	height = 144
	scale  = 3
)

// keymap pairs an ebiten key with the joypad button it drives.
var keymap = []struct {
	key    ebiten.Key
	button emulator.Button
}{
	{ebiten.KeyArrowRight, emulator.ButtonRight},
	{ebiten.KeyArrowLeft, emulator.ButtonLeft},
	{ebiten.KeyArrowUp, emulator.ButtonUp},
	{ebiten.KeyArrowDown, emulator.ButtonDown},
	{ebiten.KeyX, emulator.ButtonA},
	{ebiten.KeyZ, emulator.ButtonB},
	{ebiten.KeyBackspace, emulator.ButtonSelect},
	{ebiten.KeyEnter, emulator.ButtonStart},
}

// game adapts Emulator to ebiten.Game: one frame's worth of CPU/PPU
// cycles per Update, the resulting framebuffer blitted in Draw.
type game struct {
	emu    *emulator.Emulator
	window *ebiten.Image
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	for _, k := range keymap {
		g.emu.SetInput(k.button, ebiten.IsKeyPressed(k.key))
	}
	if err := g.emu.RunFrame(); err != nil {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.window == nil {
		g.window = ebiten.NewImage(width, height)
	}

	fb := g.emu.Framebuffer()
	pixels := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			rgb := fb[y][x]
			i := (y*width + x) * 4
			pixels[i+0] = rgb[0]
			pixels[i+1] = rgb[1]
			pixels[i+2] = rgb[2]
			pixels[i+3] = 0xFF
		}
	}
	g.window.WritePixels(pixels)
	screen.DrawImage(g.window, nil)
}

func (g *game) Layout(_, _ int) (int, int) {
	return width, height
}
