// Package debugger implements an interactive single-step TUI over an
// emulator.Emulator, adapted field for field from the 6502 debugger
// this repo's instruction core grew out of: same model/Init/Update/View
// shape, same page-table-plus-status layout, now reading the GB memory
// map and register set instead.
package debugger

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"gonegb/internal/cpu"
	"gonegb/internal/emulator"
	"gonegb/internal/register"
)

type model struct {
	emu *emulator.Emulator

	prevPC uint16
	err    error
}

// Init loads nothing further; the caller is expected to have already
// called emu.LoadROM.
func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			m.prevPC = m.emu.CPU.Reg.PC
			if _, err := m.emu.Step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// renderPage renders one 16-byte memory row as a line, highlighting the
// byte at PC if it falls within this row.
func (m model) renderPage(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := uint16(0); i < 16; i++ {
		addr := start + i
		b := m.emu.Bus.ReadByte(addr)
		if addr == m.emu.CPU.Reg.PC {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m model) status() string {
	r := &m.emu.CPU.Reg
	var flags string
	for _, set := range []bool{
		r.FlagSet(register.FlagZ),
		r.FlagSet(register.FlagN),
		r.FlagSet(register.FlagH),
		r.FlagSet(register.FlagC),
	} {
		if set {
			flags += "/ "
		} else {
			flags += "  "
		}
	}
	return fmt.Sprintf(`
PC: %04x (%04x)
SP: %04x
 A: %02x   F: %02x
 B: %02x   C: %02x
 D: %02x   E: %02x
 H: %02x   L: %02x
IME: %v  HALT: %v  STOP: %v
Z N H C
`,
		r.PC, m.prevPC, r.SP,
		r.A, r.F,
		r.B, r.C,
		r.D, r.E,
		r.H, r.L,
		r.IME, r.Halted, r.Stopped,
	) + flags
}

// pageTable shows a window of ROM around PC plus fixed anchors into
// VRAM, WRAM, OAM, and HRAM, since the GB map is far too large to page
// through linearly the way a flat 64 KiB NES bus can be.
func (m model) pageTable() string {
	header := "page | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf("  %01x  ", b)
	}

	pc := m.emu.CPU.Reg.PC
	base := pc &^ 0x0F
	offsets := []uint16{
		base, base + 16, base + 32,
		0x8000, 0x9FF0,
		0xC000, 0xFE00, 0xFF80,
	}

	rows := []string{header}
	for _, off := range offsets {
		rows = append(rows, m.renderPage(off))
	}
	return strings.Join(rows, "\n")
}

func (m model) View() string {
	name, _ := cpu.Disassemble(m.emu.Bus, m.emu.CPU.Reg.PC)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		fmt.Sprintf("next: %s", name),
		spew.Sdump(m.emu.DebugState()),
	)
}

// Run starts the interactive TUI over emu, blocking until the user
// quits or the CPU halts on an illegal opcode.
func Run(emu *emulator.Emulator) error {
	m, err := tea.NewProgram(model{emu: emu}).Run()
	if err != nil {
		return err
	}
	if x, ok := m.(model); ok && x.err != nil {
		return x.err
	}
	return nil
}
