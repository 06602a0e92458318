// Package emulator owns the single aggregate that ties the register
// file, bus, interrupt controller, and PPU together and drives the
// step loop described in spec §5. It is the one place these four
// components hold references to each other; nothing outside this
// package needs to know they are separate types.
package emulator

import (
	"errors"
	"fmt"

	"gonegb/internal/bus"
	"gonegb/internal/cpu"
	"gonegb/internal/interrupt"
	"gonegb/internal/ppu"
)

// CyclesPerFrame is the number of CPU clock cycles in one 59.7 Hz
// frame: 154 scanlines of 456 dots each.
const CyclesPerFrame = 154 * 456

// ErrROMTooLarge is returned by LoadROM when data would not fit in the
// no-bank-switching 0x0000-0x7FFF cartridge window.
var ErrROMTooLarge = errors.New("rom exceeds 32768 bytes")

// Button identifies one of the eight joypad inputs, per spec §6's host
// adapter contract.
type Button byte

const (
	ButtonRight  Button = bus.ButtonRight
	ButtonLeft   Button = bus.ButtonLeft
	ButtonUp     Button = bus.ButtonUp
	ButtonDown   Button = bus.ButtonDown
	ButtonA      Button = bus.ButtonA
	ButtonB      Button = bus.ButtonB
	ButtonSelect Button = bus.ButtonSelect
	ButtonStart  Button = bus.ButtonStart
)

// DebugState is the read-only register snapshot spec §6 allows the
// host to take between instructions.
type DebugState struct {
	A, F, B, C, D, E, H, L byte
	SP, PC                 uint16
	IME                    bool
	Cycles                 uint64
}

// Emulator is the owning aggregate: CPU, Bus, PPU, and Interrupts are
// plain fields here rather than back-referencing singletons, per spec
// §9's "Singletons and circular ownership" note.
type Emulator struct {
	CPU        *cpu.CPU
	Bus        *bus.Bus
	PPU        *ppu.PPU
	Interrupts *interrupt.Controller

	totalCycles uint64
	lastErr     error
}

// New wires a fresh Emulator. Callers must LoadROM before stepping it.
func New() *Emulator {
	ic := &interrupt.Controller{}
	p := ppu.New(ic)
	b := bus.New(p, ic)
	c := cpu.New(b)

	return &Emulator{CPU: c, Bus: b, PPU: p, Interrupts: ic}
}

// Reset restores the post-boot CPU registers, the PPU registers, and
// IE/IF. Bus-owned state (work RAM, high RAM, external RAM, and the
// joypad/serial registers) is not cleared; ROM is kept.
func (e *Emulator) Reset() {
	e.CPU.Reset()
	e.PPU.Reset()
	e.Interrupts.Reset()
	e.totalCycles = 0
	e.lastErr = nil
}

// LoadROM copies data into cartridge ROM and resets the machine to its
// post-boot state, ready to execute from 0x0100.
func (e *Emulator) LoadROM(data []byte) error {
	if len(data) > 0x8000 {
		return fmt.Errorf("gonegb: load rom: %w", ErrROMTooLarge)
	}
	e.Bus.LoadROM(data)
	e.Reset()
	return nil
}

// Step executes one instruction, advances the PPU by the cycles it
// consumed, and services pending interrupts — the loop in spec §5.
// It returns the CPU's error so callers that care (the CLI, tests) can
// distinguish a clean step from an illegal-opcode halt; StepInstruction
// is the error-swallowing form spec §6's host adapter signature expects.
func (e *Emulator) Step() (uint32, error) {
	cycles, err := e.CPU.Step()
	if err != nil {
		e.lastErr = err
		return 0, err
	}
	e.PPU.Step(cycles)
	e.Interrupts.Service(e.CPU)
	e.totalCycles += uint64(cycles)
	return cycles, nil
}

// StepInstruction implements the host adapter signature in spec §6. On
// an illegal opcode it records the error (retrievable via Err) and
// returns 0 cycles rather than panicking.
func (e *Emulator) StepInstruction() uint32 {
	cycles, err := e.Step()
	if err != nil {
		return 0
	}
	return cycles
}

// RunFrame steps until at least one full frame's worth of cycles has
// elapsed, stopping early on an illegal opcode.
func (e *Emulator) RunFrame() error {
	var consumed uint32
	for consumed < CyclesPerFrame {
		cycles, err := e.Step()
		if err != nil {
			return err
		}
		consumed += cycles
	}
	return nil
}

// Err returns the error that halted the last Step/StepInstruction/
// RunFrame call, or nil if the machine is running cleanly.
func (e *Emulator) Err() error { return e.lastErr }

// Framebuffer returns a copy of the current 160x144 RGB framebuffer.
// Go's array value semantics make this copy-out safe to read from the
// host without holding a lock, matching the "safe points between full
// instructions" contract in spec §5.
func (e *Emulator) Framebuffer() [ppu.ScreenHeight][ppu.ScreenWidth][3]byte {
	return e.PPU.Framebuffer
}

// SetInput updates one joypad line, raising the joypad interrupt on a
// press edge and waking the CPU from STOP.
func (e *Emulator) SetInput(button Button, pressed bool) {
	e.Bus.SetButton(byte(button), pressed)
	if pressed {
		e.CPU.WakeFromStop()
	}
}

// DebugState takes a read-only register snapshot, per spec §6.
func (e *Emulator) DebugState() DebugState {
	r := &e.CPU.Reg
	return DebugState{
		A: r.A, F: r.F, B: r.B, C: r.C, D: r.D, E: r.E, H: r.H, L: r.L,
		SP: r.SP, PC: r.PC, IME: r.IME, Cycles: e.totalCycles,
	}
}

// SetSerialSink installs the host-provided byte sink invoked when the
// guest writes 0x81 to the serial control register, per spec §6.
func (e *Emulator) SetSerialSink(sink func(byte)) {
	e.Bus.SerialSink = sink
}
