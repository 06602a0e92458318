// Package cpu implements the LR35902 instruction decode/dispatch, ALU,
// and step engine: the "hard core" described in spec §4.2-§4.4.
package cpu

import (
	"fmt"

	"gonegb/internal/register"
)

// Bus is the memory surface the CPU reads instructions and operands
// through. internal/bus.Bus satisfies this.
type Bus interface {
	ReadByte(addr uint16) byte
	WriteByte(addr uint16, v byte)
	ReadWord(addr uint16) uint16
	WriteWord(addr uint16, v uint16)
}

// IllegalOpcodeError is returned by Step when PC points at one of the
// eleven byte values the original CPU never assigned an instruction to.
type IllegalOpcodeError struct {
	PC     uint16
	Opcode byte
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02X at PC=0x%04X", e.Opcode, e.PC)
}

// CPU holds the register file and a reference to the bus it executes
// against. It has no memory of its own beyond the registers.
type CPU struct {
	Reg register.File
	Bus Bus
}

// New returns a CPU wired to bus, with registers at their zero value.
// Callers should call Reset before running it.
func New(bus Bus) *CPU {
	return &CPU{Bus: bus}
}

// Reset restores post-boot register state, per spec §3.
func (c *CPU) Reset() { c.Reg.Reset() }

// --- interrupt.Registers ---

func (c *CPU) PC() uint16               { return c.Reg.PC }
func (c *CPU) SetPC(pc uint16)          { c.Reg.PC = pc }
func (c *CPU) IME() bool                { return c.Reg.IME }
func (c *CPU) SetIME(v bool)            { c.Reg.IME = v }
func (c *CPU) IMEEnableDelay() byte     { return c.Reg.IMEEnableDelay }
func (c *CPU) SetIMEEnableDelay(v byte) { c.Reg.IMEEnableDelay = v }
func (c *CPU) Halted() bool             { return c.Reg.Halted }
func (c *CPU) SetHalted(v bool)         { c.Reg.Halted = v }
func (c *CPU) Stopped() bool            { return c.Reg.Stopped }
func (c *CPU) SetStopped(v bool)        { c.Reg.Stopped = v }

func (c *CPU) PushWord(v uint16) {
	c.Reg.SP -= 2
	c.Bus.WriteWord(c.Reg.SP, v)
}

func (c *CPU) PopWord() uint16 {
	v := c.Bus.ReadWord(c.Reg.SP)
	c.Reg.SP += 2
	return v
}

// Step executes one instruction: fetch at PC, dispatch, advance PC,
// account cycles. It implements the algorithm in spec §4.2. The
// interrupt service step (§4.5) is the caller's responsibility
// (internal/emulator runs it after Step returns), since it needs access
// to the interrupt controller's IE/IF state that the CPU does not own.
func (c *CPU) Step() (cyclesConsumed uint32, err error) {
	if c.Reg.Stopped {
		return 4, nil
	}
	if c.Reg.Halted {
		ifr := c.Bus.ReadByte(0xFF0F)
		ie := c.Bus.ReadByte(0xFFFF)
		if ie&ifr&0x1F != 0 {
			c.Reg.Halted = false
		} else {
			return 4, nil
		}
	}

	pc := c.Reg.PC
	opcode := c.Bus.ReadByte(pc)

	var table *[256]opcodeDesc
	var tableOpcode byte
	var operandAddr uint16

	if opcode == 0xCB {
		cbOp := c.Bus.ReadByte(pc + 1)
		table = &cbOpcodes
		tableOpcode = cbOp
		operandAddr = pc + 2
	} else {
		table = &primaryOpcodes
		tableOpcode = opcode
		operandAddr = pc + 1
	}

	desc := table[tableOpcode]
	if desc.handler == nil {
		return 0, &IllegalOpcodeError{PC: pc, Opcode: opcode}
	}

	res := desc.handler(c, tableOpcode, operandAddr)

	newPC := pc + uint16(desc.length)
	if res.pcOverride {
		newPC = res.newPC
	}
	c.Reg.PC = newPC

	cycles := uint32(desc.cycles)
	if res.cyclesOverride {
		cycles = uint32(res.cycles)
	}
	return cycles, nil
}

// WakeFromStop clears Stopped; the emulator calls this on a joypad
// interrupt signal, per spec §4.4's STOP state machine.
func (c *CPU) WakeFromStop() { c.Reg.Stopped = false }
