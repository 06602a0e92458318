// Package register implements the LR35902 register file: the seven
// general-purpose byte registers, the packed flag byte, the big-endian
// pair views over them, and the stack/program counters.
package register

// Flag bits occupy the upper nibble of F; the lower nibble is always zero.
const (
	FlagZ byte = 1 << 7 // Zero
	FlagN byte = 1 << 6 // Subtract
	FlagH byte = 1 << 5 // Half-carry
	FlagC byte = 1 << 4 // Carry
)

// File holds all CPU-visible register state. Register pairs (AF, BC, DE,
// HL) are exposed as accessor methods over the underlying byte pairs
// rather than mirrored fields, so there is exactly one place each byte
// lives.
type File struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	IME bool
	// IMEEnableDelay implements EI's one-instruction-delayed enable: EI
	// sets it to 2, and each post-instruction interrupt-service pass
	// decrements it, setting IME once it reaches 0. That means IME
	// becomes effective starting with the *second* service pass after
	// EI, i.e. after the instruction following EI retires, which is
	// spec §8's worked EI-delay example.
	IMEEnableDelay byte

	Halted  bool
	Stopped bool
}

// Reset restores the post-boot-ROM register values the original hardware
// leaves behind before handing off to the cartridge at 0x0100.
func (f *File) Reset() {
	f.A, f.F = 0x11, 0x80
	f.B, f.C = 0x00, 0x00
	f.D, f.E = 0xFF, 0x56
	f.H, f.L = 0x00, 0x0D
	f.SP = 0xFFFE
	f.PC = 0x0100
	f.IME = false
	f.IMEEnableDelay = 0
	f.Halted = false
	f.Stopped = false
}

// SetF writes the flag byte, masking the low nibble to zero as the
// hardware does.
func (f *File) SetF(v byte) { f.F = v & 0xF0 }

func (f *File) FlagSet(mask byte) bool { return f.F&mask != 0 }

func (f *File) SetFlag(mask byte, v bool) {
	if v {
		f.F |= mask
	} else {
		f.F &^= mask
	}
}

// AF returns the big-endian pair view of A and F. The low nibble of F is
// always zero, so AF's low nibble is always zero too.
func (f *File) AF() uint16 { return uint16(f.A)<<8 | uint16(f.F) }

func (f *File) SetAF(v uint16) {
	f.A = byte(v >> 8)
	f.SetF(byte(v))
}

func (f *File) BC() uint16 { return uint16(f.B)<<8 | uint16(f.C) }

func (f *File) SetBC(v uint16) {
	f.B = byte(v >> 8)
	f.C = byte(v)
}

func (f *File) DE() uint16 { return uint16(f.D)<<8 | uint16(f.E) }

func (f *File) SetDE(v uint16) {
	f.D = byte(v >> 8)
	f.E = byte(v)
}

func (f *File) HL() uint16 { return uint16(f.H)<<8 | uint16(f.L) }

func (f *File) SetHL(v uint16) {
	f.H = byte(v >> 8)
	f.L = byte(v)
}
