package cpu

import "gonegb/internal/register"

// stepResult is what a handler hands back to Step: an optional PC
// override (for jumps/calls/branches) and an optional cycle-count
// override (for conditional branches that take the "taken" path), per
// spec §4.2 step 4.
type stepResult struct {
	newPC      uint16
	pcOverride bool
	cycles     uint8
	cyclesOverride bool
}

// opcodeDesc is the static per-opcode descriptor spec §3/§9 calls for:
// handler, instruction length, base cycles, and (via cyclesOverride in
// the returned stepResult) the conditional-taken cycle count.
type opcodeDesc struct {
	name    string
	length  uint8
	cycles  uint8
	handler func(c *CPU, opcode byte, operandAddr uint16) stepResult
}

var primaryOpcodes [256]opcodeDesc
var cbOpcodes [256]opcodeDesc

func set(op byte, name string, length, cycles uint8, h func(c *CPU, opcode byte, operandAddr uint16) stepResult) {
	primaryOpcodes[op] = opcodeDesc{name: name, length: length, cycles: cycles, handler: h}
}

func none() stepResult { return stepResult{} }

func jump(pc uint16) stepResult { return stepResult{newPC: pc, pcOverride: true} }

func jumpTaken(pc uint16, cycles uint8) stepResult {
	return stepResult{newPC: pc, pcOverride: true, cycles: cycles, cyclesOverride: true}
}

func notTaken(cycles uint8) stepResult {
	return stepResult{cycles: cycles, cyclesOverride: true}
}

// Disassemble returns the mnemonic and encoded length of the
// instruction at pc, following the same CB-prefix lookup Step does.
// Used by the debugger to label the instruction at the current PC
// without exposing the opcode tables themselves.
func Disassemble(bus Bus, pc uint16) (name string, length uint8) {
	op := bus.ReadByte(pc)
	if op == 0xCB {
		cbOp := bus.ReadByte(pc + 1)
		return cbOpcodes[cbOp].name, cbOpcodes[cbOp].length
	}
	return primaryOpcodes[op].name, primaryOpcodes[op].length
}

func init() {
	initLoadsAndMisc()
	initALU()
	initRegToRegLoads()
	initControlTransfer()
	initStackAndMisc2()
	initCB()
}

// initLoadsAndMisc wires the 0x00-0x3F block except the relative jumps
// (8/16-bit immediate loads, INC/DEC on every operand, ADD HL,rr, the
// accumulator rotates, NOP, STOP, DAA, CPL, SCF, CCF, the
// indirect-via-BC/DE/HL± A loads), plus HALT, the high-page, (C) and
// a16 forms of the A loads, LD SP,HL, LD HL,SP+r8 and ADD SP,r8.
func initLoadsAndMisc() {
	set(0x00, "NOP", 1, 4, func(c *CPU, op byte, addr uint16) stepResult { return none() })

	set(0x10, "STOP", 2, 4, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.Stopped = true
		return none()
	})

	set(0x76, "HALT", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		ifr := c.Bus.ReadByte(0xFF0F)
		ie := c.Bus.ReadByte(0xFFFF)
		pending := ie & ifr & 0x1F
		if c.Reg.IME || pending == 0 {
			c.Reg.Halted = true
		}
		// IME==0 && pending!=0: the HALT bug case. At this observable
		// level we simply do not enter Halted and do not duplicate the
		// following byte; see DESIGN.md open-question (a).
		return none()
	})

	// 16-bit immediate loads into BC/DE/HL/SP.
	ld16imm := func(idx int) func(c *CPU, op byte, addr uint16) stepResult {
		return func(c *CPU, op byte, addr uint16) stepResult {
			reg16TableSP[idx].set(c, c.Bus.ReadWord(addr))
			return none()
		}
	}
	set(0x01, "LD BC,d16", 3, 12, ld16imm(0))
	set(0x11, "LD DE,d16", 3, 12, ld16imm(1))
	set(0x21, "LD HL,d16", 3, 12, ld16imm(2))
	set(0x31, "LD SP,d16", 3, 12, ld16imm(3))

	set(0x08, "LD (a16),SP", 3, 20, func(c *CPU, op byte, addr uint16) stepResult {
		c.Bus.WriteWord(c.Bus.ReadWord(addr), c.Reg.SP)
		return none()
	})

	// LD A,(BC)/(DE) and LD (BC)/(DE),A.
	set(0x02, "LD (BC),A", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
		c.Bus.WriteByte(c.Reg.BC(), c.Reg.A)
		return none()
	})
	set(0x12, "LD (DE),A", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
		c.Bus.WriteByte(c.Reg.DE(), c.Reg.A)
		return none()
	})
	set(0x0A, "LD A,(BC)", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = c.Bus.ReadByte(c.Reg.BC())
		return none()
	})
	set(0x1A, "LD A,(DE)", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = c.Bus.ReadByte(c.Reg.DE())
		return none()
	})

	// LD (HL+/-),A and LD A,(HL+/-).
	set(0x22, "LD (HL+),A", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
		c.Bus.WriteByte(c.Reg.HL(), c.Reg.A)
		c.Reg.SetHL(c.Reg.HL() + 1)
		return none()
	})
	set(0x32, "LD (HL-),A", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
		c.Bus.WriteByte(c.Reg.HL(), c.Reg.A)
		c.Reg.SetHL(c.Reg.HL() - 1)
		return none()
	})
	set(0x2A, "LD A,(HL+)", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = c.Bus.ReadByte(c.Reg.HL())
		c.Reg.SetHL(c.Reg.HL() + 1)
		return none()
	})
	set(0x3A, "LD A,(HL-)", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = c.Bus.ReadByte(c.Reg.HL())
		c.Reg.SetHL(c.Reg.HL() - 1)
		return none()
	})

	// LD r,d8 and 8-bit immediate for every reg8 slot, at the opcodes
	// row*8+6 (0x06,0x0E,0x16,...,0x3E).
	for row := 0; row < 8; row++ {
		idx := row
		op := byte(row*8 + 6)
		length := uint8(2)
		cycles := uint8(8)
		if idx == reg8HLIndex {
			cycles = 12
		}
		set(op, "LD r,d8", length, cycles, func(c *CPU, op byte, addr uint16) stepResult {
			reg8Table[idx].set(c, c.Bus.ReadByte(addr))
			return none()
		})
	}

	// INC/DEC r8, at rows *8+4 and *8+5.
	for row := 0; row < 8; row++ {
		idx := row
		incOp := byte(row*8 + 4)
		decOp := byte(row*8 + 5)
		cycles := uint8(4)
		if idx == reg8HLIndex {
			cycles = 12
		}
		set(incOp, "INC r", 1, cycles, func(c *CPU, op byte, addr uint16) stepResult {
			reg8Table[idx].set(c, inc8(&c.Reg, reg8Table[idx].get(c)))
			return none()
		})
		set(decOp, "DEC r", 1, cycles, func(c *CPU, op byte, addr uint16) stepResult {
			reg8Table[idx].set(c, dec8(&c.Reg, reg8Table[idx].get(c)))
			return none()
		})
	}

	// 16-bit INC/DEC BC/DE/HL/SP, no flag effect.
	for idx := 0; idx < 4; idx++ {
		i := idx
		incOp := byte(i*16 + 0x03)
		decOp := byte(i*16 + 0x0B)
		set(incOp, "INC rr", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
			reg16TableSP[i].set(c, reg16TableSP[i].get(c)+1)
			return none()
		})
		set(decOp, "DEC rr", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
			reg16TableSP[i].set(c, reg16TableSP[i].get(c)-1)
			return none()
		})
	}

	// ADD HL,rr.
	for idx := 0; idx < 4; idx++ {
		i := idx
		op := byte(i*16 + 0x09)
		set(op, "ADD HL,rr", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
			c.Reg.SetHL(addHL16(&c.Reg, c.Reg.HL(), reg16TableSP[i].get(c)))
			return none()
		})
	}

	// Accumulator rotates, which always clear Z unlike their CB
	// counterparts, per spec §4.3.
	set(0x07, "RLCA", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = rlc(&c.Reg, c.Reg.A)
		c.Reg.SetFlag(register.FlagZ, false)
		return none()
	})
	set(0x0F, "RRCA", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = rrc(&c.Reg, c.Reg.A)
		c.Reg.SetFlag(register.FlagZ, false)
		return none()
	})
	set(0x17, "RLA", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = rl(&c.Reg, c.Reg.A, c.Reg.FlagSet(register.FlagC))
		c.Reg.SetFlag(register.FlagZ, false)
		return none()
	})
	set(0x1F, "RRA", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = rr(&c.Reg, c.Reg.A, c.Reg.FlagSet(register.FlagC))
		c.Reg.SetFlag(register.FlagZ, false)
		return none()
	})

	set(0x27, "DAA", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = daa(&c.Reg, c.Reg.A)
		return none()
	})
	set(0x2F, "CPL", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = ^c.Reg.A
		c.Reg.SetFlag(register.FlagN, true)
		c.Reg.SetFlag(register.FlagH, true)
		return none()
	})
	set(0x37, "SCF", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.SetFlag(register.FlagC, true)
		c.Reg.SetFlag(register.FlagN, false)
		c.Reg.SetFlag(register.FlagH, false)
		return none()
	})
	set(0x3F, "CCF", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.SetFlag(register.FlagC, !c.Reg.FlagSet(register.FlagC))
		c.Reg.SetFlag(register.FlagN, false)
		c.Reg.SetFlag(register.FlagH, false)
		return none()
	})

	// High-page and (C)-indirect forms.
	set(0xE0, "LDH (a8),A", 2, 12, func(c *CPU, op byte, addr uint16) stepResult {
		c.Bus.WriteByte(0xFF00+uint16(c.Bus.ReadByte(addr)), c.Reg.A)
		return none()
	})
	set(0xF0, "LDH A,(a8)", 2, 12, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = c.Bus.ReadByte(0xFF00 + uint16(c.Bus.ReadByte(addr)))
		return none()
	})
	set(0xE2, "LD (C),A", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
		c.Bus.WriteByte(0xFF00+uint16(c.Reg.C), c.Reg.A)
		return none()
	})
	set(0xF2, "LD A,(C)", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = c.Bus.ReadByte(0xFF00 + uint16(c.Reg.C))
		return none()
	})
	set(0xEA, "LD (a16),A", 3, 16, func(c *CPU, op byte, addr uint16) stepResult {
		c.Bus.WriteByte(c.Bus.ReadWord(addr), c.Reg.A)
		return none()
	})
	set(0xFA, "LD A,(a16)", 3, 16, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.A = c.Bus.ReadByte(c.Bus.ReadWord(addr))
		return none()
	})

	set(0xF9, "LD SP,HL", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.SP = c.Reg.HL()
		return none()
	})
	set(0xF8, "LD HL,SP+r8", 2, 12, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.SetHL(addSigned16(&c.Reg, c.Reg.SP, c.Bus.ReadByte(addr)))
		return none()
	})
	set(0xE8, "ADD SP,r8", 2, 16, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.SP = addSigned16(&c.Reg, c.Reg.SP, c.Bus.ReadByte(addr))
		return none()
	})
}

// initRegToRegLoads wires the 0x40-0x7F block (LD r,r') except 0x76
// (HALT, handled above) using the bit-field decomposition spec §9
// recommends rather than 63 near-duplicate literal entries.
func initRegToRegLoads() {
	for dst := 0; dst < 8; dst++ {
		for src := 0; src < 8; src++ {
			op := byte(0x40 + dst*8 + src)
			if op == 0x76 {
				continue
			}
			d, s := dst, src
			cycles := uint8(4)
			if d == reg8HLIndex || s == reg8HLIndex {
				cycles = 8
			}
			set(op, "LD r,r'", 1, cycles, func(c *CPU, op byte, addr uint16) stepResult {
				reg8Table[d].set(c, reg8Table[s].get(c))
				return none()
			})
		}
	}
}

// initALU wires the 0x80-0xBF block (ADD/ADC/SUB/SBC/AND/XOR/OR/CP A,r)
// and their 0xC6.../0xFE d8 counterparts, via the same bit-field
// decomposition.
func initALU() {
	ops := [8]func(c *CPU, v byte){
		func(c *CPU, v byte) { c.Reg.A = add8(&c.Reg, c.Reg.A, v, false) },
		func(c *CPU, v byte) { c.Reg.A = add8(&c.Reg, c.Reg.A, v, c.Reg.FlagSet(register.FlagC)) },
		func(c *CPU, v byte) { c.Reg.A = sub8(&c.Reg, c.Reg.A, v, false) },
		func(c *CPU, v byte) { c.Reg.A = sub8(&c.Reg, c.Reg.A, v, c.Reg.FlagSet(register.FlagC)) },
		func(c *CPU, v byte) { c.Reg.A = and8(&c.Reg, c.Reg.A, v) },
		func(c *CPU, v byte) { c.Reg.A = xor8(&c.Reg, c.Reg.A, v) },
		func(c *CPU, v byte) { c.Reg.A = or8(&c.Reg, c.Reg.A, v) },
		func(c *CPU, v byte) { cp8(&c.Reg, c.Reg.A, v) },
	}
	names := [8]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}

	for row := 0; row < 8; row++ {
		for src := 0; src < 8; src++ {
			op := byte(0x80 + row*8 + src)
			s := src
			r := row
			cycles := uint8(4)
			if s == reg8HLIndex {
				cycles = 8
			}
			set(op, names[r]+" A,r", 1, cycles, func(c *CPU, op byte, addr uint16) stepResult {
				ops[r](c, reg8Table[s].get(c))
				return none()
			})
		}
		immOp := byte(0xC6 + row*8)
		r := row
		set(immOp, names[r]+" A,d8", 2, 8, func(c *CPU, op byte, addr uint16) stepResult {
			ops[r](c, c.Bus.ReadByte(addr))
			return none()
		})
	}
}

// initControlTransfer wires JP/JR/CALL/RET/RST and their conditional
// forms, per spec §4.4.
func initControlTransfer() {
	set(0xC3, "JP a16", 3, 16, func(c *CPU, op byte, addr uint16) stepResult {
		return jump(c.Bus.ReadWord(addr))
	})
	set(0xE9, "JP HL", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		return jump(c.Reg.HL())
	})
	set(0x18, "JR r8", 2, 12, func(c *CPU, op byte, addr uint16) stepResult {
		offset := int16(int8(c.Bus.ReadByte(addr)))
		return jump(uint16(int32(addr) + 1 + int32(offset)))
	})
	set(0xCD, "CALL a16", 3, 24, func(c *CPU, op byte, addr uint16) stepResult {
		target := c.Bus.ReadWord(addr)
		c.PushWord(addr + 2)
		return jump(target)
	})
	set(0xC9, "RET", 1, 16, func(c *CPU, op byte, addr uint16) stepResult {
		return jump(c.PopWord())
	})
	set(0xD9, "RETI", 1, 16, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.IME = true
		c.Reg.IMEEnableDelay = 0
		return jump(c.PopWord())
	})

	for idx := 0; idx < 4; idx++ {
		i := idx
		jpOp := byte(0xC2 + i*8)
		jrOp := byte(0x20 + i*8)
		callOp := byte(0xC4 + i*8)
		retOp := byte(0xC0 + i*8)

		set(jpOp, "JP cc,a16", 3, 12, func(c *CPU, op byte, addr uint16) stepResult {
			target := c.Bus.ReadWord(addr)
			if condition(c, byte(i)) {
				return jumpTaken(target, 16)
			}
			return notTaken(12)
		})
		set(jrOp, "JR cc,r8", 2, 8, func(c *CPU, op byte, addr uint16) stepResult {
			offset := int16(int8(c.Bus.ReadByte(addr)))
			if condition(c, byte(i)) {
				return jumpTaken(uint16(int32(addr)+1+int32(offset)), 12)
			}
			return notTaken(8)
		})
		set(callOp, "CALL cc,a16", 3, 12, func(c *CPU, op byte, addr uint16) stepResult {
			target := c.Bus.ReadWord(addr)
			if condition(c, byte(i)) {
				c.PushWord(addr + 2)
				return jumpTaken(target, 24)
			}
			return notTaken(12)
		})
		set(retOp, "RET cc", 1, 8, func(c *CPU, op byte, addr uint16) stepResult {
			if condition(c, byte(i)) {
				return jumpTaken(c.PopWord(), 20)
			}
			return notTaken(8)
		})
	}

	for i := 0; i < 8; i++ {
		op := byte(0xC7 + i*8)
		vector := uint16(i * 8)
		set(op, "RST", 1, 16, func(c *CPU, op byte, addr uint16) stepResult {
			c.PushWord(addr)
			return jump(vector)
		})
	}
}

// initStackAndMisc2 wires PUSH/POP, DI/EI, and the CB-prefix
// placeholder. The actual CB table lives in cb.go; for a CB instruction
// Step computes operandAddr as pc+2 and takes both the length and the
// cycles from cbOpcodes[op], so the placeholder's own length and cycles
// are never used — see cpu.go Step.
func initStackAndMisc2() {
	for idx := 0; idx < 4; idx++ {
		i := idx
		pushOp := byte(0xC5 + i*16)
		popOp := byte(0xC1 + i*16)
		set(pushOp, "PUSH rr", 1, 16, func(c *CPU, op byte, addr uint16) stepResult {
			c.PushWord(reg16TableAF[i].get(c))
			return none()
		})
		set(popOp, "POP rr", 1, 12, func(c *CPU, op byte, addr uint16) stepResult {
			reg16TableAF[i].set(c, c.PopWord())
			return none()
		})
	}

	set(0xF3, "DI", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.IME = false
		c.Reg.IMEEnableDelay = 0
		return none()
	})
	set(0xFB, "EI", 1, 4, func(c *CPU, op byte, addr uint16) stepResult {
		c.Reg.IMEEnableDelay = 2
		return none()
	})

	// The CB prefix itself never dispatches through primaryOpcodes
	// (Step intercepts 0xCB before indexing the table), but giving it a
	// descriptor means a diagnostic that walks all 256 entries sees it as
	// defined rather than as one of the eleven nil (illegal) entries.
	set(0xCB, "PREFIX CB", 1, 4, func(c *CPU, op byte, addr uint16) stepResult { return none() })
}
