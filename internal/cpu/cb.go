package cpu

import "gonegb/internal/register"

// initCB fills cbOpcodes, the parallel 256-entry table for the
// CB-prefixed page, per spec §9: a single family of handlers that
// extract the bit index and register index from the opcode's own
// bit-fields (bits 5-3 and 2-0) rather than 256 near-duplicate literal
// entries.
func initCB() {
	for op := 0; op < 256; op++ {
		o := byte(op)
		srcIdx := int(o & 0x7)
		bit := byte((o >> 3) & 0x7)
		sub := bit // within group 0, bits 5-3 select which rotate/shift
		group := o >> 6

		cycles := uint8(8)
		if srcIdx == reg8HLIndex {
			cycles = 16
			if group == 1 { // BIT b,(HL) is 12, not 16
				cycles = 12
			}
		}

		var name string
		var h func(c *CPU, op byte, addr uint16) stepResult

		switch group {
		case 0: // rotate/shift family, selected by bits 5-3
			name = "CB rotate"
			h = func(c *CPU, op byte, addr uint16) stepResult {
				v := reg8Table[srcIdx].get(c)
				var result byte
				switch sub {
				case 0:
					result = rlc(&c.Reg, v)
				case 1:
					result = rrc(&c.Reg, v)
				case 2:
					result = rl(&c.Reg, v, c.Reg.FlagSet(register.FlagC))
				case 3:
					result = rr(&c.Reg, v, c.Reg.FlagSet(register.FlagC))
				case 4:
					result = sla(&c.Reg, v)
				case 5:
					result = sra(&c.Reg, v)
				case 6:
					result = swap(&c.Reg, v)
				case 7:
					result = srl(&c.Reg, v)
				}
				reg8Table[srcIdx].set(c, result)
				return none()
			}
		case 1: // BIT b,r
			name = "BIT b,r"
			h = func(c *CPU, op byte, addr uint16) stepResult {
				bitTest(&c.Reg, reg8Table[srcIdx].get(c), bit)
				return none()
			}
		case 2: // RES b,r
			name = "RES b,r"
			h = func(c *CPU, op byte, addr uint16) stepResult {
				v := reg8Table[srcIdx].get(c)
				reg8Table[srcIdx].set(c, v&^(1<<bit))
				return none()
			}
		case 3: // SET b,r
			name = "SET b,r"
			h = func(c *CPU, op byte, addr uint16) stepResult {
				v := reg8Table[srcIdx].get(c)
				reg8Table[srcIdx].set(c, v|(1<<bit))
				return none()
			}
		}

		cbOpcodes[o] = opcodeDesc{name: name, length: 2, cycles: cycles, handler: h}
	}
}
