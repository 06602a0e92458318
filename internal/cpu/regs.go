package cpu

import "gonegb/internal/register"

// reg8 is an accessor pair over one of the eight operand slots the GB
// encodes in 3 bits: B,C,D,E,H,L,(HL),A. Using accessors rather than a
// switch scattered through every handler keeps the bit-field-driven
// tables (reg-to-reg loads, ALU-with-register, INC/DEC r8) to one
// implementation each, per spec §9's register-pair-as-accessor guidance
// generalized to single registers.
type reg8 struct {
	get func(c *CPU) byte
	set func(c *CPU, v byte)
}

var reg8Table = [8]reg8{
	{get: func(c *CPU) byte { return c.Reg.B }, set: func(c *CPU, v byte) { c.Reg.B = v }},
	{get: func(c *CPU) byte { return c.Reg.C }, set: func(c *CPU, v byte) { c.Reg.C = v }},
	{get: func(c *CPU) byte { return c.Reg.D }, set: func(c *CPU, v byte) { c.Reg.D = v }},
	{get: func(c *CPU) byte { return c.Reg.E }, set: func(c *CPU, v byte) { c.Reg.E = v }},
	{get: func(c *CPU) byte { return c.Reg.H }, set: func(c *CPU, v byte) { c.Reg.H = v }},
	{get: func(c *CPU) byte { return c.Reg.L }, set: func(c *CPU, v byte) { c.Reg.L = v }},
	{get: func(c *CPU) byte { return c.Bus.ReadByte(c.Reg.HL()) }, set: func(c *CPU, v byte) { c.Bus.WriteByte(c.Reg.HL(), v) }},
	{get: func(c *CPU) byte { return c.Reg.A }, set: func(c *CPU, v byte) { c.Reg.A = v }},
}

const reg8HLIndex = 6

// reg16 is an accessor pair over one of the four 16-bit register pairs,
// indexed the way PUSH/POP/INC/DEC/ADD HL, rr encode them in bits 5-4 of
// the opcode: BC, DE, HL, SP (or AF for the PUSH/POP encoding — callers
// pick the right table).
type reg16 struct {
	get func(c *CPU) uint16
	set func(c *CPU, v uint16)
}

var reg16TableSP = [4]reg16{
	{get: func(c *CPU) uint16 { return c.Reg.BC() }, set: func(c *CPU, v uint16) { c.Reg.SetBC(v) }},
	{get: func(c *CPU) uint16 { return c.Reg.DE() }, set: func(c *CPU, v uint16) { c.Reg.SetDE(v) }},
	{get: func(c *CPU) uint16 { return c.Reg.HL() }, set: func(c *CPU, v uint16) { c.Reg.SetHL(v) }},
	{get: func(c *CPU) uint16 { return c.Reg.SP }, set: func(c *CPU, v uint16) { c.Reg.SP = v }},
}

var reg16TableAF = [4]reg16{
	{get: func(c *CPU) uint16 { return c.Reg.BC() }, set: func(c *CPU, v uint16) { c.Reg.SetBC(v) }},
	{get: func(c *CPU) uint16 { return c.Reg.DE() }, set: func(c *CPU, v uint16) { c.Reg.SetDE(v) }},
	{get: func(c *CPU) uint16 { return c.Reg.HL() }, set: func(c *CPU, v uint16) { c.Reg.SetHL(v) }},
	{get: func(c *CPU) uint16 { return c.Reg.AF() }, set: func(c *CPU, v uint16) { c.Reg.SetAF(v) }},
}

// condition evaluates one of the four branch conditions, indexed the way
// JP/JR/CALL/RET cc encode them in bits 4-3: NZ, Z, NC, C.
func condition(c *CPU, idx byte) bool {
	switch idx {
	case 0:
		return !c.Reg.FlagSet(register.FlagZ)
	case 1:
		return c.Reg.FlagSet(register.FlagZ)
	case 2:
		return !c.Reg.FlagSet(register.FlagC)
	case 3:
		return c.Reg.FlagSet(register.FlagC)
	}
	return false
}
