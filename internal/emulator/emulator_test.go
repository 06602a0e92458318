package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonegb/internal/cpu"
	"gonegb/internal/ppu"
)

func TestLoadROMTooLarge(t *testing.T) {
	e := New()
	err := e.LoadROM(make([]byte, 0x8001))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrROMTooLarge)
}

func TestStepDrivesCPUAndPPUTogether(t *testing.T) {
	e := New()
	require.NoError(t, e.LoadROM([]byte{0x00})) // NOP at 0x0100

	cycles, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, uint32(4), cycles)
	assert.Equal(t, uint16(0x0101), e.CPU.Reg.PC)
	// The PPU advanced by the same 4 dots: line 0, dot < 80, OAM scan.
	assert.Equal(t, byte(ppu.ModeOAM), e.Bus.ReadByte(0xFF41)&0x03)
}

func TestStepInstructionSwallowsIllegalOpcodeError(t *testing.T) {
	e := New()
	rom := make([]byte, 0x0101)
	rom[0x0100] = 0xD3 // illegal, at the post-reset PC
	require.NoError(t, e.LoadROM(rom))

	cycles := e.StepInstruction()
	assert.Equal(t, uint32(0), cycles)
	require.Error(t, e.Err())

	var illegal *cpu.IllegalOpcodeError
	assert.ErrorAs(t, e.Err(), &illegal)
}

func TestSetInputRaisesJoypadInterruptAndWakesStop(t *testing.T) {
	e := New()
	require.NoError(t, e.LoadROM([]byte{0x00}))
	e.CPU.Reg.Stopped = true

	e.SetInput(ButtonStart, true)

	assert.False(t, e.CPU.Reg.Stopped)
	assert.Equal(t, byte(0x10), e.Interrupts.ReadIF())
}

func TestSetSerialSinkReceivesDebugBytes(t *testing.T) {
	e := New()
	// LD A,d8 ; LD (0xFF01),A via LDH ; LDH (0xFF02),A with 0x81
	// The program starts at 0x0100, the post-reset PC.
	rom := append(make([]byte, 0x0100),
		0x3E, 'Z', // LD A,'Z'
		0xE0, 0x01, // LDH (0xFF01),A  -> writes 'Z' to SB
		0x3E, 0x81, // LD A,0x81
		0xE0, 0x02, // LDH (0xFF02),A  -> triggers the sink
	)
	require.NoError(t, e.LoadROM(rom))

	var got byte
	e.SetSerialSink(func(v byte) { got = v })

	for i := 0; i < 4; i++ {
		_, err := e.Step()
		require.NoError(t, err)
	}

	assert.Equal(t, byte('Z'), got)
}

func TestFramebufferIsACopy(t *testing.T) {
	e := New()
	require.NoError(t, e.LoadROM([]byte{0x00}))

	fb := e.Framebuffer()
	fb[0][0] = [3]byte{1, 2, 3}

	fb2 := e.Framebuffer()
	assert.NotEqual(t, fb[0][0], fb2[0][0])
}

func TestDebugStateReflectsRegisters(t *testing.T) {
	e := New()
	require.NoError(t, e.LoadROM([]byte{0x00}))

	ds := e.DebugState()
	assert.Equal(t, uint16(0x0100), ds.PC)
	assert.Equal(t, uint16(0xFFFE), ds.SP)
	assert.False(t, ds.IME)
}
