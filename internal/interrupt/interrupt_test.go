package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeRegs is a minimal Registers implementation for exercising Service
// without pulling in internal/cpu.
type fakeRegs struct {
	pc             uint16
	sp             []uint16 // treat as a stack of pushed words, most recent last
	ime            bool
	imeEnableDelay byte
	halted         bool
	stopped        bool
}

func (r *fakeRegs) PushWord(v uint16)          { r.sp = append(r.sp, v) }
func (r *fakeRegs) PC() uint16                 { return r.pc }
func (r *fakeRegs) SetPC(pc uint16)            { r.pc = pc }
func (r *fakeRegs) IME() bool                  { return r.ime }
func (r *fakeRegs) SetIME(v bool)              { r.ime = v }
func (r *fakeRegs) IMEEnableDelay() byte       { return r.imeEnableDelay }
func (r *fakeRegs) SetIMEEnableDelay(v byte)   { r.imeEnableDelay = v }
func (r *fakeRegs) Halted() bool               { return r.halted }
func (r *fakeRegs) SetHalted(v bool)           { r.halted = v }
func (r *fakeRegs) Stopped() bool              { return r.stopped }
func (r *fakeRegs) SetStopped(v bool)          { r.stopped = v }

func TestServiceDeliversHighestPriorityVector(t *testing.T) {
	c := &Controller{}
	c.WriteIE(BitVBlank | BitTimer)
	c.Raise(BitTimer)
	c.Raise(BitVBlank)

	r := &fakeRegs{pc: 0x1234, ime: true}
	c.Service(r)

	assert.Equal(t, vectors[0], r.pc) // VBlank outranks Timer
	assert.False(t, r.ime)
	assert.Equal(t, []uint16{0x1234}, r.sp)
	assert.Equal(t, byte(BitTimer), c.ReadIF()) // VBlank bit cleared, Timer left pending
}

func TestServiceDoesNothingWhenIMEOff(t *testing.T) {
	c := &Controller{}
	c.WriteIE(BitVBlank)
	c.Raise(BitVBlank)

	r := &fakeRegs{pc: 0x1234, ime: false}
	c.Service(r)

	assert.Equal(t, uint16(0x1234), r.pc)
	assert.Empty(t, r.sp)
}

func TestServiceWakesHaltedCPURegardlessOfIME(t *testing.T) {
	c := &Controller{}
	c.WriteIE(BitVBlank)
	c.Raise(BitVBlank)

	r := &fakeRegs{halted: true, ime: false}
	c.Service(r)

	assert.False(t, r.halted)
	assert.Empty(t, r.sp) // not dispatched: IME is off
}

func TestServiceWakesStoppedCPUOnlyOnJoypad(t *testing.T) {
	c := &Controller{}
	c.WriteIE(BitTimer)
	c.Raise(BitTimer)

	r := &fakeRegs{stopped: true, ime: false}
	c.Service(r)
	assert.True(t, r.stopped) // timer does not wake STOP

	c.WriteIE(BitJoypad)
	c.Raise(BitJoypad)
	c.Service(r)
	assert.False(t, r.stopped)
}

// EI's effect is delayed by exactly one instruction: spec §8 scenario 5.
func TestEIDelayTakesEffectAfterFollowingInstruction(t *testing.T) {
	c := &Controller{}
	r := &fakeRegs{ime: false}

	r.SetIMEEnableDelay(2) // what the EI handler does
	c.Service(r)           // "retiring" EI
	assert.False(t, r.ime)

	c.Service(r) // "retiring" the following NOP
	assert.True(t, r.ime)
}

func TestRaiseOnlySetsOwnBit(t *testing.T) {
	c := &Controller{}
	c.Raise(BitSerial)
	assert.Equal(t, byte(BitSerial), c.ReadIF())
}
