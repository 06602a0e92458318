// Package ppu implements the LR35902 picture-processing unit: the
// scanline dot counter, the LY/STAT mode state machine, the VBlank
// interrupt raise, and the background-only tile renderer described in
// spec §4.6. Sprites, the window layer, and mid-scanline register
// writes are out of scope.
package ppu

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	dotsPerScanline = 456
	mode2End        = 80 // OAM scan: dots 0-79
	mode3End        = 252 // drawing: dots 80-251 (172 dots); HBlank: 252-455
	lastLine        = 153
)

// Mode values occupy the low two bits of STAT.
const (
	ModeHBlank = 0
	ModeVBlank = 1
	ModeOAM    = 2
	ModeDraw   = 3
)

const (
	regLCDC = 0xFF40
	regSTAT = 0xFF41
	regSCY  = 0xFF42
	regSCX  = 0xFF43
	regLY   = 0xFF44
	regLYC  = 0xFF45
	regDMA  = 0xFF46
	regBGP  = 0xFF47
	regOBP0 = 0xFF48
	regOBP1 = 0xFF49
	regWY   = 0xFF4A
	regWX   = 0xFF4B

	// bitVBlank matches interrupt.BitVBlank (IF bit 0); kept as a local
	// constant so this package does not need to import internal/interrupt
	// just to name one bit.
	bitVBlank = 1 << 0
)

// shades maps a 2-bit BGP color index to an RGB triple, lightest first.
var shades = [4][3]byte{
	{0xFF, 0xFF, 0xFF},
	{0xAA, 0xAA, 0xAA},
	{0x55, 0x55, 0x55},
	{0x00, 0x00, 0x00},
}

// Interrupts is the interrupt-controller surface the PPU raises VBlank
// through. internal/interrupt.Controller satisfies this.
type Interrupts interface {
	Raise(bit byte)
}

// PPU owns VRAM, OAM, the twelve memory-mapped PPU registers at
// 0xFF40-0xFF4B, and the rendered framebuffer. internal/bus.Bus routes
// VRAM/OAM/register accesses here; internal/emulator calls Step once
// per CPU instruction with the cycle count that instruction consumed.
type PPU struct {
	VRAM [0x2000]byte
	OAM  [0xA0]byte

	lcdc, stat      byte
	scy, scx        byte
	ly, lyc         byte
	dma             byte
	bgp, obp0, obp1 byte
	wy, wx          byte

	dot uint16

	Framebuffer [ScreenHeight][ScreenWidth][3]byte

	Interrupts Interrupts
}

// New returns a PPU wired to interrupts, with every register and the
// framebuffer at its zero value. Callers should call Reset before
// running it.
func New(interrupts Interrupts) *PPU {
	return &PPU{Interrupts: interrupts}
}

// Reset restores post-boot PPU register state. VRAM, OAM, and the
// framebuffer are left as they are; hardware leaves them in whatever
// state the boot ROM left them in.
func (p *PPU) Reset() {
	p.lcdc, p.stat = 0x91, 0x00
	p.scy, p.scx = 0, 0
	p.ly, p.lyc = 0, 0
	p.dma = 0
	p.bgp, p.obp0, p.obp1 = 0xFC, 0xFF, 0xFF
	p.wy, p.wx = 0, 0
	p.dot = 0
}

func (p *PPU) ReadVRAM(addr uint16) byte     { return p.VRAM[addr] }
func (p *PPU) WriteVRAM(addr uint16, v byte) { p.VRAM[addr] = v }
func (p *PPU) ReadOAM(addr uint16) byte      { return p.OAM[addr] }
func (p *PPU) WriteOAM(addr uint16, v byte)  { p.OAM[addr] = v }

// ReadRegister implements bus.PPU for the 0xFF40-0xFF4B window.
func (p *PPU) ReadRegister(addr uint16) byte {
	switch addr {
	case regLCDC:
		return p.lcdc
	case regSTAT:
		return p.stat | 0x80 // bit 7 unused, reads as 1
	case regSCY:
		return p.scy
	case regSCX:
		return p.scx
	case regLY:
		return p.ly
	case regLYC:
		return p.lyc
	case regDMA:
		return p.dma
	case regBGP:
		return p.bgp
	case regOBP0:
		return p.obp0
	case regOBP1:
		return p.obp1
	case regWY:
		return p.wy
	case regWX:
		return p.wx
	}
	return 0xFF
}

// WriteRegister implements bus.PPU for the 0xFF40-0xFF4B window.
func (p *PPU) WriteRegister(addr uint16, v byte) {
	switch addr {
	case regLCDC:
		p.lcdc = v
		if p.lcdc&0x80 == 0 {
			// LCD off: reset at once to dot 0 of line 0 in HBlank;
			// Step does not advance until the LCD is switched on.
			p.dot = 0
			p.ly = 0
			p.setMode(ModeHBlank)
		}
	case regSTAT:
		p.stat = (p.stat & 0x03) | (v &^ 0x03)
	case regSCY:
		p.scy = v
	case regSCX:
		p.scx = v
	case regLY:
		// LY is read-only on real hardware.
	case regLYC:
		p.lyc = v
	case regDMA:
		p.dma = v
	case regBGP:
		p.bgp = v
	case regOBP0:
		p.obp0 = v
	case regOBP1:
		p.obp1 = v
	case regWY:
		p.wy = v
	case regWX:
		p.wx = v
	}
}

func (p *PPU) mode() byte     { return p.stat & 0x03 }
func (p *PPU) setMode(m byte) { p.stat = (p.stat &^ 0x03) | m }

// Step advances the PPU by cycles dots, the count the CPU's last
// instruction consumed. It drives LY, the STAT mode bits, the VBlank
// interrupt raise, and the background renderer at the end of each
// visible line, per spec §4.6.
func (p *PPU) Step(cycles uint32) {
	if p.lcdc&0x80 == 0 {
		return
	}
	for i := uint32(0); i < cycles; i++ {
		p.tick()
	}
}

func (p *PPU) tick() {
	if p.ly < ScreenHeight {
		switch {
		case p.dot < mode2End:
			p.setMode(ModeOAM)
		case p.dot < mode3End:
			p.setMode(ModeDraw)
		default:
			p.setMode(ModeHBlank)
		}
	} else {
		p.setMode(ModeVBlank)
	}

	p.dot++
	if p.dot < dotsPerScanline {
		return
	}
	p.dot = 0

	if p.ly < ScreenHeight {
		p.renderScanline()
	}

	p.ly++
	switch {
	case p.ly == ScreenHeight:
		p.Interrupts.Raise(bitVBlank)
	case p.ly > lastLine:
		p.ly = 0
	}
}

// renderScanline renders background line p.ly into the framebuffer, per
// spec §4.6. Sprites and the window layer are not drawn.
func (p *PPU) renderScanline() {
	line := p.ly

	if p.lcdc&0x01 == 0 {
		for x := 0; x < ScreenWidth; x++ {
			p.Framebuffer[line][x] = shades[0]
		}
		return
	}

	mapBase := uint16(0x1800)
	if p.lcdc&0x08 != 0 {
		mapBase = 0x1C00
	}
	unsignedAddressing := p.lcdc&0x10 != 0

	for x := 0; x < ScreenWidth; x++ {
		bgX := byte(x) + p.scx
		bgY := line + p.scy

		tileCol := uint16(bgX / 8)
		tileRow := uint16(bgY / 8)
		tileIdx := p.VRAM[mapBase+tileRow*32+tileCol]

		var tileAddr uint16
		if unsignedAddressing {
			tileAddr = uint16(tileIdx) * 16
		} else {
			tileAddr = uint16(int32(0x1000) + int32(int8(tileIdx))*16)
		}

		rowInTile := uint16(bgY % 8)
		lo := p.VRAM[tileAddr+rowInTile*2]
		hi := p.VRAM[tileAddr+rowInTile*2+1]

		bit := 7 - (bgX % 8)
		loBit := (lo >> bit) & 1
		hiBit := (hi >> bit) & 1
		colorIdx := (hiBit << 1) | loBit

		shade := (p.bgp >> (colorIdx * 2)) & 0x3
		p.Framebuffer[line][x] = shades[shade]
	}
}
