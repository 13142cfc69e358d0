package peripheral

import "github.com/8bit-systems/c64core/io"

// ciaRegisterNames names the 16 CIA registers, shared by CIA1 ($DC00-$DCFF)
// and CIA2 ($DD00-$DDFF) which are identical chips wired to different
// ports and interrupt lines. Ported from the reference register map (see
// DESIGN.md). Timer countdown, the time-of-day clock, keyboard matrix
// scanning, and serial/IEC bit-banging are all out of scope - this is a
// register file a debugger can read, not a running timer.
var ciaRegisterNames = map[uint16]string{
	0x0: "data port A", 0x1: "data port B",
	0x2: "data direction A", 0x3: "data direction B",
	0x4: "timer A low", 0x5: "timer A high",
	0x6: "timer B low", 0x7: "timer B high",
	0x8: "TOD 1/10 seconds", 0x9: "TOD seconds",
	0xA: "TOD minutes", 0xB: "TOD hours + AM/PM",
	0xC: "serial data buffer",
	0xD: "interrupt control", 0xE: "control register A", 0xF: "control register B",
}

// CIA stubs a 6526 Complex Interface Adapter's 16 register window. On real
// hardware CIA1's ports are wired to the keyboard matrix and both joystick
// ports; PortA/PortB let a caller attach whatever drives those lines (a
// keyboard matrix scanner, a joystick reader) without the CIA itself
// knowing what's on the other end.
type CIA struct {
	registerFile
	PortA, PortB io.Port8
}

func NewCIA(name string) *CIA {
	return &CIA{registerFile: newRegisterFile(name, ciaRegisterNames)}
}

func (c *CIA) Tick() {}

// ReadRegister masks addr down to the 16 register offsets the chip decodes
// (it's mirrored 16 times across its 256 byte window). Port A/B reads
// reflect the attached Port8's input for any bit the data direction
// register (0x2/0x3) leaves configured as input; output-configured bits
// read back whatever was last written, same as the 6510's own I/O port.
func (c *CIA) ReadRegister(addr uint16) uint8 {
	reg := addr & 0xF
	var val uint8
	switch {
	case reg == 0x0 && c.PortA != nil:
		dir := c.shadow[0x2]
		val = (c.shadow[0x0] & dir) | (c.PortA.Input() &^ dir)
	case reg == 0x1 && c.PortB != nil:
		dir := c.shadow[0x3]
		val = (c.shadow[0x1] & dir) | (c.PortB.Input() &^ dir)
	default:
		val = c.shadow[reg]
	}
	c.log("read", reg, 0)
	return val
}

func (c *CIA) WriteRegister(addr uint16, val uint8) {
	reg := addr & 0xF
	c.log("write", reg, val)
	c.shadow[reg] = val
}
