// Package bus implements the C64 address space: the PLA bank switch
// decoder sitting in front of RAM, ROM, and the I/O register window, plus
// the 6510's on-chip I/O port at $0000/$0001 that feeds it.
package bus

import (
	"fmt"
	"io"

	"github.com/8bit-systems/c64core/memory"
	"github.com/8bit-systems/c64core/peripheral"
)

const (
	addrDataDirection = 0x0000
	addrIOPort        = 0x0001
)

// ErrROMSize is returned when a ROM image handed to LoadROMs isn't the
// exact size the corresponding ROM socket expects.
type ErrROMSize struct {
	Name     string
	Got      int
	Expected int
}

func (e ErrROMSize) Error() string {
	return fmt.Sprintf("%s ROM is %d bytes, want %d", e.Name, e.Got, e.Expected)
}

// Bus ties RAM, ROM, and the I/O register window together behind the PLA's
// bank switch decoder. It is the only thing the CPU ever talks to.
type Bus struct {
	ram memory.Bank

	basicROM  memory.Bank
	charROM   memory.Bank
	kernalROM memory.Bank

	ioPort uint8 // latched value of $0001 (LORAM/HIRAM/CHAREN in bits 0-2)
	ioDir  uint8 // latched value of $0000, 1 bit == output

	game  bool
	exrom bool

	video *peripheral.Video
	sound *peripheral.Sound
	cia1  *peripheral.CIA
	cia2  *peripheral.CIA

	colorRAM [1024]uint8 // $D800-$DBFF, nibble wide but stored byte wide
	io1      [256]uint8  // $DE00-$DEFF, unassigned cartridge I/O
	io2      [256]uint8  // $DF00-$DFFF, unassigned cartridge I/O

	lastDatabusVal uint8
}

// New returns a Bus with its peripheral stubs wired into the I/O window and
// everything else powered on (randomized RAM, GAME/EXROM held high as they
// are with no cartridge present).
func New() *Bus {
	ram, err := memory.New8BitRAMBank(65536, nil)
	if err != nil {
		// 65536 is always a valid power-of-2 RAM bank size; this would only
		// fail if that invariant were broken.
		panic(err)
	}
	b := &Bus{
		ram:   ram,
		game:  true,
		exrom: true,
		video: peripheral.NewVideo(),
		sound: peripheral.NewSound(),
		cia1:  peripheral.NewCIA("CIA1"),
		cia2:  peripheral.NewCIA("CIA2"),
	}
	b.PowerOn()
	return b
}

// Video, Sound, CIA1, CIA2 expose the peripheral stubs registered on this
// bus, for callers (the host runtime, tests) that need to reach past the
// register window and inspect or tick them directly.
func (b *Bus) Video() *peripheral.Video { return b.video }
func (b *Bus) Sound() *peripheral.Sound { return b.sound }
func (b *Bus) CIA1() *peripheral.CIA    { return b.cia1 }
func (b *Bus) CIA2() *peripheral.CIA    { return b.cia2 }

// SetCartridge sets the two bank switch pins a cartridge port drives. With
// nothing plugged in both read high, which is the New() default.
func (b *Bus) SetCartridge(game, exrom bool) {
	b.game = game
	b.exrom = exrom
}

// PowerOn randomizes RAM (matching real SRAM power-on behavior) and resets
// the I/O port latches to the values the KERNAL expects to find them in:
// direction $2F (bits 0-3 and 5 output, bits 4, 6 and 7 input) and port
// $37, LORAM/HIRAM/CHAREN all set so BASIC and KERNAL ROM plus the I/O
// window are all banked in.
func (b *Bus) PowerOn() {
	b.ram.PowerOn()
	b.ioDir = 0x2F
	b.ioPort = 0x37
	b.ram.Write(addrDataDirection, b.ioDir)
	b.ram.Write(addrIOPort, b.ioPort)
}

// activeControlPort assembles the live 5 bit PLA select word. Bits configured as
// input on the direction register float high (the real 6510's weak
// pull-ups), since nothing on the C64 board pulls them low by default.
func (b *Bus) activeControlPort() uint8 {
	port := (b.ioPort & b.ioDir) | (^b.ioDir)
	return controlPort(port, b.game, b.exrom)
}

// Read resolves addr through the PLA and returns the byte from whichever
// backing store it lands on. Every 16 bit address resolves to something;
// there is no bus error path.
func (b *Bus) Read(addr uint16) uint8 {
	if addr == addrDataDirection {
		b.lastDatabusVal = b.ioDir
		return b.ioDir
	}
	if addr == addrIOPort {
		// Unconnected (input) bits read back as 1 via the pull-ups; bits
		// configured as output read back whatever was last written.
		val := (b.ioPort & b.ioDir) | (^b.ioDir)
		b.lastDatabusVal = val
		return val
	}

	target, _ := decode(b.activeControlPort(), addr)
	val := b.readTarget(target, addr)
	b.lastDatabusVal = val
	return val
}

// Write resolves addr through the PLA and, if the resolved target is
// writable for the current bank configuration, stores val there. Writes to
// a read-only target are silently dropped, matching real hardware where the
// write pulse happens but nothing latches it.
func (b *Bus) Write(addr uint16, val uint8) {
	b.lastDatabusVal = val

	if addr == addrDataDirection {
		b.ioDir = val
		return
	}
	if addr == addrIOPort {
		b.ioPort = val
		return
	}

	target, writable := decode(b.activeControlPort(), addr)
	if !writable {
		return
	}
	b.writeTarget(target, addr, val)
}

func (b *Bus) readTarget(t Target, addr uint16) uint8 {
	switch t {
	case TargetROM:
		rom := b.romBankFor(addr)
		if rom == nil {
			return 0
		}
		return rom.Read(addr)
	case TargetIO:
		return b.readIO(addr)
	default:
		return b.ram.Read(addr)
	}
}

func (b *Bus) writeTarget(t Target, addr uint16, val uint8) {
	switch t {
	case TargetROM:
		// ROM is never writable; decode() never returns writable==true
		// for it, so this is unreachable in practice.
	case TargetIO:
		b.writeIO(addr, val)
	default:
		b.ram.Write(addr, val)
	}
}

// readIO/writeIO route the $D000-$DFFF window to whichever peripheral or
// shadow array owns that sub-range, per the I/O memory map.
func (b *Bus) readIO(addr uint16) uint8 {
	switch {
	case addr >= 0xD000 && addr <= 0xD3FF:
		return b.video.ReadRegister(addr)
	case addr >= 0xD400 && addr <= 0xD7FF:
		return b.sound.ReadRegister(addr)
	case addr >= 0xD800 && addr <= 0xDBFF:
		return b.colorRAM[addr-0xD800] & 0x0F
	case addr >= 0xDC00 && addr <= 0xDCFF:
		return b.cia1.ReadRegister(addr)
	case addr >= 0xDD00 && addr <= 0xDDFF:
		return b.cia2.ReadRegister(addr)
	case addr >= 0xDE00 && addr <= 0xDEFF:
		return b.io1[addr-0xDE00]
	default: // 0xDF00-0xDFFF
		return b.io2[addr-0xDF00]
	}
}

func (b *Bus) writeIO(addr uint16, val uint8) {
	switch {
	case addr >= 0xD000 && addr <= 0xD3FF:
		b.video.WriteRegister(addr, val)
	case addr >= 0xD400 && addr <= 0xD7FF:
		b.sound.WriteRegister(addr, val)
	case addr >= 0xD800 && addr <= 0xDBFF:
		b.colorRAM[addr-0xD800] = val & 0x0F
	case addr >= 0xDC00 && addr <= 0xDCFF:
		b.cia1.WriteRegister(addr, val)
	case addr >= 0xDD00 && addr <= 0xDDFF:
		b.cia2.WriteRegister(addr, val)
	case addr >= 0xDE00 && addr <= 0xDEFF:
		b.io1[addr-0xDE00] = val
	default: // 0xDF00-0xDFFF
		b.io2[addr-0xDF00] = val
	}
}

// Tick advances every peripheral stub by one cycle. Called once per CPU
// cycle from the runtime loop, after the CPU's own Tick().
func (b *Bus) Tick() {
	b.video.Tick()
	b.sound.Tick()
	b.cia1.Tick()
	b.cia2.Tick()
}

// DatabusVal returns the last byte that crossed the data bus, the value an
// open address range's read would float to on real hardware.
func (b *Bus) DatabusVal() uint8 {
	return b.lastDatabusVal
}

// WriteRAM stores val directly into the flat RAM array, bypassing the PLA.
// Used by the host runtime's key-injection hook, which pokes the keyboard
// buffer and its length at $0277/$00C6 the same way the KERNAL's own ISR
// does, regardless of the current bank configuration.
func (b *Bus) WriteRAM(addr uint16, val uint8) {
	b.ram.Write(addr, val)
}

// ReadRAM reads directly from the flat RAM array, bypassing the PLA.
func (b *Bus) ReadRAM(addr uint16) uint8 {
	return b.ram.Read(addr)
}

// DumpRAM writes the full 65,536 byte RAM image to w, the persisted-state
// format a save/restore or debugging tool would read back.
func (b *Bus) DumpRAM(w io.Writer) error {
	return memory.Dump(b.ram, w, 65536)
}
