package bus

import "testing"

func TestReadWriteRAMRoundTrip(t *testing.T) {
	b := New()
	b.Write(0x4000, 0x42)
	if got := b.Read(0x4000); got != 0x42 {
		t.Errorf("Read(0x4000) = 0x%.2X, want 0x42", got)
	}
}

func TestIODirectionAndPortLatch(t *testing.T) {
	b := New()
	if got := b.Read(addrDataDirection); got != 0x2F {
		t.Errorf("Read($0000) = 0x%.2X, want 0x2F (PowerOn default)", got)
	}
	if got := b.Read(addrIOPort); got != 0xF7 {
		t.Errorf("Read($0001) = 0x%.2X, want 0xF7 (PowerOn latch 0x37, input bits 4/6/7 pulled high)", got)
	}

	// Bits configured as input float high regardless of what's written.
	b.Write(addrDataDirection, 0x00)
	b.Write(addrIOPort, 0x00)
	if got := b.Read(addrIOPort); got != 0xFF {
		t.Errorf("Read($0001) with ioDir=0x00 = 0x%.2X, want 0xFF (all input, pulled up)", got)
	}

	// Bits configured as output read back what was last written.
	b.Write(addrDataDirection, 0xFF)
	b.Write(addrIOPort, 0x05)
	if got := b.Read(addrIOPort); got != 0x05 {
		t.Errorf("Read($0001) with ioDir=0xFF = 0x%.2X, want 0x05", got)
	}
}

func TestLoadROMsSizeValidation(t *testing.T) {
	b := New()
	basic := make([]uint8, basicROMSize)
	char := make([]uint8, charROMSize)
	kernal := make([]uint8, kernalROMSize)

	if err := b.LoadROMs(basic[:len(basic)-1], char, kernal); err == nil {
		t.Error("LoadROMs with short basic ROM: want error, got nil")
	} else if e, ok := err.(ErrROMSize); !ok || e.Name != "basic" {
		t.Errorf("LoadROMs with short basic ROM: got %v, want ErrROMSize{Name: \"basic\"}", err)
	}

	if err := b.LoadROMs(basic, char[:len(char)-1], kernal); err == nil {
		t.Error("LoadROMs with short char ROM: want error, got nil")
	} else if e, ok := err.(ErrROMSize); !ok || e.Name != "char" {
		t.Errorf("LoadROMs with short char ROM: got %v, want ErrROMSize{Name: \"char\"}", err)
	}

	if err := b.LoadROMs(basic, char, kernal[:len(kernal)-1]); err == nil {
		t.Error("LoadROMs with short kernal ROM: want error, got nil")
	} else if e, ok := err.(ErrROMSize); !ok || e.Name != "kernal" {
		t.Errorf("LoadROMs with short kernal ROM: got %v, want ErrROMSize{Name: \"kernal\"}", err)
	}
}

func TestLoadROMsAndBankedRead(t *testing.T) {
	b := New()
	basic := make([]uint8, basicROMSize)
	char := make([]uint8, charROMSize)
	kernal := make([]uint8, kernalROMSize)
	basic[0] = 0xAA
	kernal[0] = 0xBB
	char[0] = 0xCC
	if err := b.LoadROMs(basic, char, kernal); err != nil {
		t.Fatalf("LoadROMs: unexpected error %v", err)
	}

	// Default PowerOn control port (LORAM/HIRAM/CHAREN all set, GAME/EXROM
	// high) banks in BASIC and KERNAL ROM, and the I/O window at $D000,
	// not char ROM.
	if got := b.Read(basicROMBase); got != 0xAA {
		t.Errorf("Read(basic ROM base) = 0x%.2X, want 0xAA", got)
	}
	if got := b.Read(kernalROMBase); got != 0xBB {
		t.Errorf("Read(kernal ROM base) = 0x%.2X, want 0xBB", got)
	}

	// Clear CHAREN (bit 2 of $0001) so char ROM is banked in at $D000
	// instead of the I/O window.
	b.Write(addrIOPort, 0x33)
	if got := b.Read(charROMBase); got != 0xCC {
		t.Errorf("Read(char ROM base) with CHAREN clear = 0x%.2X, want 0xCC", got)
	}
}

func TestWriteToROMIsDropped(t *testing.T) {
	b := New()
	basic := make([]uint8, basicROMSize)
	char := make([]uint8, charROMSize)
	kernal := make([]uint8, kernalROMSize)
	basic[0] = 0xAA
	if err := b.LoadROMs(basic, char, kernal); err != nil {
		t.Fatalf("LoadROMs: unexpected error %v", err)
	}
	b.Write(basicROMBase, 0x99)
	if got := b.Read(basicROMBase); got != 0xAA {
		t.Errorf("Read(basic ROM base) after write = 0x%.2X, want 0xAA unchanged", got)
	}
}

func TestPeripheralRegisterRouting(t *testing.T) {
	b := New()

	b.Write(0xD000, 0x11)
	if got := b.video.ReadRegister(0xD000); got != 0x11 {
		t.Errorf("video register after bus write = 0x%.2X, want 0x11", got)
	}

	b.Write(0xD41B, 0x22)
	if got := b.sound.ReadRegister(0xD41B); got != 0x22 {
		t.Errorf("sound register after bus write = 0x%.2X, want 0x22", got)
	}

	b.Write(0xDC00, 0x33)
	if got := b.cia1.ReadRegister(0xDC00); got != 0x33 {
		t.Errorf("CIA1 register after bus write = 0x%.2X, want 0x33", got)
	}

	b.Write(0xDD00, 0x44)
	if got := b.cia2.ReadRegister(0xDD00); got != 0x44 {
		t.Errorf("CIA2 register after bus write = 0x%.2X, want 0x44", got)
	}

	// Color RAM is nibble wide; only the low 4 bits stick.
	b.Write(0xD800, 0xFF)
	if got := b.Read(0xD800); got != 0x0F {
		t.Errorf("Read(colorRAM) = 0x%.2X, want 0x0F (nibble masked)", got)
	}

	b.Write(0xDE00, 0x55)
	if got := b.Read(0xDE00); got != 0x55 {
		t.Errorf("Read(io1) = 0x%.2X, want 0x55", got)
	}
	b.Write(0xDF00, 0x66)
	if got := b.Read(0xDF00); got != 0x66 {
		t.Errorf("Read(io2) = 0x%.2X, want 0x66", got)
	}
}

func TestDatabusValTracksLastAccess(t *testing.T) {
	b := New()
	b.Write(0x4000, 0x77)
	if got := b.DatabusVal(); got != 0x77 {
		t.Errorf("DatabusVal() after write = 0x%.2X, want 0x77", got)
	}
	b.Write(0x5000, 0x88)
	b.Read(0x4000)
	if got := b.DatabusVal(); got != 0x77 {
		t.Errorf("DatabusVal() after read = 0x%.2X, want 0x77 (value read back)", got)
	}
}

func TestWriteRAMReadRAMBypassPLA(t *testing.T) {
	b := New()
	basic := make([]uint8, basicROMSize)
	char := make([]uint8, charROMSize)
	kernal := make([]uint8, kernalROMSize)
	if err := b.LoadROMs(basic, char, kernal); err != nil {
		t.Fatalf("LoadROMs: unexpected error %v", err)
	}

	// Even with BASIC ROM banked in over $A000-$BFFF, WriteRAM/ReadRAM
	// reach the RAM underneath it directly.
	b.WriteRAM(basicROMBase, 0x12)
	if got := b.ReadRAM(basicROMBase); got != 0x12 {
		t.Errorf("ReadRAM(basic ROM base) = 0x%.2X, want 0x12", got)
	}
	if got := b.Read(basicROMBase); got == 0x12 {
		t.Error("Read(basic ROM base) should see banked-in ROM, not the RAM WriteRAM touched")
	}
}

func TestDumpRAMWritesFullImage(t *testing.T) {
	b := New()
	b.WriteRAM(0x1234, 0xAB)

	var buf countingWriter
	if err := b.DumpRAM(&buf); err != nil {
		t.Fatalf("DumpRAM: unexpected error %v", err)
	}
	if buf.n != 65536 {
		t.Errorf("DumpRAM wrote %d bytes, want 65536", buf.n)
	}
}

type countingWriter struct {
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += len(p)
	return len(p), nil
}
