package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

const (
	testReset = uint16(0x1FFE)
	testIRQ   = uint16(0xD001)
	testNMI   = uint16(0xD101)
)

// flatMemory implements the Ram interface with a single 64K address space.
type flatMemory struct {
	addr [65536]uint8
	fill uint8
}

func (r *flatMemory) Read(addr uint16) uint8 {
	return r.addr[addr]
}

func (r *flatMemory) Write(addr uint16, val uint8) {
	r.addr[addr] = val
}

func (r *flatMemory) PowerOn() {
	for i := range r.addr {
		r.addr[i] = r.fill
	}
	r.addr[RESET_VECTOR] = uint8(testReset & 0xFF)
	r.addr[RESET_VECTOR+1] = uint8(testReset >> 8)
	r.addr[IRQ_VECTOR] = uint8(testIRQ & 0xFF)
	r.addr[IRQ_VECTOR+1] = uint8(testIRQ >> 8)
	r.addr[NMI_VECTOR] = uint8(testNMI & 0xFF)
	r.addr[NMI_VECTOR+1] = uint8(testNMI >> 8)
}

// setup powers on a CPU of the given type against a flatMemory filled with fill,
// then parks PC/A/X/Y/S/P at known values so tests aren't at the mercy of the
// randomized power-on state.
func setup(t *testing.T, cpuType CPUType, fill uint8) (*Chip, *flatMemory) {
	t.Helper()
	r := &flatMemory{fill: fill}
	c, err := Init(&ChipDef{Cpu: cpuType, Ram: r})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	c.PC = testReset
	c.A, c.X, c.Y = 0, 0, 0
	c.S = 0xFD
	c.P = P_S1
	return c, r
}

// step runs Tick/TickDone until the current instruction completes, returning
// the number of cycles it took.
func step(t *testing.T, c *Chip) (int, error) {
	t.Helper()
	cycles := 0
	for {
		err := c.Tick()
		cycles++
		c.TickDone()
		if err != nil {
			return cycles, err
		}
		if c.InstructionDone() {
			return cycles, nil
		}
		if cycles > 10 {
			t.Fatalf("instruction didn't complete in 10 ticks, state: %s", spew.Sdump(c))
		}
	}
}

func TestLDAImmediate(t *testing.T) {
	c, r := setup(t, CPU_NMOS, 0xEA)
	r.addr[testReset] = 0xA9 // LDA #i
	r.addr[testReset+1] = 0x00

	cycles, err := step(t, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cycles != 2 {
		t.Errorf("LDA #0x00 took %d cycles, want 2", cycles)
	}
	if c.A != 0x00 {
		t.Errorf("A = 0x%.2X, want 0x00", c.A)
	}
	if c.P&P_ZERO == 0 {
		t.Errorf("Z flag not set for LDA #0x00: P = 0x%.2X", c.P)
	}

	r.addr[testReset] = 0xA9
	r.addr[testReset+1] = 0x80
	c.PC = testReset
	if _, err := step(t, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.A != 0x80 {
		t.Errorf("A = 0x%.2X, want 0x80", c.A)
	}
	if c.P&P_NEGATIVE == 0 {
		t.Errorf("N flag not set for LDA #0x80: P = 0x%.2X", c.P)
	}
}

func TestADCBinaryOverflow(t *testing.T) {
	c, r := setup(t, CPU_NMOS, 0xEA)
	c.A = 0x7F
	c.P &^= P_DECIMAL
	c.P &^= P_CARRY
	r.addr[testReset] = 0x69 // ADC #i
	r.addr[testReset+1] = 0x01

	if _, err := step(t, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.A != 0x80 {
		t.Errorf("A = 0x%.2X, want 0x80", c.A)
	}
	if c.P&P_OVERFLOW == 0 {
		t.Errorf("V flag not set on signed overflow: P = 0x%.2X", c.P)
	}
	if c.P&P_NEGATIVE == 0 {
		t.Errorf("N flag not set: P = 0x%.2X", c.P)
	}
	if c.P&P_CARRY != 0 {
		t.Errorf("C flag should not be set: P = 0x%.2X", c.P)
	}
}

func TestADCDecimalMode(t *testing.T) {
	c, r := setup(t, CPU_NMOS, 0xEA)
	c.A = 0x58
	c.P |= P_DECIMAL
	c.P &^= P_CARRY
	r.addr[testReset] = 0x69 // ADC #i
	r.addr[testReset+1] = 0x46

	if _, err := step(t, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 58 + 46 BCD = 104 -> carry set, A = 0x04
	if c.A != 0x04 {
		t.Errorf("A = 0x%.2X, want 0x04 (BCD 58+46=104)", c.A)
	}
	if c.P&P_CARRY == 0 {
		t.Errorf("C flag not set for BCD carry out: P = 0x%.2X", c.P)
	}
}

func TestSBCDecimalMode(t *testing.T) {
	c, r := setup(t, CPU_NMOS, 0xEA)
	c.A = 0x46
	c.P |= P_DECIMAL
	c.P |= P_CARRY // no borrow going in
	r.addr[testReset] = 0xE9 // SBC #i
	r.addr[testReset+1] = 0x12

	if _, err := step(t, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 46 - 12 BCD = 34
	if c.A != 0x34 {
		t.Errorf("A = 0x%.2X, want 0x34 (BCD 46-12=34)", c.A)
	}
	if c.P&P_CARRY == 0 {
		t.Errorf("C flag should remain set (no borrow): P = 0x%.2X", c.P)
	}
}

func TestAbsoluteXPageCrossPenalty(t *testing.T) {
	c, r := setup(t, CPU_NMOS, 0xEA)
	c.X = 0x01
	r.addr[testReset] = 0xBD // LDA a,x
	r.addr[testReset+1] = 0xFF
	r.addr[testReset+2] = 0x00
	r.addr[0x0100] = 0x42 // target after page cross: 0x00FF + 1 = 0x0100

	cycles, err := step(t, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cycles != 5 {
		t.Errorf("LDA a,x page-crossing took %d cycles, want 5", cycles)
	}
	if c.A != 0x42 {
		t.Errorf("A = 0x%.2X, want 0x42", c.A)
	}

	// Non-crossing case: base 0x0010 + X 0x01 stays on the same page, 4 cycles.
	c.PC = testReset
	r.addr[testReset] = 0xBD
	r.addr[testReset+1] = 0x10
	r.addr[testReset+2] = 0x00
	r.addr[0x0011] = 0x24
	cycles, err = step(t, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cycles != 4 {
		t.Errorf("LDA a,x non-crossing took %d cycles, want 4", cycles)
	}
	if c.A != 0x24 {
		t.Errorf("A = 0x%.2X, want 0x24", c.A)
	}
}

func TestJMPIndirectPageWrapBug(t *testing.T) {
	c, r := setup(t, CPU_NMOS, 0xEA)
	r.addr[testReset] = 0x6C // JMP (a)
	r.addr[testReset+1] = 0xFF
	r.addr[testReset+2] = 0x02
	// NMOS bug: the high byte is fetched from 0x0200, not 0x0300, because
	// the low-byte fetch wraps within the same page instead of crossing it.
	r.addr[0x02FF] = 0x34
	r.addr[0x0200] = 0x12
	r.addr[0x0300] = 0xAA // would be used if the bug weren't present

	if _, err := step(t, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.PC != 0x1234 {
		t.Errorf("PC = 0x%.4X, want 0x1234 (NMOS page-wrap bug)", c.PC)
	}
}

func TestJMPIndirectCMOSFixesPageWrap(t *testing.T) {
	c, r := setup(t, CPU_CMOS, 0xEA)
	r.addr[testReset] = 0x6C // JMP (a)
	r.addr[testReset+1] = 0xFF
	r.addr[testReset+2] = 0x02
	r.addr[0x02FF] = 0x34
	r.addr[0x0300] = 0xAA

	if _, err := step(t, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.PC != 0xAA34 {
		t.Errorf("PC = 0x%.4X, want 0xAA34 (CMOS fixes the page wrap)", c.PC)
	}
}

func TestBRKRTIRoundTrip(t *testing.T) {
	c, r := setup(t, CPU_NMOS, 0xEA)
	c.A = 0x55
	c.P = P_S1 | P_ZERO
	startS := c.S
	r.addr[testReset] = 0x00 // BRK
	r.addr[testIRQ] = 0x40   // RTI at the IRQ vector target

	if _, err := step(t, c); err != nil {
		t.Fatalf("BRK: unexpected error: %v", err)
	}
	if c.PC != testIRQ {
		t.Errorf("PC after BRK = 0x%.4X, want 0x%.4X", c.PC, testIRQ)
	}
	if c.P&P_INTERRUPT == 0 {
		t.Errorf("I flag not set after BRK: P = 0x%.2X", c.P)
	}
	if c.S != startS-3 {
		t.Errorf("S after BRK = 0x%.2X, want 0x%.2X (PC hi/lo + P pushed)", c.S, startS-3)
	}

	if _, err := step(t, c); err != nil {
		t.Fatalf("RTI: unexpected error: %v", err)
	}
	if c.PC != testReset+2 {
		t.Errorf("PC after RTI = 0x%.4X, want 0x%.4X", c.PC, testReset+2)
	}
	if c.S != startS {
		t.Errorf("S after RTI = 0x%.2X, want 0x%.2X (restored)", c.S, startS)
	}
	if c.P&P_ZERO == 0 {
		t.Errorf("Z flag lost across BRK/RTI round trip: P = 0x%.2X", c.P)
	}
}

func TestIllegalOpcodeIsCycleAccurateNOP(t *testing.T) {
	c, r := setup(t, CPU_NMOS, 0xEA)
	c.X = 0x01
	r.addr[testReset] = 0x03 // SLO (d,x) - illegal, now a no-op
	r.addr[testReset+1] = 0x10
	r.addr[0x0011] = 0x34
	r.addr[0x0012] = 0x12
	r.addr[0x1234] = 0x99
	before := r.addr[0x1234]

	cycles, err := step(t, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cycles != 8 {
		t.Errorf("SLO (d,x) took %d cycles, want 8 (matches real RMW indirect,X timing)", cycles)
	}
	if r.addr[0x1234] != before {
		t.Errorf("illegal opcode wrote memory: 0x1234 = 0x%.2X, want unchanged 0x%.2X", r.addr[0x1234], before)
	}
}

func TestIllegalStoreOpcodeIsNOP(t *testing.T) {
	c, r := setup(t, CPU_NMOS, 0xEA)
	c.X = 0x01
	r.addr[testReset] = 0x9C // SHY a,x - illegal store shape, now a no-op
	r.addr[testReset+1] = 0x00
	r.addr[testReset+2] = 0x20
	r.addr[0x2001] = 0x77
	before := r.addr[0x2001]

	if _, err := step(t, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.addr[0x2001] != before {
		t.Errorf("illegal store opcode wrote memory: 0x2001 = 0x%.2X, want unchanged 0x%.2X", r.addr[0x2001], before)
	}
}

func TestJAMHaltsCPU(t *testing.T) {
	c, r := setup(t, CPU_NMOS, 0xEA)
	r.addr[testReset] = 0x02 // JAM

	_, err := step(t, c)
	if err == nil {
		t.Fatalf("expected a HaltOpcode error, got nil")
	}
	if _, ok := err.(HaltOpcode); !ok {
		t.Fatalf("expected HaltOpcode, got %T: %v", err, err)
	}

	// Once halted it should keep returning the same error on every subsequent tick.
	if err := c.Tick(); err == nil {
		t.Errorf("expected Tick() to keep returning an error once halted")
	} else if _, ok := err.(HaltOpcode); !ok {
		t.Errorf("expected HaltOpcode on repeat tick, got %T: %v", err, err)
	}
	c.TickDone()
}

func TestCompareSetsFlags(t *testing.T) {
	c, r := setup(t, CPU_NMOS, 0xEA)
	c.A = 0x40
	r.addr[testReset] = 0xC9 // CMP #i
	r.addr[testReset+1] = 0x40

	if _, err := step(t, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.P&P_ZERO == 0 {
		t.Errorf("Z flag not set for equal compare: P = 0x%.2X", c.P)
	}
	if c.P&P_CARRY == 0 {
		t.Errorf("C flag not set for A >= operand: P = 0x%.2X", c.P)
	}
}

func TestResetLoadsVector(t *testing.T) {
	c, _ := setup(t, CPU_NMOS, 0xEA)
	c.PC = 0x0000
	for {
		done, err := c.Reset()
		if err != nil {
			t.Fatalf("Reset: unexpected error %v", err)
		}
		if done {
			break
		}
	}
	if c.PC != testReset {
		t.Errorf("PC after Reset = 0x%.4X, want 0x%.4X", c.PC, testReset)
	}
	if c.P&P_S1 == 0 {
		t.Errorf("P_S1 bit should always be set: P = 0x%.2X", c.P)
	}
}
