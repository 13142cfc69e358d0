package peripheral

import "testing"

func TestVideoRegisterShadowRoundTrip(t *testing.T) {
	v := NewVideo()
	v.WriteRegister(0xD020, 0x0E)
	if got := v.ReadRegister(0xD020); got != 0x0E {
		t.Errorf("ReadRegister(border color) = 0x%.2X, want 0x0E", got)
	}
}

func TestVideoRegisterMirroring(t *testing.T) {
	v := NewVideo()
	v.WriteRegister(0xD020, 0x05)
	// $D060 is $D020 + 0x40, one mirror period further into the window.
	if got := v.ReadRegister(0xD060); got != 0x05 {
		t.Errorf("ReadRegister(mirrored border color) = 0x%.2X, want 0x05", got)
	}
}

func TestVideoGraphicModeDerivation(t *testing.T) {
	v := NewVideo()
	v.WriteRegister(0xD011, 0x00)
	v.WriteRegister(0xD016, 0x00)
	if v.Mode != CharMode {
		t.Errorf("Mode = %v, want CharMode", v.Mode)
	}

	v.WriteRegister(0xD016, 0x10) // MCM set
	if v.Mode != MulticolorCharMode {
		t.Errorf("Mode = %v, want MulticolorCharMode", v.Mode)
	}

	v.WriteRegister(0xD011, 0x20) // BMM set, MCM still set
	if v.Mode != MulticolorBitmapMode {
		t.Errorf("Mode = %v, want MulticolorBitmapMode", v.Mode)
	}

	v.WriteRegister(0xD011, 0x60) // ECM+BMM set, MCM still set -> illegal
	if v.Mode != IllegalMode {
		t.Errorf("Mode = %v, want IllegalMode", v.Mode)
	}
}

func TestSoundReadbackRegistersOnly(t *testing.T) {
	s := NewSound()
	s.WriteRegister(0xD41B, 0x42) // voice 3 oscillator, a readback register
	if got := s.ReadRegister(0xD41B); got != 0x42 {
		t.Errorf("ReadRegister(voice 3 oscillator) = 0x%.2X, want 0x42", got)
	}

	s.WriteRegister(0xD400, 0x99) // voice 1 frequency low, write-only
	if got := s.ReadRegister(0xD400); got != 0x00 {
		t.Errorf("ReadRegister(voice 1 frequency low) = 0x%.2X, want 0x00 (open bus)", got)
	}
}

func TestCIARegisterShadowRoundTrip(t *testing.T) {
	c := NewCIA("CIA1")
	c.WriteRegister(0xDC0E, 0x11) // control register A
	if got := c.ReadRegister(0xDC0E); got != 0x11 {
		t.Errorf("ReadRegister(control A) = 0x%.2X, want 0x11", got)
	}
}

// fakePort8 is a fixed Input() value, standing in for whatever real line
// (keyboard matrix, joystick) would be attached to a CIA port in practice.
type fakePort8 uint8

func (f fakePort8) Input() uint8 { return uint8(f) }

func TestCIAPortAReadsAttachedInputForInputBits(t *testing.T) {
	c := NewCIA("CIA1")
	c.PortA = fakePort8(0xF0)

	// Data direction A: low nibble output, high nibble input.
	c.WriteRegister(0xDC02, 0x0F)
	c.WriteRegister(0xDC00, 0x05) // drive the output-configured low nibble

	got := c.ReadRegister(0xDC00)
	want := uint8(0xF5) // high nibble from PortA.Input(), low nibble from shadow
	if got != want {
		t.Errorf("ReadRegister(port A) = 0x%.2X, want 0x%.2X", got, want)
	}
}

func TestCIAPortBReadsShadowWhenUnattached(t *testing.T) {
	c := NewCIA("CIA1")
	c.WriteRegister(0xDC01, 0xAB)
	if got := c.ReadRegister(0xDC01); got != 0xAB {
		t.Errorf("ReadRegister(port B) with no PortB attached = 0x%.2X, want 0xAB (plain shadow)", got)
	}
}

func TestRegisterFileDebugLog(t *testing.T) {
	c := NewCIA("CIA1")
	c.Debug = true
	c.WriteRegister(0xDC0D, 0x01) // interrupt control
	c.ReadRegister(0xDC0D)

	log := c.Log()
	if len(log) != 2 {
		t.Fatalf("Log() returned %d entries, want 2", len(log))
	}
	if log[0] != "write CIA1 interrupt control" {
		t.Errorf("log[0] = %q, want %q", log[0], "write CIA1 interrupt control")
	}
	if log[1] != "read CIA1 interrupt control" {
		t.Errorf("log[1] = %q, want %q", log[1], "read CIA1 interrupt control")
	}

	// Log() clears accumulated history.
	if got := c.Log(); len(got) != 0 {
		t.Errorf("Log() after drain returned %d entries, want 0", len(got))
	}
}
