package bus

import "testing"

// All 32 PLA control port configurations and what they resolve the four
// contested address ranges to. Ported from the reference mem_select truth
// table (see DESIGN.md); this is the hardware fact the decoder implements.
func TestDecodeAllConfigurations(t *testing.T) {
	type want struct {
		target    Target
		writable  bool
	}
	tests := []struct {
		port    uint8
		basic   want
		kernal  want
		charIO  want
		cartLow want
	}{
		{0, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}},
		{1, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}},
		{2, want{TargetROM, false}, want{TargetROM, false}, want{TargetROM, false}, want{TargetRAM, true}},
		{3, want{TargetROM, false}, want{TargetROM, false}, want{TargetROM, false}, want{TargetROM, false}},
		{4, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}},
		{5, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetIO, true}, want{TargetRAM, true}},
		{6, want{TargetROM, false}, want{TargetROM, false}, want{TargetIO, true}, want{TargetRAM, true}},
		{7, want{TargetROM, false}, want{TargetROM, false}, want{TargetIO, true}, want{TargetROM, false}},
		{8, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}},
		{9, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetROM, false}, want{TargetRAM, true}},
		{10, want{TargetRAM, true}, want{TargetROM, false}, want{TargetROM, false}, want{TargetRAM, true}},
		{11, want{TargetROM, false}, want{TargetROM, false}, want{TargetROM, false}, want{TargetROM, false}},
		{12, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}},
		{13, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetIO, true}, want{TargetRAM, true}},
		{14, want{TargetRAM, true}, want{TargetROM, false}, want{TargetIO, true}, want{TargetRAM, true}},
		{15, want{TargetROM, false}, want{TargetROM, false}, want{TargetIO, true}, want{TargetROM, false}},
		{16, want{TargetRAM, true}, want{TargetROM, false}, want{TargetIO, true}, want{TargetROM, false}},
		{17, want{TargetRAM, true}, want{TargetROM, false}, want{TargetIO, true}, want{TargetROM, false}},
		{18, want{TargetRAM, true}, want{TargetROM, false}, want{TargetIO, true}, want{TargetROM, false}},
		{19, want{TargetRAM, true}, want{TargetROM, false}, want{TargetIO, true}, want{TargetROM, false}},
		{20, want{TargetRAM, true}, want{TargetROM, false}, want{TargetIO, true}, want{TargetROM, false}},
		{21, want{TargetRAM, true}, want{TargetROM, false}, want{TargetIO, true}, want{TargetROM, false}},
		{22, want{TargetRAM, true}, want{TargetROM, false}, want{TargetIO, true}, want{TargetROM, false}},
		{23, want{TargetRAM, true}, want{TargetROM, false}, want{TargetIO, true}, want{TargetROM, false}},
		{24, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}},
		{25, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetROM, false}, want{TargetRAM, true}},
		{26, want{TargetRAM, true}, want{TargetROM, false}, want{TargetROM, false}, want{TargetRAM, true}},
		{27, want{TargetROM, false}, want{TargetROM, false}, want{TargetROM, false}, want{TargetRAM, true}},
		{28, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetRAM, true}},
		{29, want{TargetRAM, true}, want{TargetRAM, true}, want{TargetIO, true}, want{TargetRAM, true}},
		{30, want{TargetRAM, true}, want{TargetROM, false}, want{TargetIO, true}, want{TargetRAM, true}},
		{31, want{TargetROM, false}, want{TargetROM, false}, want{TargetIO, true}, want{TargetRAM, true}},
	}
	for _, tc := range tests {
		if target, writable := decode(tc.port, kBasicROMStart); target != tc.basic.target || writable != tc.basic.writable {
			t.Errorf("port %d basic ROM range: decode = (%v, %v), want (%v, %v)", tc.port, target, writable, tc.basic.target, tc.basic.writable)
		}
		if target, writable := decode(tc.port, kKernalROMStart); target != tc.kernal.target || writable != tc.kernal.writable {
			t.Errorf("port %d kernal ROM range: decode = (%v, %v), want (%v, %v)", tc.port, target, writable, tc.kernal.target, tc.kernal.writable)
		}
		if target, writable := decode(tc.port, kCharIOStart); target != tc.charIO.target || writable != tc.charIO.writable {
			t.Errorf("port %d char/IO range: decode = (%v, %v), want (%v, %v)", tc.port, target, writable, tc.charIO.target, tc.charIO.writable)
		}
		if target, writable := decode(tc.port, kCartLowStart); target != tc.cartLow.target || writable != tc.cartLow.writable {
			t.Errorf("port %d cart low range: decode = (%v, %v), want (%v, %v)", tc.port, target, writable, tc.cartLow.target, tc.cartLow.writable)
		}
	}
}

func TestDecodePlainRAMUnaffected(t *testing.T) {
	// An address outside every contested window is always plain RAM no
	// matter the control port.
	for port := uint8(0); port < 32; port++ {
		if target, writable := decode(port, 0x4000); target != TargetRAM || !writable {
			t.Errorf("port %d addr 0x4000: decode = (%v, %v), want (TargetRAM, true)", port, target, writable)
		}
	}
}

func TestControlPortAssembly(t *testing.T) {
	tests := []struct {
		ioPort     uint8
		game       bool
		exrom      bool
		wantResult uint8
	}{
		{0x07, true, true, 0x1F},  // all LORAM/HIRAM/CHAREN set, GAME/EXROM high (cart removed)
		{0x00, false, false, 0x00}, // everything low
		{0x05, true, false, 0x0D},  // LORAM+CHAREN set, HIRAM clear, GAME set, EXROM clear
	}
	for _, tc := range tests {
		if got := controlPort(tc.ioPort, tc.game, tc.exrom); got != tc.wantResult {
			t.Errorf("controlPort(0x%.2X, %v, %v) = %d, want %d", tc.ioPort, tc.game, tc.exrom, got, tc.wantResult)
		}
	}
}
