package peripheral

// soundRegisterNames names the SID registers at $D400-$D41C, ported from
// the reference register map (see DESIGN.md). Real waveform synthesis and
// envelope generation are out of scope; writes just land in the shadow so
// a debugger or future synth layer can read them back.
var soundRegisterNames = map[uint16]string{
	0xD400: "voice 1 frequency low", 0xD401: "voice 1 frequency high",
	0xD402: "voice 1 pulse width low", 0xD403: "voice 1 pulse width high",
	0xD404: "voice 1 control", 0xD405: "voice 1 attack/decay", 0xD406: "voice 1 sustain/release",
	0xD407: "voice 2 frequency low", 0xD408: "voice 2 frequency high",
	0xD409: "voice 2 pulse width low", 0xD40A: "voice 2 pulse width high",
	0xD40B: "voice 2 control", 0xD40C: "voice 2 attack/decay", 0xD40D: "voice 2 sustain/release",
	0xD40E: "voice 3 frequency low", 0xD40F: "voice 3 frequency high",
	0xD410: "voice 3 pulse width low", 0xD411: "voice 3 pulse width high",
	0xD412: "voice 3 control", 0xD413: "voice 3 attack/decay", 0xD414: "voice 3 sustain/release",
	0xD415: "filter cutoff low", 0xD416: "filter cutoff high",
	0xD417: "filter resonance/routing", 0xD418: "filter mode/volume",
	0xD419: "paddle X", 0xD41A: "paddle Y",
	0xD41B: "voice 3 oscillator", 0xD41C: "voice 3 envelope",
}

// Sound stubs the SID (MOS 6581/8580) register file at $D400-$D7FF. Real
// hardware only decodes 29 registers but mirrors them across a 32 byte
// block ($D41D-$D41F read back as the SID's open bus, folded here into the
// same 32 byte shadow window); ReadRegister/WriteRegister mask addr down to
// it with &0x1F the same way.
type Sound struct {
	registerFile
}

func NewSound() *Sound {
	return &Sound{registerFile: newRegisterFile("SID", soundRegisterNames)}
}

func (s *Sound) Tick() {}

func (s *Sound) ReadRegister(addr uint16) uint8 {
	s.log("read", addr, 0)
	reg := addr & 0x1F
	// Paddle and voice-3-readback registers are the only ones a real SID
	// drives on read; everything else reads back open bus (0 here, since
	// this stub never drives the data bus on those registers).
	if reg >= 0x19 && reg <= 0x1C {
		return s.shadow[reg]
	}
	return 0
}

func (s *Sound) WriteRegister(addr uint16, val uint8) {
	s.log("write", addr, val)
	s.shadow[addr&0x1F] = val
}
