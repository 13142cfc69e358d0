// Package peripheral implements the register-level stubs for the C64's
// video, sound, and complex interface adapter chips. None of these chips
// run their real hardware logic here (no rasterization, no audio
// synthesis, no timer/keyboard-matrix behavior) - each is just a register
// file that remembers what was written to it and can log register-level
// activity, which is all the bus needs to route reads and writes correctly.
package peripheral

import "fmt"

// Chip is the shared contract every peripheral stub on the I/O bus
// implements, mirroring how the CPU and PLA treat any bus-resident chip.
type Chip interface {
	Name() string
	Tick()
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, val uint8)
}

// registerFile is the common plumbing shared by Video/Sound/CIA: a 256
// byte shadow of whatever was last written to each register in the chip's
// window, plus an optional debug log of named register accesses.
type registerFile struct {
	name    string
	shadow  [256]uint8
	names   map[uint16]string
	Debug   bool
	history []string
}

func newRegisterFile(name string, names map[uint16]string) registerFile {
	return registerFile{name: name, names: names}
}

func (r *registerFile) Name() string { return r.name }

func (r *registerFile) log(op string, addr uint16, val uint8) {
	if !r.Debug {
		return
	}
	if n, ok := r.names[addr]; ok {
		r.history = append(r.history, fmt.Sprintf("%s %s %s", op, r.name, n))
		return
	}
	r.history = append(r.history, fmt.Sprintf("%s %s $%04X", op, r.name, addr))
}

// Log returns and clears accumulated debug history, for callers that want
// to surface it.
func (r *registerFile) Log() []string {
	h := r.history
	r.history = nil
	return h
}
