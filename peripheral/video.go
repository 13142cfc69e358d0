package peripheral

// videoRegisterNames names the VIC-II registers at $D000-$D02E, ported
// from the reference register map (see DESIGN.md). Sprite positions,
// raster, and the various mode/color controls are all kept as a shadow
// register file; actual rasterization is out of scope.
var videoRegisterNames = map[uint16]string{
	0xD000: "sprite 0 X", 0xD001: "sprite 0 Y", 0xD002: "sprite 1 X", 0xD003: "sprite 1 Y",
	0xD004: "sprite 2 X", 0xD005: "sprite 2 Y", 0xD006: "sprite 3 X", 0xD007: "sprite 3 Y",
	0xD008: "sprite 4 X", 0xD009: "sprite 4 Y", 0xD00A: "sprite 5 X", 0xD00B: "sprite 5 Y",
	0xD00C: "sprite 6 X", 0xD00D: "sprite 6 Y", 0xD00E: "sprite 7 X", 0xD00F: "sprite 7 Y",
	0xD010: "sprite X MSBs", 0xD011: "control register 1", 0xD012: "raster counter",
	0xD013: "light pen X", 0xD014: "light pen Y", 0xD015: "sprite enable",
	0xD016: "control register 2", 0xD017: "sprite Y expand", 0xD018: "memory control",
	0xD019: "interrupt flags", 0xD01A: "interrupt enable", 0xD01B: "sprite priority",
	0xD01C: "sprite multicolor select", 0xD01D: "sprite X expand",
	0xD01E: "sprite-sprite collision", 0xD01F: "sprite-background collision",
	0xD020: "border color", 0xD021: "background color 0", 0xD022: "background color 1",
	0xD023: "background color 2", 0xD024: "background color 3",
	0xD025: "sprite multicolor 0", 0xD026: "sprite multicolor 1",
	0xD027: "sprite 0 color", 0xD028: "sprite 1 color", 0xD029: "sprite 2 color",
	0xD02A: "sprite 3 color", 0xD02B: "sprite 4 color", 0xD02C: "sprite 5 color",
	0xD02D: "sprite 6 color", 0xD02E: "sprite 7 color",
}

// GraphicMode is the display mode the VIC-II derives from the ECM/BMM/MCM
// bits of control registers 1 and 2. Computing it is a pure register-bit
// side effect, unlike the actual pixel rasterization those modes drive,
// which stays out of scope.
type GraphicMode int

const (
	CharMode GraphicMode = iota
	MulticolorCharMode
	BitmapMode
	MulticolorBitmapMode
	ExtendedBackgroundMode
	IllegalMode
)

func (m GraphicMode) String() string {
	switch m {
	case CharMode:
		return "char"
	case MulticolorCharMode:
		return "multicolor char"
	case BitmapMode:
		return "bitmap"
	case MulticolorBitmapMode:
		return "multicolor bitmap"
	case ExtendedBackgroundMode:
		return "extended background"
	default:
		return "illegal"
	}
}

// Video stubs the VIC-II's register window at $D000-$D3FF, mirrored every
// 64 bytes across it ($D000-$D02E are live registers, $D02F-$D03F read as
// $FF/ignore writes on real hardware, folded here into the same shadow for
// simplicity).
type Video struct {
	registerFile
	ctrl1, ctrl2 uint8
	Mode         GraphicMode
}

func NewVideo() *Video {
	return &Video{registerFile: newRegisterFile("VIC-II", videoRegisterNames)}
}

func (v *Video) Tick() {}

func (v *Video) ReadRegister(addr uint16) uint8 {
	reg := addr & 0x3F
	v.log("read", 0xD000+reg, 0)
	return v.shadow[reg]
}

func (v *Video) WriteRegister(addr uint16, val uint8) {
	reg := addr & 0x3F
	v.log("write", 0xD000+reg, val)
	v.shadow[reg] = val

	switch reg {
	case 0x11:
		v.ctrl1 = val
		v.updateGraphicMode()
	case 0x16:
		v.ctrl2 = val
		v.updateGraphicMode()
	}
}

// updateGraphicMode derives the current display mode from ECM (ctrl1 bit
// 6), BMM (ctrl1 bit 5), and MCM (ctrl2 bit 4), the same bit positions and
// truth table the real VIC-II uses.
func (v *Video) updateGraphicMode() {
	ecm := v.ctrl1&0x40 != 0
	bmm := v.ctrl1&0x20 != 0
	mcm := v.ctrl2&0x10 != 0

	switch {
	case !ecm && !bmm && !mcm:
		v.Mode = CharMode
	case !ecm && !bmm && mcm:
		v.Mode = MulticolorCharMode
	case !ecm && bmm && !mcm:
		v.Mode = BitmapMode
	case !ecm && bmm && mcm:
		v.Mode = MulticolorBitmapMode
	case ecm && !bmm && !mcm:
		v.Mode = ExtendedBackgroundMode
	default:
		v.Mode = IllegalMode
	}
}
