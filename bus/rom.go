package bus

import "github.com/8bit-systems/c64core/memory"

// ROM window sizes and fixed load addresses, per the C64's physical ROM
// sockets.
const (
	basicROMBase  = 0xA000
	basicROMSize  = 0x2000
	charROMBase   = 0xD000
	charROMSize   = 0x1000
	kernalROMBase = 0xE000
	kernalROMSize = 0x2000
)

// LoadROMs wraps the BASIC, character, and KERNAL ROM images as read-only
// memory.Banks and installs them in their fixed windows. Each image must be
// exactly the size of its socket; a missing or wrong sized ROM is a fatal
// configuration error at init time, not something Read/Write should ever
// have to account for.
func (b *Bus) LoadROMs(basic, char, kernal []uint8) error {
	if len(basic) != basicROMSize {
		return ErrROMSize{"basic", len(basic), basicROMSize}
	}
	if len(char) != charROMSize {
		return ErrROMSize{"char", len(char), charROMSize}
	}
	if len(kernal) != kernalROMSize {
		return ErrROMSize{"kernal", len(kernal), kernalROMSize}
	}

	basicBank, err := memory.NewROMBank(basic, basicROMSize, nil)
	if err != nil {
		return err
	}
	charBank, err := memory.NewROMBank(char, charROMSize, nil)
	if err != nil {
		return err
	}
	kernalBank, err := memory.NewROMBank(kernal, kernalROMSize, nil)
	if err != nil {
		return err
	}

	b.basicROM = basicBank
	b.charROM = charBank
	b.kernalROM = kernalBank
	return nil
}

// romBankFor resolves addr to whichever loaded ROM image backs it. The PLA
// can still steer an address to TargetROM outside all three sockets (the
// cartridge-low window with no cartridge attached); romBankFor returns nil
// for those; there's no cartridge ROM model in scope.
func (b *Bus) romBankFor(addr uint16) memory.Bank {
	switch {
	case addr >= basicROMBase && addr < basicROMBase+basicROMSize:
		return b.basicROM
	case addr >= charROMBase && addr < charROMBase+charROMSize:
		return b.charROM
	case addr >= kernalROMBase:
		return b.kernalROM
	default:
		return nil
	}
}
