// c64disasm loads a file and disassembles it to stdout starting at the
// first instruction. If the filename ends in .prg (case insensitive) it's
// treated as a C64 program file: the first two bytes are the load address,
// and if that address is 0x0801 the BASIC stub at the front is listed as
// BASIC source before the rest is disassembled as 6502 code.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/8bit-systems/c64core/c64basic"
	"github.com/8bit-systems/c64core/disassemble"
	"github.com/8bit-systems/c64core/memory"
)

var (
	startPC = flag.Int("start_pc", 0x0000, "PC value to start disassembling")
	offset  = flag.Int("offset", 0x0000, "Offset into RAM to start loading data. All other RAM holds random power-on values. Ignored for PRG files.")
)

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		log.Fatalf("Invalid command: %s [-start_pc <PC> -offset <offset>] <filename>", os.Args[0])
	}
	fn := flag.Args()[0]

	isPRG := false
	parts := strings.Split(fn, ".")
	if strings.ToLower(parts[len(parts)-1]) == "prg" {
		isPRG = true
		fmt.Println("C64 program file")
	}

	ram, err := memory.New8BitRAMBank(1<<16, nil)
	if err != nil {
		log.Fatalf("Can't initialize RAM: %v", err)
	}
	ram.PowerOn()
	b, err := ioutil.ReadFile(fn)
	if err != nil {
		log.Fatalf("Can't open %s - %v", fn, err)
	}
	pc := uint16(*startPC)
	if isPRG {
		*offset = int((uint16(b[1]) << 8) + uint16(b[0]))
		pc = uint16(*offset)
		*startPC = int(pc)
		b = b[2:]
	}
	max := 1<<16 - *offset
	if l := len(b); l > max {
		log.Printf("Length %d at offset %d too long, truncating to 64k", l, *offset)
		b = b[:max]
	}
	fmt.Printf("0x%.2X bytes at pc: %.4X\n", len(b), pc)
	for i, by := range b {
		ram.Write(uint16(*offset+i), by)
	}
	if isPRG && *offset == 0x0801 {
		for {
			out, newPC, err := c64basic.List(pc, ram)
			if newPC == 0x0000 {
				pc += 2 // skip the zero link pointer marking end of program
				fmt.Printf("PC: %.4X\n", pc)
				break
			}
			fmt.Printf("%.4X %s\n", pc, out)
			if err != nil {
				fmt.Printf("%v", err)
				os.Exit(1)
			}
			pc = newPC
		}
	}
	cnt := 0
	for cnt < len(b) {
		dis, off := disassemble.Step(pc, ram)
		pc += uint16(off)
		cnt += off
		fmt.Printf("%s\n", dis)
	}
}
