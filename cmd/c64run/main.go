// c64run wires a Bus and CPU together and runs them in lock step, presenting
// an SDL window with a debug HUD (PC, cycle count, halted state) instead of
// real VIC-II graphics output, since rasterization is out of scope for this
// core. A PRG image is loaded at its embedded load address before the CPU
// starts ticking from the reset vector.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io/ioutil"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/8bit-systems/c64core/bus"
	"github.com/8bit-systems/c64core/cpu"
	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

var (
	prg    = flag.String("prg", "", "Path to a .prg file to load before running")
	port   = flag.Int("port", 6060, "Port to run HTTP server for pprof")
	dump   = flag.String("dump", "", "If set, dump the 64K RAM image to this path on exit")
	paused = flag.Bool("paused", false, "If true, start paused; press space in the window to resume")
	scale  = flag.Int("scale", 2, "Scale factor for the debug HUD window")
)

const (
	hudW = 320
	hudH = 240
)

// InjectKey simulates a single PETSCII keypress the way KERNAL input
// routines expect to find one: written to the keyboard buffer at $0277
// with the buffer count at $00C6 bumped by one.
func InjectKey(b *bus.Bus, key byte) {
	count := b.ReadRAM(0x00C6)
	if count >= 10 {
		return // buffer is full, real hardware drops the keystroke too
	}
	b.WriteRAM(0x0277+uint16(count), key)
	b.WriteRAM(0x00C6, count+1)
}

func main() {
	flag.Parse()

	go func() {
		log.Println(http.ListenAndServe(fmt.Sprintf("localhost:%d", *port), nil))
	}()

	b := bus.New()
	c, err := cpu.Init(&cpu.ChipDef{Cpu: cpu.CPU_NMOS_6510, Ram: b})
	if err != nil {
		log.Fatalf("Can't initialize CPU: %v", err)
	}

	if *prg != "" {
		raw, err := ioutil.ReadFile(*prg)
		if err != nil {
			log.Fatalf("Can't load %s: %v", *prg, err)
		}
		if len(raw) < 2 {
			log.Fatalf("%s is too short to be a PRG file", *prg)
		}
		load := (uint16(raw[1]) << 8) + uint16(raw[0])
		raw = raw[2:]
		for i, by := range raw {
			b.WriteRAM(load+uint16(i), by)
		}
		fmt.Printf("Loaded %d bytes at $%.4X\n", len(raw), load)
	}

	running := !*paused
	var cycles uint64
	var halted error

	sdl.Main(func() {
		if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
			log.Fatalf("Can't init SDL: %v", err)
		}
		defer sdl.Quit()

		window, err := sdl.CreateWindow("c64run debug HUD", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
			int32(hudW**scale), int32(hudH**scale), sdl.WINDOW_SHOWN)
		if err != nil {
			log.Fatalf("Can't create window: %v", err)
		}
		defer window.Destroy()

		rgba := image.NewRGBA(image.Rect(0, 0, hudW, hudH))
		drawer := &font.Drawer{
			Dst:  rgba,
			Src:  image.NewUniform(colornames.Limegreen),
			Face: basicfont.Face7x13,
		}

		frameTicker := time.NewTicker(16 * time.Millisecond)
		defer frameTicker.Stop()

	loop:
		for {
			for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
				switch e := ev.(type) {
				case *sdl.QuitEvent:
					break loop
				case *sdl.KeyboardEvent:
					if e.Type == sdl.KEYDOWN {
						switch {
						case e.Keysym.Sym == sdl.K_SPACE:
							running = !running
						case e.Keysym.Sym >= 0x20 && e.Keysym.Sym <= 0x7E:
							// Printable ASCII only; real PETSCII/shift handling
							// lives in the KERNAL's own keyboard scan, not here.
							InjectKey(b, byte(e.Keysym.Sym))
						}
					}
				}
			}

			if running && halted == nil {
				if err := c.Tick(); err != nil {
					halted = err
				}
				b.Tick()
				c.TickDone()
				cycles++
			}

			draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
			status := "running"
			if !running {
				status = "paused"
			}
			if halted != nil {
				status = halted.Error()
			}
			drawer.Dot = fixedPoint(4, 16)
			drawer.DrawString(fmt.Sprintf("PC=$%.4X  cycles=%d", c.PC, cycles))
			drawer.Dot = fixedPoint(4, 32)
			drawer.DrawString(fmt.Sprintf("A=$%.2X X=$%.2X Y=$%.2X S=$%.2X P=$%.2X", c.A, c.X, c.Y, c.S, c.P))
			drawer.Dot = fixedPoint(4, 48)
			drawer.DrawString(status)

			surface, err := window.GetSurface()
			if err != nil {
				log.Fatalf("Can't get window surface: %v", err)
			}
			blit(rgba, surface, *scale)
			window.UpdateSurface()

			<-frameTicker.C
		}
	})

	if *dump != "" {
		f, err := createDumpFile(*dump)
		if err != nil {
			log.Fatalf("Can't create dump file %s: %v", *dump, err)
		}
		defer f.Close()
		if err := b.DumpRAM(f); err != nil {
			log.Fatalf("Can't dump RAM: %v", err)
		}
	}
}
