package main

import (
	"image"
	"os"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/math/fixed"
)

func fixedPoint(x, y int) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
}

func createDumpFile(path string) (*os.File, error) {
	return os.Create(path)
}

// blit copies src, scaled by an integer factor, into the SDL surface's pixel
// buffer directly rather than going through Surface.Set (which allocates a
// color.Color per pixel and shows up in profiles for anything this size).
func blit(src *image.RGBA, surface *sdl.Surface, scale int) {
	data := surface.Pixels()
	bpp := int32(surface.Format.BytesPerPixel)
	bounds := src.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := src.RGBAAt(x, y)
			for sy := 0; sy < scale; sy++ {
				for sx := 0; sx < scale; sx++ {
					px := int32(x*scale+sx)*bpp + int32(y*scale+sy)*surface.Pitch
					if int(px)+3 >= len(data) {
						continue
					}
					data[px+0] = c.R
					data[px+1] = c.G
					data[px+2] = c.B
					data[px+3] = c.A
				}
			}
		}
	}
}
