package extraction

import (
	"image"
	"image/color"
	"image/draw"
)

// createTestImage returns a w×h image filled with bg.
func createTestImage(w, h int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

// fillRect paints a w×h block with its top-left corner at (x, y).
func fillRect(img *image.RGBA, x, y, w, h int, c color.Color) {
	draw.Draw(img, image.Rect(x, y, x+w, y+h), image.NewUniform(c), image.Point{}, draw.Src)
}

// fillDisk paints a filled circle.
func fillDisk(img *image.RGBA, cx, cy, r int, c color.Color) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				img.Set(x, y, c)
			}
		}
	}
}

func gray(v uint8) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// rasterFromMask builds a Raster with a uniform BGR color under the mask
// and black elsewhere, without going through OpenCV.
func rasterFromMask(w, h int, mask []uint8, b, g, r, lum uint8) *Raster {
	out := &Raster{Width: w, Height: h, BGR: make([]uint8, w*h*3), Gray: make([]uint8, w*h)}
	for i, m := range mask {
		if m == 0 {
			continue
		}
		out.BGR[i*3], out.BGR[i*3+1], out.BGR[i*3+2] = b, g, r
		out.Gray[i] = lum
	}
	return out
}

// maskRect sets a rectangle of mask to 255.
func maskRect(mask []uint8, stride, x, y, w, h int) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			mask[yy*stride+xx] = 255
		}
	}
}
