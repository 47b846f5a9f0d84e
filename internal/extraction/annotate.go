package extraction

import (
	"image"
	"image/color"
	"image/draw"

	"skymatch/pkg/colorutil"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// AnnotateOptions configures the bounding-box overlay.
type AnnotateOptions struct {
	Palette      colorutil.Palette // Outline color per object type
	OutlineWidth int               // Outline width in pixels
	Labels       bool              // Draw the object type above each box
}

// DefaultAnnotateOptions colors clusters blue, stars green and galaxies red.
func DefaultAnnotateOptions() AnnotateOptions {
	return AnnotateOptions{
		Palette: colorutil.Palette{
			string(TypeCluster): colorutil.Blue,
			string(TypeStar):    colorutil.Green,
			string(TypeGalaxy):  color.RGBA{R: 255, A: 255},
		},
		OutlineWidth: 1,
	}
}

// Annotate returns a copy of img with the bounding box of every object
// drawn on top.
func Annotate(img image.Image, objects []DetectedObject, opts AnnotateOptions) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	width := max(1, opts.OutlineWidth)
	for _, o := range objects {
		c := opts.Palette.Lookup(string(o.Type), colorutil.Yellow)
		drawOutline(out, o.BBox.X, o.BBox.Y, o.BBox.Width, o.BBox.Height, width, c)
		if opts.Labels && o.Type != "" {
			drawLabel(out, o.BBox.X, o.BBox.Y-2, string(o.Type), c)
		}
	}
	return out
}

// SaveAnnotated writes the overlay of objects on img to path. The format
// follows the file extension.
func SaveAnnotated(path string, img image.Image, objects []DetectedObject, opts AnnotateOptions) error {
	return imaging.Save(Annotate(img, objects, opts), path)
}

// drawOutline strokes a rectangle inward from its bounds.
func drawOutline(img *image.NRGBA, x, y, w, h, width int, c color.Color) {
	u := image.NewUniform(c)
	bounds := img.Bounds()
	for i := 0; i < width && i*2 < w && i*2 < h; i++ {
		x0, y0, x1, y1 := x+i, y+i, x+w-i, y+h-i
		edges := []image.Rectangle{
			image.Rect(x0, y0, x1, y0+1),
			image.Rect(x0, y1-1, x1, y1),
			image.Rect(x0, y0, x0+1, y1),
			image.Rect(x1-1, y0, x1, y1),
		}
		for _, e := range edges {
			draw.Draw(img, e.Intersect(bounds), u, image.Point{}, draw.Src)
		}
	}
}

func drawLabel(img *image.NRGBA, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, max(y, basicfont.Face7x13.Ascent)),
	}
	d.DrawString(text)
}
