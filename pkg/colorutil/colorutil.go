// Package colorutil provides color classification and overlay palettes.
package colorutil

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Class is the coarse color of a detected source.
type Class string

const (
	ClassRed     Class = "red"
	ClassBlue    Class = "blue"
	ClassNeutral Class = "neutral"
)

// Valid reports whether c is one of the known classes.
func (c Class) Valid() bool {
	switch c {
	case ClassRed, ClassBlue, ClassNeutral:
		return true
	}
	return false
}

// Classify compares mean red against mean blue. Green is ignored and an
// exact tie is neutral.
func Classify(meanR, meanB float64) Class {
	switch {
	case meanR > meanB:
		return ClassRed
	case meanB > meanR:
		return ClassBlue
	default:
		return ClassNeutral
	}
}

// Common overlay colors.
var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Blue   = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// ParseHex parses a "#rrggbb" string into an opaque RGBA color.
func ParseHex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Palette maps an object type name to its overlay color.
type Palette map[string]color.RGBA

// ParsePalette converts a name → hex map into a Palette. Entries that fail
// to parse are reported together with the key.
func ParsePalette(hex map[string]string) (Palette, error) {
	p := make(Palette, len(hex))
	for name, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			return nil, fmt.Errorf("palette %s: %w", name, err)
		}
		p[name] = c
	}
	return p, nil
}

// Lookup returns the color for name, or fallback.
func (p Palette) Lookup(name string, fallback color.RGBA) color.RGBA {
	if c, ok := p[name]; ok {
		return c
	}
	return fallback
}
