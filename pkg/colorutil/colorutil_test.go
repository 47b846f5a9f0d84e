package colorutil

import (
	"image/color"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		r, b float64
		want Class
	}{
		{"red", 120.5, 120.4, ClassRed},
		{"blue", 10, 200, ClassBlue},
		{"tie", 64, 64, ClassNeutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.r, tc.b); got != tc.want {
				t.Errorf("Classify(%v, %v) = %s, want %s", tc.r, tc.b, got, tc.want)
			}
		})
	}
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette(map[string]string{"star": "#00ff00", "galaxy": "#ff0000"})
	if err != nil {
		t.Fatalf("ParsePalette: %v", err)
	}
	if got := p.Lookup("star", Black); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("star = %v", got)
	}
	if got := p.Lookup("cluster", Yellow); got != Yellow {
		t.Errorf("missing entry should fall back, got %v", got)
	}

	if _, err := ParsePalette(map[string]string{"star": "green"}); err == nil {
		t.Fatal("expected error for non-hex color")
	}
}
