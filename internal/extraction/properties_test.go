package extraction

import (
	"testing"

	"skymatch/pkg/colorutil"
)

func TestExtractProperties(t *testing.T) {
	const w, h = 40, 20
	mask := make([]uint8, w*h)
	maskRect(mask, w, 2, 2, 4, 4)   // round, red
	maskRect(mask, w, 20, 10, 10, 3) // elongated
	r := rasterFromMask(w, h, mask, 10, 0, 200, 100)
	// Make the elongated one blue
	for y := 10; y < 13; y++ {
		for x := 20; x < 30; x++ {
			i := y*w + x
			r.BGR[i*3], r.BGR[i*3+2] = 220, 30
			r.Gray[i] = 150
		}
	}
	r.Gray[3*w+3] = 240

	objs := ExtractProperties(r, segmentationOf(mask, w, h), false)
	if len(objs) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objs))
	}

	star := objs[0]
	if star.CentroidX != 4 || star.CentroidY != 4 {
		t.Errorf("star centroid = (%v,%v), want (4,4)", star.CentroidX, star.CentroidY)
	}
	if star.Area != 16 {
		t.Errorf("star area = %v, want 16", star.Area)
	}
	if star.TotalBrightness != 15*100+240 {
		t.Errorf("star total brightness = %v", star.TotalBrightness)
	}
	if star.PeakBrightness != 240 {
		t.Errorf("star peak = %v, want 240", star.PeakBrightness)
	}
	if star.Color != colorutil.ClassRed || star.Type != TypeStar {
		t.Errorf("star classified as %s %s", star.Color, star.Type)
	}
	if star.Compactness != 1 || star.BackgroundContrast != 0 {
		t.Errorf("unexpected placeholder values %v/%v", star.Compactness, star.BackgroundContrast)
	}

	galaxy := objs[1]
	if galaxy.Type != TypeGalaxy || galaxy.Color != colorutil.ClassBlue {
		t.Errorf("elongated object classified as %s %s", galaxy.Color, galaxy.Type)
	}
	if galaxy.CentroidX != 25 || galaxy.CentroidY != 11.5 {
		t.Errorf("galaxy centroid = (%v,%v), want (25,11.5)", galaxy.CentroidX, galaxy.CentroidY)
	}
	if galaxy.BBox.X != 20 || galaxy.BBox.Width != 10 || galaxy.BBox.Height != 3 {
		t.Errorf("galaxy bbox = %+v", galaxy.BBox)
	}
}

func TestExtractPropertiesClusterMode(t *testing.T) {
	const w, h = 20, 20
	mask := make([]uint8, w*h)
	maskRect(mask, w, 0, 0, 10, 2)
	r := rasterFromMask(w, h, mask, 50, 50, 50, 50)

	objs := ExtractProperties(r, segmentationOf(mask, w, h), true)
	if len(objs) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objs))
	}
	if objs[0].Type != TypeCluster {
		t.Errorf("type = %s, want cluster", objs[0].Type)
	}
	if objs[0].Color != colorutil.ClassNeutral {
		t.Errorf("equal red and blue should be neutral, got %s", objs[0].Color)
	}
}

func TestExtractPropertiesEmpty(t *testing.T) {
	r := rasterFromMask(5, 5, make([]uint8, 25), 0, 0, 0, 0)
	objs := ExtractProperties(r, emptySegmentation(5, 5), false)
	if objs == nil || len(objs) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", objs)
	}
}

func TestClassifyAspectBoundary(t *testing.T) {
	tests := []struct {
		w, h int
		want ObjectType
	}{
		{5, 5, TypeStar},
		{6, 5, TypeStar}, // exactly 1.2
		{7, 5, TypeGalaxy},
		{5, 7, TypeGalaxy},
	}
	for _, tt := range tests {
		got := classify(ComponentStats{Width: tt.w, Height: tt.h}, false)
		if got != tt.want {
			t.Errorf("classify(%dx%d) = %s, want %s", tt.w, tt.h, got, tt.want)
		}
	}
}
