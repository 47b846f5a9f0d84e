package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"skymatch/internal/registration"
	"skymatch/pkg/geometry"
)

func triangle() []geometry.Point2D {
	return []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 8.66}}
}

// scene is the triangle scaled by 5 and rotated 90° plus a few decoys.
func scene() []geometry.Point2D {
	return []geometry.Point2D{
		{X: 0, Y: 0}, {X: 0, Y: 50}, {X: -43.3, Y: 25},
		{X: 1000, Y: 1000}, {X: 1500, Y: 300}, {X: 400, Y: 1800},
	}
}

func testParams() registration.Params {
	return registration.DefaultParams().
		WithScaleRange(4.5, 5.5, 3).
		WithRotationStep(15).
		WithDistanceThreshold(10)
}

func testMatcher(t *testing.T) *Matcher {
	t.Helper()
	wide := append(triangle(), geometry.Point2D{X: 100, Y: 100})
	cat, err := New([]Pattern{
		{Name: "Wide", Index: 0, Points: wide},
		{Name: "Alpha", Index: 1, Points: triangle()},
		{Name: "Beta", Index: 2, Points: triangle()},
		{Name: "Tiny", Index: 3, Points: triangle()[:2]},
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewMatcher(cat, testParams(), 2, nil)
}

func TestFindAllOrdersByRatioThenCatalog(t *testing.T) {
	matches, err := testMatcher(t).FindAll(context.Background(), scene())
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	var names []string
	for _, m := range matches {
		names = append(names, m.PatternName)
	}
	want := []string{"Alpha", "Beta", "Wide"}
	if len(names) != len(want) {
		t.Fatalf("matches = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("matches = %v, want %v", names, want)
		}
	}
	if matches[2].InliersRatio != 0.75 {
		t.Errorf("Wide ratio = %v, want 0.75", matches[2].InliersRatio)
	}
}

func TestFindAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	matches, err := testMatcher(t).FindAll(ctx, scene())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("cancelled search returned %d matches", len(matches))
	}
}

func TestFindSpecific(t *testing.T) {
	m := testMatcher(t)

	resp, err := m.FindSpecific("alp", scene())
	if err != nil {
		t.Fatalf("FindSpecific: %v", err)
	}
	if !resp.Success || resp.Reason != ReasonMatched || resp.PatternIndex != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.InliersCount != 3 || resp.RotationAngle != 90 {
		t.Errorf("inliers %d at %v°", resp.InliersCount, resp.RotationAngle)
	}
	// Triangle centroid (5, 2.887) scaled by 5 and rotated 90°
	if resp.Position == nil || math.Abs(resp.Position.X+14.43) > 0.01 || math.Abs(resp.Position.Y-25) > 0.01 {
		t.Errorf("position = %v", resp.Position)
	}
	if resp.TransformationMatrix == nil {
		t.Error("missing transformation matrix")
	}

	tests := []struct {
		name   string
		bg     []geometry.Point2D
		reason Reason
	}{
		{"draco", scene(), ReasonNotFound},
		{"tiny", scene(), ReasonInsufficientPoints},
		{"beta", []geometry.Point2D{{X: 900, Y: 900}, {X: 950, Y: 900}, {X: 900, Y: 990}}, ReasonNoMatch},
	}
	for _, tt := range tests {
		resp, err := m.FindSpecific(tt.name, tt.bg)
		if err != nil {
			t.Fatalf("FindSpecific(%s): %v", tt.name, err)
		}
		if resp.Success || resp.Reason != tt.reason {
			t.Errorf("FindSpecific(%s) = %s, want %s", tt.name, resp.Reason, tt.reason)
		}
	}
}

func TestFindSpecificInvalidParams(t *testing.T) {
	cat, _ := New([]Pattern{{Name: "A", Index: 0, Points: triangle()}})
	m := NewMatcher(cat, registration.DefaultParams().WithDistanceThreshold(-1), 1, nil)
	if _, err := m.FindSpecific("a", scene()); !errors.Is(err, registration.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
	if _, err := m.FindAll(context.Background(), scene()); !errors.Is(err, registration.ErrInvalidParams) {
		t.Errorf("FindAll: expected ErrInvalidParams, got %v", err)
	}
}

func TestDrawAndMatch(t *testing.T) {
	m := testMatcher(t)

	resp, err := m.DrawAndMatch(scene(), triangle()[:2], 0)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Success || resp.Reason != ReasonInsufficientPointsDrawn {
		t.Errorf("2-point sketch: %+v", resp)
	}

	resp, err = m.DrawAndMatch(scene(), triangle(), 20)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.PatternIndex != SketchIndex {
		t.Fatalf("sketch response = %+v", resp)
	}
	// Canvas center (10, 10) scaled by 5 and rotated 90°
	if math.Abs(resp.Position.X+50) > 0.01 || math.Abs(resp.Position.Y-50) > 0.01 {
		t.Errorf("position = %v, want (-50,50)", resp.Position)
	}
}

func TestMatchResponseJSON(t *testing.T) {
	resp, err := testMatcher(t).FindSpecific("draco", scene())
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"success", "reason", "message", "pattern_index", "inliers_ratio"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing %q in %s", key, data)
		}
	}
	if _, ok := fields["position"]; ok {
		t.Errorf("failed response should omit position: %s", data)
	}
}
