package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"skymatch/internal/extraction"
	"skymatch/pkg/colorutil"
	"skymatch/pkg/geometry"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "objects.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleObjects() []extraction.DetectedObject {
	return []extraction.DetectedObject{
		{CentroidX: 10, CentroidY: 20, Area: 25, Compactness: 1, TotalBrightness: 5000, PeakBrightness: 255,
			Color: colorutil.ClassRed, Type: extraction.TypeStar, BBox: geometry.RectInt{X: 8, Y: 18, Width: 5, Height: 5}},
		{CentroidX: 100, CentroidY: 40, Area: 60, Compactness: 1, TotalBrightness: 9000, PeakBrightness: 200,
			Color: colorutil.ClassBlue, Type: extraction.TypeGalaxy, BBox: geometry.RectInt{X: 95, Y: 38, Width: 10, Height: 4}},
		{CentroidX: 300, CentroidY: 300, Area: 8000, Compactness: 1, TotalBrightness: 90000, PeakBrightness: 90,
			Color: colorutil.ClassNeutral, Type: extraction.TypeCluster, BBox: geometry.RectInt{X: 250, Y: 250, Width: 100, Height: 100}},
	}
}

func TestAppendAndQueryObjects(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.AppendObjects(ctx, "m31.png", sampleObjects(), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)); err != nil {
		t.Fatalf("AppendObjects: %v", err)
	}
	n, err := s.Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	all, err := s.Objects(ctx, Filter{})
	if err != nil {
		t.Fatalf("Objects: %v", err)
	}
	if len(all) != 3 || all[0].PeakBrightness != 255 {
		t.Fatalf("objects not ordered by peak brightness: %+v", all)
	}
	if all[0].BBox != (geometry.RectInt{X: 8, Y: 18, Width: 5, Height: 5}) || all[0].Color != colorutil.ClassRed {
		t.Errorf("first object = %+v", all[0])
	}

	galaxies, err := s.Objects(ctx, Filter{Type: extraction.TypeGalaxy})
	if err != nil {
		t.Fatal(err)
	}
	if len(galaxies) != 1 || galaxies[0].CentroidX != 100 {
		t.Errorf("galaxies = %+v", galaxies)
	}

	limited, err := s.Objects(ctx, Filter{Image: "m31.png", Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limit ignored: %d rows", len(limited))
	}
}

func TestQueryReadOnly(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.AppendObjects(ctx, "a.png", sampleObjects(), time.Now()); err != nil {
		t.Fatal(err)
	}

	res, err := s.QueryReadOnly(ctx, "SELECT obj_type, area FROM space_objects ORDER BY area;", 2)
	if err != nil {
		t.Fatalf("QueryReadOnly: %v", err)
	}
	if res.SQL != "SELECT obj_type, area FROM space_objects ORDER BY area LIMIT 2" {
		t.Errorf("final sql = %q", res.SQL)
	}
	if len(res.Columns) != 2 || len(res.Rows) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.Rows[0]["obj_type"] != "star" {
		t.Errorf("first row = %v", res.Rows[0])
	}

	res, err = s.QueryReadOnly(ctx, "with c as (select * from space_objects) select count(*) as n from c limit 5", 1)
	if err != nil {
		t.Fatalf("WITH query: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0]["n"] != int64(3) {
		t.Errorf("count row = %v", res.Rows)
	}
}

func TestQueryReadOnlyRejectsWrites(t *testing.T) {
	s := openTestStore(t)
	for _, q := range []string{
		"DELETE FROM space_objects",
		"DROP TABLE space_objects;",
		"select 1; delete from space_objects",
		"  -- comment\n update space_objects set area = 0",
	} {
		if _, err := s.QueryReadOnly(context.Background(), q, 0); !errors.Is(err, ErrReadOnly) {
			t.Errorf("%q: expected ErrReadOnly, got %v", q, err)
		}
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Errorf("Close on nil store: %v", err)
	}
	if err := s.AppendObjects(context.Background(), "", sampleObjects(), time.Now()); err != nil {
		t.Errorf("AppendObjects on nil store: %v", err)
	}
	if _, err := s.Count(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Count on nil store: %v", err)
	}
}
