package catalog

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"skymatch/internal/registration"
	"skymatch/pkg/geometry"
)

const (
	// DefaultCanvasSize is the side of the square sketch canvas in pixels.
	DefaultCanvasSize = 512

	minPatternPoints = 3
	sketchName       = "sketch"
)

// Matcher matches catalog patterns and sketches against background points.
type Matcher struct {
	cat       *Catalog
	registrar *registration.Registrar
	workers   int
	log       *slog.Logger
}

// NewMatcher returns a Matcher over cat. workers <= 0 uses one worker per
// CPU for FindAll. A nil logger uses slog.Default().
func NewMatcher(cat *Catalog, params registration.Params, workers int, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Matcher{
		cat:       cat,
		registrar: registration.NewRegistrar(params, logger),
		workers:   workers,
		log:       logger,
	}
}

// Catalog returns the matcher's catalog.
func (m *Matcher) Catalog() *Catalog {
	return m.cat
}

// FindSpecific looks up one pattern by name and matches it. The error is
// non-nil only for invalid matching parameters.
func (m *Matcher) FindSpecific(name string, background []geometry.Point2D) (MatchResponse, error) {
	p, ok := m.cat.Lookup(name)
	if !ok {
		return failure(ReasonNotFound, "", -1, 0, "no pattern matching %q", name), nil
	}
	if len(p.Points) < minPatternPoints {
		return failure(ReasonInsufficientPoints, p.Name, p.Index, len(p.Points),
			"%s has %d points, need %d", p.Name, len(p.Points), minPatternPoints), nil
	}

	res, err := m.registrar.Match(p.Points, background)
	if err != nil {
		return MatchResponse{}, err
	}
	if res == nil {
		return failure(ReasonNoMatch, p.Name, p.Index, len(p.Points),
			"%s not found among %d objects", p.Name, len(background)), nil
	}
	return success(p.Name, p.Index, res, geometry.Centroid(p.Points)), nil
}

// FindAll matches every pattern with enough points in parallel and returns
// the successes sorted by inlier ratio, best first. Equal ratios keep
// catalog order. On cancellation the matches finished so far are returned
// together with the context error.
func (m *Matcher) FindAll(ctx context.Context, background []geometry.Point2D) ([]MatchResponse, error) {
	if err := m.registrar.Params().Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	entries := m.cat.Entries()
	found := make([]*MatchResponse, len(entries))

	limiter := make(chan struct{}, m.workers)
	var wg sync.WaitGroup
	for i, p := range entries {
		if len(p.Points) < minPatternPoints {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		limiter <- struct{}{}

		wg.Add(1)
		go func(i int, p Pattern) {
			defer func() { <-limiter; wg.Done() }()
			if ctx.Err() != nil {
				return
			}
			res, err := m.registrar.Match(p.Points, background)
			if err != nil || res == nil {
				return
			}
			r := success(p.Name, p.Index, res, geometry.Centroid(p.Points))
			found[i] = &r
		}(i, p)
	}
	wg.Wait()

	matches := make([]MatchResponse, 0)
	for _, r := range found {
		if r != nil {
			matches = append(matches, *r)
		}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].InliersRatio > matches[b].InliersRatio
	})

	m.log.Info("catalog search finished",
		"patterns", len(entries),
		"objects", len(background),
		"matches", len(matches),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return matches, ctx.Err()
}

// DrawAndMatch matches a user-drawn pattern. The reported position is the
// center of a canvasSize square canvas mapped into the background frame;
// canvasSize <= 0 means DefaultCanvasSize.
func (m *Matcher) DrawAndMatch(background, sketch []geometry.Point2D, canvasSize float64) (MatchResponse, error) {
	if len(sketch) < minPatternPoints {
		return failure(ReasonInsufficientPointsDrawn, sketchName, SketchIndex, len(sketch),
			"sketch has %d points, need %d", len(sketch), minPatternPoints), nil
	}
	if canvasSize <= 0 {
		canvasSize = DefaultCanvasSize
	}

	res, err := m.registrar.Match(sketch, background)
	if err != nil {
		return MatchResponse{}, err
	}
	if res == nil {
		return failure(ReasonNoMatch, sketchName, SketchIndex, len(sketch),
			"sketch not found among %d objects", len(background)), nil
	}
	center := geometry.Point2D{X: canvasSize / 2, Y: canvasSize / 2}
	return success(sketchName, SketchIndex, res, center), nil
}
