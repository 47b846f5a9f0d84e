// Package cli wires the extraction, catalog and storage packages into the
// skymatch command tree.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"skymatch/internal/catalog"
	"skymatch/internal/config"
	"skymatch/internal/extraction"
	"skymatch/internal/report"
	"skymatch/internal/storage"
	"skymatch/pkg/geometry"
)

// Root holds the state shared by every subcommand.
type Root struct {
	cfg         *config.Config
	log         *slog.Logger
	loadCatalog func(path string) (*catalog.Catalog, error)
}

// NewRoot returns a Root. The catalog is loaded once per process.
func NewRoot(cfg *config.Config, log *slog.Logger) *Root {
	return &Root{cfg: cfg, log: log, loadCatalog: catalog.Shared}
}

// scene is a set of detected objects together with the frame they live in.
type scene struct {
	Image   image.Image // nil when read from a report
	Path    string
	Width   int
	Height  int
	Objects []extraction.DetectedObject
}

func (r *Root) detector(opts extraction.Options) *extraction.Detector {
	return extraction.NewDetector(opts, r.log)
}

// loadScene reads objects from a detection report (.json) or runs detection
// on an image file with the configured options.
func (r *Root) loadScene(path string) (*scene, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		rep, err := report.Load(path)
		if err != nil {
			return nil, err
		}
		return &scene{Path: rep.GetImagePath(path), Width: rep.Width, Height: rep.Height, Objects: rep.Objects}, nil
	}

	opts, err := r.cfg.DetectionOptions()
	if err != nil {
		return nil, err
	}
	img, err := extraction.LoadImage(path, r.cfg.Detection.MaxDimension)
	if err != nil {
		return nil, err
	}
	objs, err := r.detector(opts).Detect(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &scene{Image: img, Path: path, Width: b.Dx(), Height: b.Dy(), Objects: objs}, nil
}

func (r *Root) matcher() (*catalog.Matcher, error) {
	params, err := r.cfg.MatchParams()
	if err != nil {
		return nil, err
	}
	cat, err := r.loadCatalog(r.cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	return catalog.NewMatcher(cat, params, r.cfg.Matching.Workers, r.log), nil
}

func (r *Root) openStore() (*storage.Store, error) {
	path := r.cfg.Storage.DatabasePath
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return storage.New(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readSketch loads a JSON array of {"x","y"} points.
func readSketch(path string) ([]geometry.Point2D, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pts []geometry.Point2D
	if err := json.Unmarshal(data, &pts); err != nil {
		return nil, fmt.Errorf("invalid sketch %s: %w", path, err)
	}
	return pts, nil
}

var errTooFewObjects = errors.New("need at least two objects for statistics")
