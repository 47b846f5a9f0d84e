// Package report provides detection report files and their persistence.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"skymatch/internal/extraction"
	"skymatch/pkg/geometry"
)

// CurrentVersion is the report format version written by Save.
const CurrentVersion = 1

// ErrInvalidReport is returned when a report file cannot be parsed or has
// an unsupported version.
var ErrInvalidReport = errors.New("invalid detection report")

// File represents a detection report (.json).
type File struct {
	Version int       `json:"version"`
	Created time.Time `json:"created"`

	// Image path (relative to the report file)
	ImagePath string `json:"image"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`

	Objects []extraction.DetectedObject `json:"objects"`
}

// New creates a report for objects detected in a width×height image.
func New(width, height int, objects []extraction.DetectedObject) *File {
	if objects == nil {
		objects = []extraction.DetectedObject{}
	}
	return &File{
		Version: CurrentVersion,
		Created: time.Now(),
		Width:   width,
		Height:  height,
		Objects: objects,
	}
}

// Load loads a report from a file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rep File
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidReport, path, err)
	}
	if rep.Version < 1 || rep.Version > CurrentVersion {
		return nil, fmt.Errorf("%w %s: version %d", ErrInvalidReport, path, rep.Version)
	}

	return &rep, nil
}

// Save saves the report to a file.
func (r *File) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetImage sets the image path (relative to the report).
func (r *File) SetImage(reportPath, imagePath string) {
	r.ImagePath = imagePath
	base, err1 := filepath.Abs(filepath.Dir(reportPath))
	target, err2 := filepath.Abs(imagePath)
	if err1 != nil || err2 != nil {
		return
	}
	if rel, err := filepath.Rel(base, target); err == nil {
		r.ImagePath = rel
	}
}

// GetImagePath returns the path to the image, resolved against the report
// location.
func (r *File) GetImagePath(reportPath string) string {
	if r.ImagePath == "" {
		return ""
	}
	if filepath.IsAbs(r.ImagePath) {
		return r.ImagePath
	}
	return filepath.Join(filepath.Dir(reportPath), r.ImagePath)
}

// Centroids returns the object positions for use as a match background.
func (r *File) Centroids() []geometry.Point2D {
	return extraction.Centroids(r.Objects)
}
