// Package config loads the JSON settings file and turns it into the
// parameter structs of the processing packages.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"skymatch/internal/extraction"
	"skymatch/internal/registration"
	"skymatch/pkg/colorutil"
)

const (
	envConfigPath  = "SKYMATCH_CONFIG"
	appDir         = "skymatch"
	configFileName = "config.json"
)

// ErrInvalidConfig is returned when a settings file cannot be parsed or
// holds out-of-range values.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds user-editable settings.
type Config struct {
	Detection Detection `json:"detection"`
	Matching  Matching  `json:"matching"`
	Catalog   Catalog   `json:"catalog"`
	Storage   Storage   `json:"storage"`
	Logging   Logging   `json:"logging"`
	Annotate  Annotate  `json:"annotate"`
}

// Detection configures source extraction.
type Detection struct {
	Automated           bool    `json:"automated"`
	GaussianBlur        int     `json:"gaussian_blur"`
	NoiseThreshold      float64 `json:"noise_threshold"`
	AdaptiveFiltering   bool    `json:"adaptive_filtering"`
	SeparationThreshold int     `json:"separation_threshold"`
	MinSize             float64 `json:"min_size"`
	MaxComponents       int     `json:"max_components"`
	DetectClusters      bool    `json:"detect_clusters"`
	ClusterAutomated    bool    `json:"cluster_automated"`
	ClusterGaussianBlur int     `json:"cluster_gaussian_blur"`
	MinClusterSize      float64 `json:"min_cluster_size"`
	MaxDimension        int     `json:"max_dimension"` // Downscale larger images, 0 disables
}

// Matching configures pattern registration.
type Matching struct {
	DistanceThreshold float64    `json:"distance_threshold"`
	MinInliers        int        `json:"min_inliers"`
	MaxIterations     int        `json:"max_iterations"`
	Confidence        float64    `json:"confidence"`
	RotationStep      float64    `json:"rotation_step"`
	ScaleRange        [2]float64 `json:"scale_range"`
	ScaleSteps        int        `json:"scale_steps"`
	Seed              int64      `json:"seed"`
	Workers           int        `json:"workers"` // 0 means one per CPU
}

// Catalog locates the pattern catalog.
type Catalog struct {
	Path       string  `json:"path"`
	CanvasSize float64 `json:"canvas_size"`
}

// Storage locates the object database.
type Storage struct {
	DatabasePath string `json:"database_path"`
}

// Logging controls logging verbosity and format.
type Logging struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text, json
}

// Annotate controls overlay rendering.
type Annotate struct {
	Palette      map[string]string `json:"palette"` // object type -> #rrggbb
	OutlineWidth int               `json:"outline_width"`
	Labels       bool              `json:"labels"`
}

// Path returns the settings file location: $SKYMATCH_CONFIG, or
// config.json under the user config directory.
func Path() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, configFileName)
}

// Load reads the settings file at Path. A missing file yields defaults.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads settings from path over the defaults. A missing file
// yields defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	expanded, err := expandUser(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, expanded, err)
	}

	if cfg.Catalog.Path, err = expandUser(cfg.Catalog.Path); err != nil {
		return nil, err
	}
	if cfg.Storage.DatabasePath, err = expandUser(cfg.Storage.DatabasePath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the settings to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in settings.
func Default() *Config {
	det := extraction.DefaultParams()
	clu := extraction.DefaultClusterParams()
	match := registration.DefaultParams()
	return &Config{
		Detection: Detection{
			Automated:           det.Automated,
			GaussianBlur:        det.BlurRadius,
			NoiseThreshold:      det.NoiseThreshold,
			AdaptiveFiltering:   det.AdaptiveFiltering,
			SeparationThreshold: det.SeparationThreshold,
			MinSize:             det.MinSize,
			MaxComponents:       det.MaxComponents,
			ClusterAutomated:    clu.Automated,
			ClusterGaussianBlur: clu.BlurRadius,
			MinClusterSize:      clu.MinClusterSize,
			MaxDimension:        extraction.DefaultMaxDimension,
		},
		Matching: Matching{
			DistanceThreshold: match.DistanceThreshold,
			MinInliers:        match.MinInliers,
			MaxIterations:     match.MaxIterations,
			Confidence:        match.Confidence,
			RotationStep:      match.RotationStep,
			ScaleRange:        [2]float64{match.ScaleRange.Min, match.ScaleRange.Max},
			ScaleSteps:        match.ScaleSteps,
			Seed:              match.Seed,
		},
		Catalog: Catalog{
			Path:       "catalog.json",
			CanvasSize: 512,
		},
		Storage: Storage{
			DatabasePath: "space_objects.db",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Annotate: Annotate{
			Palette: map[string]string{
				string(extraction.TypeCluster): "#0000ff",
				string(extraction.TypeStar):    "#00ff00",
				string(extraction.TypeGalaxy):  "#ff0000",
			},
			OutlineWidth: 1,
		},
	}
}

// DetectionOptions converts the detection section and validates it.
func (c *Config) DetectionOptions() (extraction.Options, error) {
	d := c.Detection
	opts := extraction.Options{
		Detection: extraction.DetectionParams{
			BlurRadius:          d.GaussianBlur,
			NoiseThreshold:      d.NoiseThreshold,
			Automated:           d.Automated,
			AdaptiveFiltering:   d.AdaptiveFiltering,
			SeparationThreshold: d.SeparationThreshold,
			MinSize:             d.MinSize,
			MaxComponents:       d.MaxComponents,
		},
		Clusters: extraction.ClusterParams{
			Automated:      d.ClusterAutomated,
			BlurRadius:     d.ClusterGaussianBlur,
			MinClusterSize: d.MinClusterSize,
		},
		DetectClusters: d.DetectClusters,
	}
	if err := opts.Detection.Validate(); err != nil {
		return opts, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := opts.Clusters.Validate(); err != nil {
		return opts, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return opts, nil
}

// MatchParams converts the matching section and validates it.
func (c *Config) MatchParams() (registration.Params, error) {
	m := c.Matching
	p := registration.Params{
		DistanceThreshold: m.DistanceThreshold,
		MinInliers:        m.MinInliers,
		MaxIterations:     m.MaxIterations,
		Confidence:        m.Confidence,
		RotationStep:      m.RotationStep,
		ScaleRange:        registration.ScaleRange{Min: m.ScaleRange[0], Max: m.ScaleRange[1]},
		ScaleSteps:        m.ScaleSteps,
		Seed:              m.Seed,
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if m.Workers < 0 {
		return p, fmt.Errorf("%w: workers %d", ErrInvalidConfig, m.Workers)
	}
	return p, nil
}

// AnnotateOptions converts the annotate section. Types missing from the
// palette keep their default colors.
func (c *Config) AnnotateOptions() (extraction.AnnotateOptions, error) {
	opts := extraction.DefaultAnnotateOptions()
	palette, err := colorutil.ParsePalette(c.Annotate.Palette)
	if err != nil {
		return opts, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for name, col := range palette {
		opts.Palette[name] = col
	}
	if c.Annotate.OutlineWidth > 0 {
		opts.OutlineWidth = c.Annotate.OutlineWidth
	}
	opts.Labels = c.Annotate.Labels
	return opts, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.DetectionOptions(); err != nil {
		return err
	}
	if _, err := c.MatchParams(); err != nil {
		return err
	}
	if _, err := c.AnnotateOptions(); err != nil {
		return err
	}
	if c.Detection.MaxDimension < 0 {
		return fmt.Errorf("%w: max dimension %d", ErrInvalidConfig, c.Detection.MaxDimension)
	}
	return nil
}

func expandUser(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if path == "~" {
		return home, nil
	}

	return filepath.Join(home, path[2:]), nil
}
