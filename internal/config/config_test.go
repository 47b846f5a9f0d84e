package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"skymatch/internal/registration"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(envConfigPath, filepath.Join(t.TempDir(), "none.json"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Matching.DistanceThreshold != 50 || cfg.Detection.NoiseThreshold != 120 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{
		"detection": {"automated": true, "detect_clusters": true},
		"matching": {"distance_threshold": 12.5, "scale_range": [0.5, 2], "workers": 3},
		"annotate": {"palette": {"star": "#112233"}}
	}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	opts, err := cfg.DetectionOptions()
	if err != nil {
		t.Fatal(err)
	}
	if !opts.Detection.Automated || !opts.DetectClusters || opts.Detection.MaxComponents != 1000 {
		t.Errorf("detection options = %+v", opts)
	}

	p, err := cfg.MatchParams()
	if err != nil {
		t.Fatal(err)
	}
	want := registration.DefaultParams().WithDistanceThreshold(12.5).WithScaleRange(0.5, 2, 8)
	if p != want {
		t.Errorf("match params = %+v, want %+v", p, want)
	}

	ann, err := cfg.AnnotateOptions()
	if err != nil {
		t.Fatal(err)
	}
	if c := ann.Palette["star"]; c.R != 0x11 || c.G != 0x22 || c.B != 0x33 {
		t.Errorf("star color = %v", c)
	}
	if ann.Palette["galaxy"] != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("galaxy color = %v", ann.Palette["galaxy"])
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := map[string]func(*Config){
		"noise":      func(c *Config) { c.Detection.NoiseThreshold = 999 },
		"scales":     func(c *Config) { c.Matching.ScaleRange = [2]float64{3, 1} },
		"confidence": func(c *Config) { c.Matching.Confidence = 1.5 },
		"workers":    func(c *Config) { c.Matching.Workers = -1 },
		"palette":    func(c *Config) { c.Annotate.Palette["star"] = "green" },
		"dimension":  func(c *Config) { c.Detection.MaxDimension = -5 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadFileSyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{"), 0644)
	if _, err := LoadFile(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Logging.Level = "debug"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("level = %q", loaded.Logging.Level)
	}
}

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandUser("~/stars/catalog.json")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "stars", "catalog.json") {
		t.Errorf("expandUser = %q", got)
	}
	if got, _ := expandUser("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed to %q", got)
	}
}
