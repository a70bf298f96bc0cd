package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	CloudDir  string `json:"cloud_dir"`
	OutputDir string `json:"output_dir"`

	// Render settings
	PreviewSize int    `json:"preview_size"`
	Supersample int    `json:"supersample"`
	Format      string `json:"format"`
	MaxPoints   int    `json:"max_points"`
	Workers     int    `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	CloudDir  string
	OutputDir string
	Format    string
	MaxPoints int
	Workers   int
}

// Resolve fills in any empty fields with defaults. CLI flags take
// priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.CloudDir != "" {
		c.CloudDir = flags.CloudDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.MaxPoints > 0 {
		c.MaxPoints = flags.MaxPoints
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.CloudDir == "" {
		c.CloudDir = detectCloudDir()
	}

	if c.OutputDir == "" {
		if c.CloudDir != "" {
			c.OutputDir = filepath.Join(c.CloudDir, "previews")
		}
	} else if !filepath.IsAbs(c.OutputDir) && c.CloudDir != "" {
		c.OutputDir = filepath.Join(c.CloudDir, c.OutputDir)
	}

	if c.PreviewSize <= 0 {
		c.PreviewSize = 512
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	c.Format = NormalizeFormat(c.Format)
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// NormalizeFormat maps a user-supplied format name to a supported
// extension, defaulting to webp.
func NormalizeFormat(format string) string {
	switch strings.ToLower(format) {
	case "tga":
		return "tga"
	default:
		return "webp"
	}
}

// detectCloudDir looks for a cloud.js descriptor near the working
// directory and the executable.
func detectCloudDir() string {
	candidates := []string{}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, cwd, filepath.Join(cwd, "pointcloud"))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Dir(exe))
	}
	for _, dir := range candidates {
		for _, name := range []string{"cloud.js", "cloud.json"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir
			}
		}
	}
	return ""
}
