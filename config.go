package pathtracer

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/gekko3d/pathtracer/pathtrace/rt/bvh"
	"github.com/gekko3d/pathtracer/pathtrace/rt/uniforms"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no -config is given.
const DefaultConfigFile = "pathtracer.yaml"

type Config struct {
	Window   WindowConfig      `yaml:"window"`
	Logging  LoggingConfig     `yaml:"logging"`
	BVH      bvh.Options       `yaml:"bvh"`
	Capacity uniforms.Capacity `yaml:"capacity"`
}

type WindowConfig struct {
	Title string `yaml:"title"`
	VSync bool   `yaml:"vsync"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title: "Path Tracer",
			VSync: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Console:    true,
		},
		BVH:      bvh.DefaultOptions(),
		Capacity: uniforms.DefaultCapacity(),
	}
}

func (c *Config) Validate() error {
	if err := c.BVH.Validate(); err != nil {
		return errors.Wrap(err, "config: bvh")
	}
	caps := []struct {
		name  string
		value int
	}{
		{"bvh_nodes", c.Capacity.BVHNodes},
		{"vertices", c.Capacity.Vertices},
		{"triangles", c.Capacity.Triangles},
		{"objects", c.Capacity.Objects},
		{"materials", c.Capacity.Materials},
		{"lights", c.Capacity.Lights},
	}
	for _, cp := range caps {
		if cp.value <= 0 {
			return errors.Errorf("config: capacity.%s must be positive, got %d", cp.name, cp.value)
		}
	}
	if c.Capacity.Bytes() >= uniforms.MaxSceneUniformBytes {
		return errors.Errorf("config: scene tables need %d bytes, limit is %d",
			c.Capacity.Bytes(), uniforms.MaxSceneUniformBytes)
	}
	return nil
}

// Flags are the command line overrides. They win over the config file.
type Flags struct {
	ConfigPath  string
	Debug       bool
	LogFile     string
	LeafSize    int
	BucketCount int
}

func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log", "", "Also write logs to this file")
	fs.IntVar(&f.LeafSize, "leaf-size", 0, "Override the BVH max leaf size")
	fs.IntVar(&f.BucketCount, "buckets", 0, "Override the BVH bucket count")
	return f
}

// LoadConfig applies, in order: defaults, the config file, flags.
func LoadConfig(flags *Flags) (*Config, error) {
	cfg := DefaultConfig()

	path := ""
	if flags != nil {
		path = flags.ConfigPath
	}
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, errors.Wrapf(err, "loading config from %s", path)
		}
	}

	if flags != nil {
		flags.apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.LeafSize != 0 {
		cfg.BVH.MaxLeafSize = f.LeafSize
	}
	if f.BucketCount != 0 {
		cfg.BVH.BucketCount = f.BucketCount
	}
}

// SaveTo writes the config as YAML, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
