package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/neurovis/internal/anim"
	"github.com/san-kum/neurovis/internal/table"
)

const (
	DefaultVariant    = "calcium"
	DefaultDataDir    = "data"
	DefaultStop       = 1000000
	DefaultCount      = 5
	DefaultAlign      = 100000
	DefaultWidth      = 80
	DefaultHeight     = 30
	DefaultIntervalMs = 800
	DefaultRunsDir    = "runs"
	DefaultAddr       = "localhost:8080"

	DefaultPositionsPath     = "{data}/positions/rank_{rank}_positions.txt"
	DefaultNetworkPattern    = "{data}/network_{sim}/rank_{rank}_step_{step}_in_network.txt"
	DefaultPlasticityPattern = "{data}/rank_{rank}_plasticity_changes_{sim}.txt"
)

// Variants are the simulation runs the simulator ships outputs for.
var Variants = []string{"calcium", "disable", "stimulus", "nonetwork"}

type Config struct {
	Variant    string           `yaml:"variant"`
	DataDir    string           `yaml:"data_dir"`
	Rank       int              `yaml:"rank"`
	Positions  PositionsConfig  `yaml:"positions"`
	Network    NetworkConfig    `yaml:"network"`
	Colors     ColorsConfig     `yaml:"colors"`
	Plasticity PlasticityConfig `yaml:"plasticity"`
	Timesteps  TimestepsConfig  `yaml:"timesteps"`
	Render     RenderConfig     `yaml:"render"`
	Runs       string           `yaml:"runs_dir"`
	Server     ServerConfig     `yaml:"server"`
	Graph      GraphConfig      `yaml:"graph"`
}

type PositionsConfig struct {
	Path   string               `yaml:"path"`
	Layout table.PositionLayout `yaml:"layout"`
}

// NetworkConfig locates one in-network file per timestep. An empty pattern
// means the variant has no connectivity.
type NetworkConfig struct {
	Pattern string              `yaml:"pattern"`
	Layout  table.NetworkLayout `yaml:"layout"`
}

type ColorsConfig struct {
	Pattern string            `yaml:"pattern"`
	Layout  table.ColorLayout `yaml:"layout"`
}

type PlasticityConfig struct {
	Pattern  string   `yaml:"pattern"`
	Variants []string `yaml:"variants"`
}

// TimestepsConfig lists steps explicitly or spaces Count steps from Start
// to Stop, aligned to multiples of Align.
type TimestepsConfig struct {
	Steps []int64 `yaml:"steps,omitempty"`
	Start int64   `yaml:"start"`
	Stop  int64   `yaml:"stop"`
	Count int     `yaml:"count"`
	Align int64   `yaml:"align"`
}

type RenderConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	IntervalMs int    `yaml:"interval_ms"`
	Theme      string `yaml:"theme"`
	Hulls      bool   `yaml:"hulls"`
	Lenient    bool   `yaml:"lenient"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// GraphConfig points at a Neo4j instance. An empty password is read from
// NEO4J_PASSWORD.
type GraphConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database"`
}

func DefaultConfig() *Config {
	return &Config{
		Variant: DefaultVariant,
		DataDir: DefaultDataDir,
		Positions: PositionsConfig{
			Path:   DefaultPositionsPath,
			Layout: table.DefaultPositionLayout(),
		},
		Network: NetworkConfig{
			Pattern: DefaultNetworkPattern,
			Layout:  table.DefaultNetworkLayout(),
		},
		Colors: ColorsConfig{
			Layout: table.DefaultColorLayout(),
		},
		Plasticity: PlasticityConfig{
			Pattern:  DefaultPlasticityPattern,
			Variants: append([]string(nil), Variants...),
		},
		Timesteps: TimestepsConfig{
			Stop:  DefaultStop,
			Count: DefaultCount,
			Align: DefaultAlign,
		},
		Render: RenderConfig{
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			IntervalMs: DefaultIntervalMs,
			Theme:      "cyberpunk",
			Hulls:      true,
		},
		Runs: DefaultRunsDir,
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Graph: GraphConfig{
			URI:      "neo4j://localhost:7687",
			User:     "neo4j",
			Database: "neo4j",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Plasticity.Variants = append([]string(nil), c.Plasticity.Variants...)
	cp.Timesteps.Steps = append([]int64(nil), c.Timesteps.Steps...)
	return &cp
}

func (c *Config) Validate() error {
	if c.Positions.Path == "" {
		return fmt.Errorf("positions path is empty")
	}
	if len(c.Timesteps.Steps) == 0 && c.Timesteps.Count < 0 {
		return fmt.Errorf("timestep count must not be negative, got %d", c.Timesteps.Count)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.IntervalMs <= 0 {
		return fmt.Errorf("interval must be positive, got %dms", c.Render.IntervalMs)
	}
	return nil
}

// Steps returns the timestep sequence to animate.
func (c *Config) Steps() []int64 {
	if len(c.Timesteps.Steps) > 0 {
		return c.Timesteps.Steps
	}
	t := c.Timesteps
	return anim.Linspace(t.Start, t.Stop, t.Count, t.Align)
}

// Expand fills the placeholders {data}, {rank}, {sim} and {step} of pattern.
func (c *Config) Expand(pattern string, step int64) string {
	return c.expand(pattern, c.Variant, step)
}

func (c *Config) expand(pattern, variant string, step int64) string {
	return strings.NewReplacer(
		"{data}", c.DataDir,
		"{rank}", strconv.Itoa(c.Rank),
		"{sim}", variant,
		"{step}", strconv.FormatInt(step, 10),
	).Replace(pattern)
}

func (c *Config) PositionsPath() string { return c.Expand(c.Positions.Path, 0) }

// NetworkPath returns "" when the variant has no connectivity.
func (c *Config) NetworkPath(step int64) string {
	if c.Network.Pattern == "" {
		return ""
	}
	return c.Expand(c.Network.Pattern, step)
}

func (c *Config) ColorPath(step int64) string {
	if c.Colors.Pattern == "" {
		return ""
	}
	return c.Expand(c.Colors.Pattern, step)
}

func (c *Config) PlasticityPath(variant string) string {
	return c.expand(c.Plasticity.Pattern, variant, 0)
}

// Source builds the file source the driver loads snapshots from.
func (c *Config) Source() *anim.FileSource {
	return &anim.FileSource{
		NetworkPath: c.NetworkPath,
		ColorPath:   c.ColorPath,
		Network:     c.Network.Layout,
		Colors:      c.Colors.Layout,
	}
}

func (c *Config) GraphPassword() string {
	if c.Graph.Password != "" {
		return c.Graph.Password
	}
	return os.Getenv("NEO4J_PASSWORD")
}
