//Package config loads the simulation configuration
//embedded defaults are overlaid with the optional YAML file, command line flags are applied on top by main
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lifegrid/src/universe"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//Config holds all configuration parameters
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Seed       SeedConfig       `yaml:"seed"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Render     RenderConfig     `yaml:"render"`
	Stats      StatsConfig      `yaml:"stats"`
	Log        LogConfig        `yaml:"log"`
}

//SimulationConfig holds the engine and pacing parameters
type SimulationConfig struct {
	Width          int           `yaml:"width"`  // 0 = terminal width, -1 = unbounded
	Height         int           `yaml:"height"` // 0 = terminal height, -1 = unbounded
	Interval       time.Duration `yaml:"interval"`
	MaxSteps       int           `yaml:"max_steps"`
	Rule           string        `yaml:"rule"`
	Engine         string        `yaml:"engine"`
	StopWhenStable bool          `yaml:"stop_when_stable"`
}

//SeedConfig selects the initial pattern
type SeedConfig struct {
	File    string `yaml:"file"`
	Pattern string `yaml:"pattern"`
}

type SnapshotConfig struct {
	Dir string `yaml:"dir"`
}

//RenderConfig holds the terminal rendering parameters
type RenderConfig struct {
	LiveGlyph string `yaml:"live_glyph"`
	DeadGlyph string `yaml:"dead_glyph"`
	Color     bool   `yaml:"color"`
	Quiet     bool   `yaml:"quiet"` // print status lines only
}

type StatsConfig struct {
	CSV string `yaml:"csv"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

//Default returns the embedded defaults
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: parsing embedded defaults: %v", err))
	}
	return cfg
}

//Load loads configuration from a YAML file, merging with embedded defaults
//If path is empty, only embedded defaults are used
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	//only overwrites fields present in the file
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

//ParsedRule returns the configured rule
func (c *Config) ParsedRule() (universe.Rule, error) {
	return universe.ParseRule(c.Simulation.Rule)
}

//Validate checks the values which can't be checked by the YAML decoder
func (c *Config) Validate() error {
	if _, err := c.ParsedRule(); err != nil {
		return fmt.Errorf("simulation.rule: %w", err)
	}
	if _, ok := universe.Engines[c.Simulation.Engine]; !ok {
		return fmt.Errorf("simulation.engine: unknown engine %q, expected one of [%s]",
			c.Simulation.Engine, strings.Join(universe.EngineNames(), "|"))
	}
	if c.Simulation.Width < universe.Unbounded || c.Simulation.Height < universe.Unbounded {
		return fmt.Errorf("simulation: dimension %dx%d, expected a positive size, 0 for the terminal size or %d for unbounded",
			c.Simulation.Width, c.Simulation.Height, universe.Unbounded)
	}
	if c.Simulation.Engine == "dense" && (c.Simulation.Width == universe.Unbounded || c.Simulation.Height == universe.Unbounded) {
		return fmt.Errorf("simulation: %w", universe.ErrUnboundedDense)
	}
	if c.Simulation.Interval < 0 {
		return fmt.Errorf("simulation.interval: negative interval %v", c.Simulation.Interval)
	}
	if c.Render.LiveGlyph == "" || c.Render.DeadGlyph == "" {
		return fmt.Errorf("render: glyphs must not be empty")
	}
	return nil
}

//YAML returns the configuration in the file format
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
