package monitor

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"bufmon-go/drivers/adc081"
	"bufmon-go/x/mathx"
)

const defaultPollIntervalMs = 250

// Config describes what the service watches and how often.
type Config struct {
	PollIntervalMs int            `yaml:"poll_interval_ms"`
	Buffers        []BufferConfig `yaml:"buffers"`
}

// BufferConfig names one buffer and its alert window. The window
// (0, MaxVoltage) leaves hardware alerting disabled; the buffer is still
// sampled every pass.
type BufferConfig struct {
	Name   string `yaml:"name"` // "a" or "b"
	LowMV  uint16 `yaml:"low_mv"`
	HighMV uint16 `yaml:"high_mv"`
}

// DefaultConfig watches both buffers with alerting disabled.
func DefaultConfig() Config {
	return Config{
		PollIntervalMs: defaultPollIntervalMs,
		Buffers: []BufferConfig{
			{Name: "a", LowMV: 0, HighMV: adc081.MaxVoltage},
			{Name: "b", LowMV: 0, HighMV: adc081.MaxVoltage},
		},
	}
}

// Load reads and validates a YAML config file.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("monitor: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("monitor: parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = defaultPollIntervalMs
	}
	if len(c.Buffers) == 0 {
		c.Buffers = DefaultConfig().Buffers
	}
}

func (c Config) interval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Validate rejects unknown buffer names, duplicates and inverted or
// out-of-range windows.
func (c Config) Validate() error {
	seen := map[string]bool{}
	for _, b := range c.Buffers {
		if _, err := b.selector(); err != nil {
			return fmt.Errorf("monitor: buffer %q: unknown name", b.Name)
		}
		if seen[b.Name] {
			return fmt.Errorf("monitor: buffer %q: duplicate entry", b.Name)
		}
		seen[b.Name] = true
		if b.LowMV >= b.HighMV {
			return fmt.Errorf("monitor: buffer %q: window %d..%d mV is inverted or empty",
				b.Name, b.LowMV, b.HighMV)
		}
		if !mathx.Between(int(b.HighMV), 0, adc081.MaxVoltage) {
			return fmt.Errorf("monitor: buffer %q: high limit %d mV above %d",
				b.Name, b.HighMV, adc081.MaxVoltage)
		}
	}
	return nil
}

func (b BufferConfig) selector() (adc081.Selector, error) {
	switch b.Name {
	case "a", "A":
		return adc081.BufA, nil
	case "b", "B":
		return adc081.BufB, nil
	default:
		return 0, fmt.Errorf("monitor: unknown buffer name %q", b.Name)
	}
}
