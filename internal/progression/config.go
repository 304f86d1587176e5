package progression

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the tuning table for levels and theme unlocks.
type Config struct {
	// LevelThresholds maps a level to the minimum cumulative XP needed to reach it.
	LevelThresholds map[int]int `yaml:"level_thresholds"`
	// ThemeUnlocks maps a level to the theme unlocked on reaching it.
	ThemeUnlocks map[int]Theme `yaml:"theme_unlocks"`
}

// ConfigError reports an invalid progression table. It is raised at load time,
// before any award is processed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("progression config: %s: %s", e.Field, e.Reason)
}

// DefaultConfig returns the built-in progression table.
func DefaultConfig() Config {
	return Config{
		LevelThresholds: map[int]int{
			1:  0,
			2:  100,
			3:  250,
			4:  500,
			5:  1000,
			6:  1750,
			7:  2750,
			8:  4000,
			9:  5500,
			10: 7500,
		},
		ThemeUnlocks: map[int]Theme{
			1: ThemeCyberpunk,
			3: ThemeZenGarden,
			5: ThemeMinimalist,
		},
	}
}

// LoadConfig reads a YAML progression table from path and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read progression config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML progression table and validates it.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode progression config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the table invariants: contiguous levels starting at 1 with
// threshold 0, strictly increasing thresholds, and theme unlocks that fall
// within the level range with at least one theme available at level 1.
func (c Config) Validate() error {
	if len(c.LevelThresholds) == 0 {
		return &ConfigError{Field: "level_thresholds", Reason: "empty"}
	}
	levels := sortedLevels(c.LevelThresholds)
	if levels[0] != 1 {
		return &ConfigError{Field: "level_thresholds", Reason: fmt.Sprintf("must start at level 1, got %d", levels[0])}
	}
	if c.LevelThresholds[1] != 0 {
		return &ConfigError{Field: "level_thresholds", Reason: fmt.Sprintf("level 1 must require 0 xp, got %d", c.LevelThresholds[1])}
	}
	for i := 1; i < len(levels); i++ {
		prev, cur := levels[i-1], levels[i]
		if cur != prev+1 {
			return &ConfigError{Field: "level_thresholds", Reason: fmt.Sprintf("gap between level %d and %d", prev, cur)}
		}
		if c.LevelThresholds[cur] <= c.LevelThresholds[prev] {
			return &ConfigError{
				Field:  "level_thresholds",
				Reason: fmt.Sprintf("level %d threshold %d is not above level %d threshold %d", cur, c.LevelThresholds[cur], prev, c.LevelThresholds[prev]),
			}
		}
	}
	maxLevel := levels[len(levels)-1]

	if len(c.ThemeUnlocks) == 0 {
		return &ConfigError{Field: "theme_unlocks", Reason: "empty"}
	}
	seen := map[Theme]int{}
	for level, theme := range c.ThemeUnlocks {
		if strings.TrimSpace(string(theme)) == "" {
			return &ConfigError{Field: "theme_unlocks", Reason: fmt.Sprintf("empty theme id at level %d", level)}
		}
		if level < 1 || level > maxLevel {
			return &ConfigError{Field: "theme_unlocks", Reason: fmt.Sprintf("theme %q unlock level %d outside 1..%d", theme, level, maxLevel)}
		}
		if other, ok := seen[theme]; ok {
			return &ConfigError{Field: "theme_unlocks", Reason: fmt.Sprintf("theme %q listed at levels %d and %d", theme, other, level)}
		}
		seen[theme] = level
	}
	if _, ok := c.ThemeUnlocks[1]; !ok {
		return &ConfigError{Field: "theme_unlocks", Reason: "no default theme at level 1"}
	}
	return nil
}

func sortedLevels[V any](m map[int]V) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
