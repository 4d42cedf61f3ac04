package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/fifteen/game/board"
)

// ValidateGameConfig validates a preset and fills in defaults for the
// initializer kind and any missing messages
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config cannot be nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate width
	if config.Width < MinWidth || config.Width > MaxWidth {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinWidth, MaxWidth, config.Width)
	}

	if config.Initializer == "" {
		config.Initializer = InitializerShuffle
		if len(config.Permutation) > 0 {
			config.Initializer = InitializerFixed
		}
	}

	switch config.Initializer {
	case InitializerFixed:
		if err := validatePermutation(config.Width, config.Permutation); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
	case InitializerShuffle:
		if len(config.Permutation) > 0 {
			return fmt.Errorf("config validation: permutation is only allowed with the %q initializer", InitializerFixed)
		}
	default:
		return fmt.Errorf("config validation: initializer must be %q or %q, got %q",
			InitializerFixed, InitializerShuffle, config.Initializer)
	}

	applyDefaultMessages(&config.Messages)

	// Validate format strings
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for the move count")
	}
	if !strings.Contains(config.Messages.Moved, "%d") {
		return fmt.Errorf("config validation: messages.moved must contain %%d for the tile")
	}
	if !strings.Contains(config.Messages.NothingToSlide, "%s") {
		return fmt.Errorf("config validation: messages.nothing_to_slide must contain %%s for the direction")
	}

	return nil
}

// validatePermutation checks a fixed preset: width*width entries, one blank
// and every tile 1..width*width-1 exactly once
func validatePermutation(width int, permutation []board.Optional[int]) error {
	size := width * width
	if len(permutation) != size {
		return fmt.Errorf("permutation must have %d entries for width %d, got %d", size, width, len(permutation))
	}

	seen := make(map[int]bool, size)
	blanks := 0
	for i, t := range permutation {
		v, ok := t.Get()
		if !ok {
			blanks++
			continue
		}
		if v < 1 || v >= size {
			return fmt.Errorf("permutation entry %d: tile %d is outside 1..%d", i+1, v, size-1)
		}
		if seen[v] {
			return fmt.Errorf("permutation entry %d: tile %d appears twice", i+1, v)
		}
		seen[v] = true
	}
	if blanks != 1 {
		return fmt.Errorf("permutation must contain exactly one blank (null), got %d", blanks)
	}
	return nil
}

func applyDefaultMessages(m *Messages) {
	if m.Welcome == "" {
		m.Welcome = "Slide the tiles into order: 1, 2, 3, ... with the blank anywhere."
	}
	if m.Victory == "" {
		m.Victory = "Solved in %d moves!"
	}
	if m.Moved == "" {
		m.Moved = "Moved tile %d"
	}
	if m.NothingToSlide == "" {
		m.NothingToSlide = "Nothing to slide %s"
	}
	if m.AlreadySolved == "" {
		m.AlreadySolved = "Puzzle already solved. Reset to play again."
	}
}

// NewInitializer builds the permutation source described by the config
func (c *GameConfig) NewInitializer() Initializer {
	if c.Initializer == InitializerFixed {
		return FixedInitializer{Permutation: c.Permutation}
	}
	return NewShuffleInitializer(c.Seed, c.SolvableOnly)
}

// DefaultConfig is the classic 4x4 puzzle with a solvable shuffle
func DefaultConfig() *GameConfig {
	config := &GameConfig{
		Name:         "classic",
		Description:  "Classic 4x4 Game of Fifteen with a solvable random start",
		Width:        DefaultWidth,
		Initializer:  InitializerShuffle,
		SolvableOnly: true,
	}
	applyDefaultMessages(&config.Messages)
	return config
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfig(data)
}

// ParseGameConfig decodes and validates a JSON preset
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	config, err := LoadGameConfig(filepath.Join("configs", configName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file '%s' not found", configName)
		}
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}

	return config, nil
}
