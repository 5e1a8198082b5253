package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Output    OutputConfig    `yaml:"output"`
	Templates TemplatesConfig `yaml:"templates"`
	Icons     IconsConfig     `yaml:"icons"`
	OmniFocus OmniFocusConfig `yaml:"omnifocus"`
	Obsidian  ObsidianConfig  `yaml:"obsidian"`
	Slack     SlackConfig     `yaml:"slack"`
}

type OutputConfig struct {
	BaseFolder string `yaml:"base_folder"`
}

// TemplatesConfig points at the three reusable source artifacts every
// colleague-specific artifact is derived from.
type TemplatesConfig struct {
	// Bundle directory holding Info-v3.plist and icon.png
	PerspectiveDir string `yaml:"perspective_dir"`
	// XML plist wrapping the template macro in its group
	MacroFile string `yaml:"macro_file"`
	// ZIP package with the template button profile
	ActionFile string `yaml:"action_file"`
}

// IconsConfig carries the per-target rendition sizes. Sizes are data,
// not literals inside the serializers.
type IconsConfig struct {
	PerspectiveSize int `yaml:"perspective_size"`
	MacroSize       int `yaml:"macro_size"`
	ActionSize      int `yaml:"action_size"`
	JPEGQuality     int `yaml:"jpeg_quality"`
}

type OmniFocusConfig struct {
	// Parent tag the colleague tag is created under
	ParentTagID string `yaml:"parent_tag_id"`
}

type ObsidianConfig struct {
	VaultPath    string `yaml:"vault_path"`
	PeopleFolder string `yaml:"people_folder"`
}

type SlackConfig struct {
	PhotoSize   string            `yaml:"photo_size"`
	OnePassword OnePasswordConfig `yaml:"onepassword"`
}

type OnePasswordConfig struct {
	ItemName  string `yaml:"item_name"`
	FieldName string `yaml:"field_name"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Output.BaseFolder == "" {
		c.Output.BaseFolder = ".output"
	}
	if c.Icons.PerspectiveSize == 0 {
		c.Icons.PerspectiveSize = 512
	}
	if c.Icons.MacroSize == 0 {
		c.Icons.MacroSize = 32
	}
	if c.Icons.ActionSize == 0 {
		c.Icons.ActionSize = 288
	}
	if c.Icons.JPEGQuality == 0 {
		c.Icons.JPEGQuality = 90
	}
	if c.Slack.PhotoSize == "" {
		c.Slack.PhotoSize = "512"
	}
	if c.Obsidian.PeopleFolder == "" {
		c.Obsidian.PeopleFolder = "people"
	}

	c.Output.BaseFolder = expandHome(c.Output.BaseFolder)
	c.Obsidian.VaultPath = expandHome(c.Obsidian.VaultPath)
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if c.Templates.PerspectiveDir == "" {
		return fmt.Errorf("templates.perspective_dir is required")
	}
	if c.Templates.MacroFile == "" {
		return fmt.Errorf("templates.macro_file is required")
	}
	if c.Templates.ActionFile == "" {
		return fmt.Errorf("templates.action_file is required")
	}
	if c.Icons.PerspectiveSize < 1 || c.Icons.MacroSize < 1 || c.Icons.ActionSize < 1 {
		return fmt.Errorf("icon sizes must be positive")
	}
	return nil
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
