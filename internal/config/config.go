package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	// Width overrides the container width; 0 means use the terminal.
	Width int `mapstructure:"width"`

	// DebounceMs coalesces delta bursts before a parse-and-render pass.
	DebounceMs int `mapstructure:"debounce_ms"`

	Render RenderConfig `mapstructure:"render"`
	Stream StreamConfig `mapstructure:"stream"`
}

type RenderConfig struct {
	CodeTheme string `mapstructure:"code_theme"` // chroma style name
	Images    bool   `mapstructure:"images"`     // paint inline terminal images
	Shimmer   bool   `mapstructure:"shimmer"`    // animate the actively streaming overlay
}

type StreamConfig struct {
	// ChunkBytes and IntervalMs drive the stream replay command.
	ChunkBytes int `mapstructure:"chunk_bytes"`
	IntervalMs int `mapstructure:"interval_ms"`
}

func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "flowmark")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("width", 0)
	viper.SetDefault("debounce_ms", 30)
	viper.SetDefault("render.code_theme", "monokai")
	viper.SetDefault("render.images", true)
	viper.SetDefault("render.shimmer", true)
	viper.SetDefault("stream.chunk_bytes", 24)
	viper.SetDefault("stream.interval_ms", 40)

	// Read config file (optional - won't error if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "flowmark", "config.yaml"), nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`width: %d
debounce_ms: %d

render:
  code_theme: %s
  images: %t
  shimmer: %t

stream:
  chunk_bytes: %d
  interval_ms: %d
`, cfg.Width, cfg.DebounceMs,
		cfg.Render.CodeTheme, cfg.Render.Images, cfg.Render.Shimmer,
		cfg.Stream.ChunkBytes, cfg.Stream.IntervalMs)

	return os.WriteFile(path, []byte(content), 0600)
}
