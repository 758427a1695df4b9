package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"goodear/internal/pipeline"
)

// Chunking selects how transcripts are cut into playback sections.
type Chunking struct {
	Policy         string  `mapstructure:"policy"`
	FragmentTarget float64 `mapstructure:"fragment_target"`
	SentenceTarget float64 `mapstructure:"sentence_target"`
}

// Playback holds session tunables.
type Playback struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	Rewind       float64       `mapstructure:"rewind"`
	Forward      float64       `mapstructure:"forward"`
	Autoplay     bool          `mapstructure:"autoplay"`
	EventBuffer  int           `mapstructure:"event_buffer"`
}

// Storage locates the key-value state file and names its keys.
type Storage struct {
	Path         string `mapstructure:"path"`
	PlayedPrefix string `mapstructure:"played_prefix"`
	FolderKey    string `mapstructure:"folder_key"`
}

// Library configures lesson import and loading.
type Library struct {
	Root          string `mapstructure:"root"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
	NoAsync       bool   `mapstructure:"no_async"`
	Probe         bool   `mapstructure:"probe"`
}

// Config holds the full application configuration.
type Config struct {
	Chunking Chunking `mapstructure:"chunking"`
	Playback Playback `mapstructure:"playback"`
	Storage  Storage  `mapstructure:"storage"`
	Library  Library  `mapstructure:"library"`
}

// Default returns a Config with hardcoded defaults.
func Default() *Config {
	dir := dataDir()
	return &Config{
		Chunking: Chunking{
			Policy:         string(pipeline.PolicySentence),
			FragmentTarget: pipeline.DefaultFragmentTarget,
			SentenceTarget: pipeline.DefaultSentenceTarget,
		},
		Playback: Playback{
			TickInterval: 500 * time.Millisecond,
			Rewind:       5,
			Forward:      10,
			Autoplay:     false,
			EventBuffer:  64,
		},
		Storage: Storage{
			Path:         filepath.Join(dir, "state.yaml"),
			PlayedPrefix: "playedSegments_",
			FolderKey:    "SavedImportedFolderName",
		},
		Library: Library{
			Root:          dir,
			MaxConcurrent: 4,
			Probe:         true,
		},
	}
}

func dataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "goodear")
	}
	return ".goodear"
}

// Load layers defaults, an optional YAML file and GOODEAR_* environment
// variables. An empty path searches $HOME/.goodear.yaml and ./.goodear.yaml;
// a missing file is only an error when path was given explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("GOODEAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".goodear")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("chunking.policy", d.Chunking.Policy)
	v.SetDefault("chunking.fragment_target", d.Chunking.FragmentTarget)
	v.SetDefault("chunking.sentence_target", d.Chunking.SentenceTarget)

	v.SetDefault("playback.tick_interval", d.Playback.TickInterval)
	v.SetDefault("playback.rewind", d.Playback.Rewind)
	v.SetDefault("playback.forward", d.Playback.Forward)
	v.SetDefault("playback.autoplay", d.Playback.Autoplay)
	v.SetDefault("playback.event_buffer", d.Playback.EventBuffer)

	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.played_prefix", d.Storage.PlayedPrefix)
	v.SetDefault("storage.folder_key", d.Storage.FolderKey)

	v.SetDefault("library.root", d.Library.Root)
	v.SetDefault("library.max_concurrent", d.Library.MaxConcurrent)
	v.SetDefault("library.no_async", d.Library.NoAsync)
	v.SetDefault("library.probe", d.Library.Probe)
}

// Validate rejects settings the pipeline and session cannot run with.
func (c *Config) Validate() error {
	switch pipeline.Policy(c.Chunking.Policy) {
	case pipeline.PolicySentence, pipeline.PolicyFragment:
	default:
		return fmt.Errorf("config: unknown chunking policy %q", c.Chunking.Policy)
	}
	if c.Chunking.FragmentTarget <= 0 || c.Chunking.SentenceTarget <= 0 {
		return fmt.Errorf("config: chunk targets must be positive")
	}
	if c.Playback.TickInterval <= 0 {
		return fmt.Errorf("config: playback.tick_interval must be positive")
	}
	if c.Playback.Rewind < 0 || c.Playback.Forward < 0 {
		return fmt.Errorf("config: rewind and forward steps cannot be negative")
	}
	if c.Library.MaxConcurrent < 1 {
		return fmt.Errorf("config: library.max_concurrent must be at least 1")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("config: storage.path is required")
	}
	return nil
}

// PipelineOptions converts the chunking settings for pipeline.Process.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Policy:         pipeline.Policy(c.Chunking.Policy),
		FragmentTarget: c.Chunking.FragmentTarget,
		SentenceTarget: c.Chunking.SentenceTarget,
	}
}
