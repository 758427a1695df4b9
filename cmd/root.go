package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"goodear/internal/config"
	"goodear/internal/library"
	"goodear/internal/store"
)

var (
	verbose    bool
	quiet      bool
	configPath string
	noPersist  bool

	cfg *config.Config
	st  store.Store
)

var rootCmd = &cobra.Command{
	Use:   "goodear",
	Short: "Listen to recorded lessons section by section",
	Long: `GoodEar splits a lesson transcript (SRT or Whisper-style JSON) into short
sections and plays the audio one section at a time, highlighting the sentence
being spoken and remembering which sections you have heard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return setupConfig()
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func setupConfig() error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c

	if noPersist {
		st = store.NewMemory()
	} else {
		st = store.NewFileStore(cfg.Storage.Path)
	}
	slog.Debug("configuration loaded", "store", cfg.Storage.Path, "persist", !noPersist)
	return nil
}

func newLibrary() *library.Library {
	return &library.Library{
		Root:      cfg.Library.Root,
		Store:     st,
		FolderKey: cfg.Storage.FolderKey,
	}
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $HOME/.goodear.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noPersist, "no-persist", false, "keep progress in memory only")
}
