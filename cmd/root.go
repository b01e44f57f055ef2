package cmd

import (
	"fmt"
	"os"

	"vintagefm/config"
	"vintagefm/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vintagefm",
	Short: "Vintage FM is an internet radio station with an AI host.",
	Long: `Vintage FM streams the local music directory, padded out with Last.fm
recommendations, as one continuous MP3 stream with spoken announcements.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		logger.Fatal("command failed", logger.ErrorField(err))
	}
}

// setup loads configuration and starts the logger.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	err = logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.Log.Level),
		OutputPath: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
