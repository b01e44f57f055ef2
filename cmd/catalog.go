package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"vintagefm/core/catalog"
	"vintagefm/core/lastfm"
	"vintagefm/core/station"

	"github.com/spf13/cobra"
)

var catalogRecommend bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the local catalog and a sample playlist",
	Long:  `Scan the music directory the way the server does at startup and print one freshly built playlist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		cat := catalog.Scan(cfg.Station.MusicDir, cfg.Station.AudioExtensions)
		fmt.Printf("Music directory: %s (%d files)\n", cfg.Station.MusicDir, cat.Len())
		for _, f := range cat.Files() {
			fmt.Printf("  %s\n", filepath.Base(f))
		}

		var rec station.Recommender
		if catalogRecommend {
			lfm := lastfm.NewClient(cfg.LastFM.APIKey)
			lfm.SetBaseURL(cfg.LastFM.BaseURL)
			lfm.SetTimeout(cfg.LastFM.Timeout)
			rec = lastfm.NewRecommender(lfm)
		}

		builder := station.NewBuilder(cat, rec, cfg.Station.Genre, cfg.Station.RecommendLimit, nil)
		playlist := builder.Build(context.Background())

		local := len(playlist.LocalPaths())
		fmt.Printf("\nSample playlist (%d entries, %d local, %d recommended):\n", len(playlist), local, len(playlist)-local)
		for i, ref := range playlist {
			if ref.Path != "" {
				fmt.Printf("%3d. [local]  %s\n", i+1, filepath.Base(ref.Path))
				continue
			}
			fmt.Printf("%3d. [remote] %s\n", i+1, ref)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().BoolVarP(&catalogRecommend, "recommend", "r", false, "include Last.fm recommendations")
}
