package cmd

import (
	"context"
	"errors"
	"fmt"

	"vintagefm/core/lastfm"
	"vintagefm/model"

	"github.com/spf13/cobra"
)

var (
	lastfmTag    string
	lastfmLimit  int
	lastfmTrack  string
	lastfmArtist string
)

var lastfmCmd = &cobra.Command{
	Use:   "lastfm",
	Short: "Query Last.fm the way the station does",
	Long:  `Fetch the top tracks for a tag, or look up the metadata shown while a recommended track plays.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		client := lastfm.NewClient(cfg.LastFM.APIKey)
		client.SetBaseURL(cfg.LastFM.BaseURL)
		client.SetTimeout(cfg.LastFM.Timeout)
		if !client.Enabled() {
			return errors.New("LASTFM_API_KEY is not set")
		}
		ctx := context.Background()

		if lastfmTrack != "" {
			ref := model.RemoteRef(lastfmTrack, lastfmArtist)
			if lastfmArtist == "" {
				ref = model.ParseRemoteRef(lastfmTrack)
			}
			info, err := client.TrackInfo(ctx, ref.Title, ref.Artist)
			if err != nil {
				return err
			}
			fmt.Printf("Title:  %s\nArtist: %s\nAlbum:  %s\nImage:  %s\n", info.Title, info.Artist, info.Album, info.Image)
			return nil
		}

		tag := lastfmTag
		if tag == "" {
			tag = cfg.Station.Genre
		}
		refs, err := client.TopTracks(ctx, tag, lastfmLimit)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			fmt.Printf("No tracks for tag %q\n", tag)
			return nil
		}
		fmt.Printf("Top %d tracks for %q:\n", len(refs), tag)
		for i, ref := range refs {
			fmt.Printf("%d. %s\n", i+1, ref)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lastfmCmd)
	lastfmCmd.Flags().StringVarP(&lastfmTag, "tag", "t", "", "tag to fetch (defaults to GENRE)")
	lastfmCmd.Flags().IntVarP(&lastfmLimit, "limit", "l", 5, "number of tracks")
	lastfmCmd.Flags().StringVar(&lastfmTrack, "track", "", "look up this track instead")
	lastfmCmd.Flags().StringVar(&lastfmArtist, "artist", "", "artist of --track; may also be given as --track \"Title - Artist\"")
}
