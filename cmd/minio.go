package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vintagefm/storage"

	"github.com/spf13/cobra"
)

var minioPull bool

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "List or pull the music bucket",
	Long:  `List the audio files in the MinIO music bucket, or download them into the music directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		if !cfg.MinioEnabled() {
			return errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required")
		}
		fmt.Printf("MinIO: %s, bucket: %s, prefix: %s\n", cfg.Minio.Endpoint, cfg.Minio.Bucket, cfg.Minio.Prefix)

		bucket, err := storage.NewCatalogBucket(cfg.Minio, cfg.Station.AudioExtensions)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if minioPull {
			result, err := bucket.Pull(ctx, cfg.Station.MusicDir)
			if err != nil {
				return err
			}
			fmt.Printf("Pulled into %s: %d downloaded, %d up to date, %d failed\n",
				cfg.Station.MusicDir, result.Downloaded, result.Skipped, result.Failed)
			return nil
		}

		objects, stats, err := bucket.ListAudio(ctx)
		if err != nil {
			return err
		}
		for _, obj := range objects {
			fmt.Printf("%-50s %10s  %s\n", obj.Name, storage.FormatSize(obj.Size), obj.LastModified.Format(time.RFC3339))
		}
		fmt.Printf("\n%d files, %s total", stats.TotalObjects, storage.FormatSize(stats.TotalSize))
		if !stats.LastModified.IsZero() {
			fmt.Printf(", last modified %s", stats.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
	minioCmd.Flags().BoolVarP(&minioPull, "pull", "p", false, "download the bucket into MUSIC_DIR")

	minioCmd.Example = `  # list the music in the bucket
  vintagefm minio

  # download it into the music directory
  vintagefm minio --pull`
}
