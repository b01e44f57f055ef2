package cmd

import (
	"context"
	"fmt"
	"time"

	"vintagefm/cache"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Check the Redis speech cache",
	Long:  `Connect to Redis, run a read/write round trip and report how many announcer clips are cached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		fmt.Printf("Redis: %s:%s, DB: %d\n", cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB)

		client, err := cache.ConnectRedis(cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		fmt.Println("Connected.")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := cache.CheckRedis(ctx, client); err != nil {
			return err
		}
		fmt.Println("Read/write check passed.")

		clips, err := cache.CountSpeechClips(ctx, client)
		if err != nil {
			return err
		}
		fmt.Printf("Cached announcer clips: %d\n", clips)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
