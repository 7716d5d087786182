package cmd

import (
	"fmt"

	"TuneFM/config"
	"TuneFM/db"
	"TuneFM/logger"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis-check",
	Short: "Check Redis connectivity",
	Long: `Connects to the configured Redis instance and pings it. The server
runs without Redis, so this only tells you whether the catalog cache
will be active.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.InitLogger(logger.Config{Level: logger.WarnLevel})

		cfg := config.Load()
		if err := db.ConnectRedis(cfg); err != nil {
			return fmt.Errorf("redis at %s:%s unreachable: %w", cfg.RedisHost, cfg.RedisPort, err)
		}
		defer db.CloseRedis()

		fmt.Printf("redis at %s:%s is reachable\n", cfg.RedisHost, cfg.RedisPort)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
