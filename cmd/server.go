package cmd

import (
	"TuneFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the streaming server",
	Long: `Starts the HTTP server: REST API, static song delivery, the songs
directory watcher and the websocket event feed. Configuration comes from
the environment, optionally via a .env file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
