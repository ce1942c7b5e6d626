package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/flipscope/flipscope/internal/fetch"
)

var fetchTimeout time.Duration

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the region datasets into the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
		defer cancel()

		return fetch.New(log).Download(ctx, cfg.DataDir)
	},
}

func init() {
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 15*time.Minute, "overall download timeout")

	rootCmd.AddCommand(fetchCmd)
}
