package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"demo-data-loader/internal/redisclient"

	"github.com/spf13/cobra"
)

var runsLimit int

// runsCmd groups run history subcommands.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the run history kept in Redis",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the most recent run reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if !cfg.History.Enabled {
			return errors.New("run history is disabled: set history.enabled in config.yaml")
		}
		d, err := cfg.ParseDurations()
		if err != nil {
			return err
		}
		store, closeHistory := openHistory(cfg, d)
		defer closeHistory()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		runs, err := store.RecentRuns(ctx, runsLimit)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	},
}

// runsPingCmd pings the configured Redis server.
var runsPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping Redis and print PONG",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()

		res, err := redisclient.Check(context.Background(), rdb)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs to show")
	runsCmd.AddCommand(runsListCmd, runsPingCmd)
	rootCmd.AddCommand(runsCmd)
}
