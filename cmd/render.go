package cmd

import (
	"bufio"
	"context"
	"os"
	"time"

	"demo-data-loader/internal/loader"
	"demo-data-loader/internal/processor"
	"demo-data-loader/internal/source"

	"github.com/spf13/cobra"
)

var (
	renderOutput string
	renderMode   string
)

// renderCmd processes a template and writes the result without delivering it.
var renderCmd = &cobra.Command{
	Use:   "render <template_url_or_path>",
	Short: "Render a template into the past week and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		d, err := cfg.ParseDurations()
		if err != nil {
			return err
		}
		mode, err := processor.ParseMode(cfg.Loader.Mode)
		if err != nil {
			return err
		}
		if renderMode != "" {
			if mode, err = processor.ParseMode(renderMode); err != nil {
				return err
			}
		}

		l := &loader.Loader{
			Fetcher: source.NewFetcher(d.Timeout, cfg.Loader.MaxTemplateBytes),
			Mode:    mode,
		}
		ctx, cancel := context.WithTimeout(context.Background(), d.Timeout+5*time.Second)
		defer cancel()
		res, err := l.Process(ctx, args[0], "")
		if err != nil {
			return err
		}

		if renderOutput == "" || renderOutput == "-" {
			w := bufio.NewWriter(cmd.OutOrStdout())
			if _, err := res.WriteTo(w); err != nil {
				return err
			}
			return w.Flush()
		}
		f, err := os.Create(renderOutput)
		if err != nil {
			return err
		}
		if _, err := res.WriteTo(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write to this file instead of stdout")
	renderCmd.Flags().StringVar(&renderMode, "mode", "", "template mode: auto, events or lines (default: loader.mode)")
	rootCmd.AddCommand(renderCmd)
}
