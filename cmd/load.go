package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"demo-data-loader/internal/hook"
	"demo-data-loader/internal/loader"
	"demo-data-loader/internal/processor"

	"github.com/spf13/cobra"
)

var (
	loadWebhook   string
	loadOID       string
	loadDelay     time.Duration
	loadBatchSize int
	loadMode      string
)

// loadCmd renders a template and delivers it to a webhook.
var loadCmd = &cobra.Command{
	Use:   "load [template_url_or_path]",
	Short: "Render a template into the past week and deliver it to a webhook",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cmd.Flags().Changed("batch-size") {
			cfg.Loader.BatchSize = loadBatchSize
		}
		d, err := cfg.ParseDurations()
		if err != nil {
			return err
		}

		template := cfg.Loader.TemplateURL
		if len(args) == 1 {
			template = args[0]
		}
		webhook := loadWebhook
		if webhook == "" && loadOID != "" {
			webhook, err = hook.Target{
				Domain:    cfg.Hook.Domain,
				Extension: cfg.Hook.Extension,
				Name:      cfg.Hook.Name,
				OID:       loadOID,
			}.URL()
			if err != nil {
				return err
			}
		}
		if webhook == "" {
			webhook = cfg.Loader.WebhookURL
		}

		history, closeHistory := openHistory(cfg, d)
		defer closeHistory()
		l, err := newLoader(cfg, d, history)
		if err != nil {
			return err
		}

		req := loader.Request{Template: template, Webhook: webhook}
		if cmd.Flags().Changed("delay") {
			req.Delay = &loadDelay
		}
		if loadMode != "" {
			if req.Mode, err = processor.ParseMode(loadMode); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), d.Timeout+5*time.Second)
		defer cancel()
		rep, err := l.Load(ctx, req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
		if rep.EventsFailed > 0 {
			return fmt.Errorf("%d of %d events failed", rep.EventsFailed, rep.EventsTotal)
		}
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVarP(&loadWebhook, "webhook", "w", "", "webhook URL (default: loader.webhook_url)")
	loadCmd.Flags().StringVar(&loadOID, "oid", "", "derive the webhook URL for this organization id")
	loadCmd.Flags().DurationVar(&loadDelay, "delay", 50*time.Millisecond, "pause between webhook calls")
	loadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 10, "lines per webhook call for line templates")
	loadCmd.Flags().StringVar(&loadMode, "mode", "", "template mode: auto, events or lines (default: loader.mode)")
	rootCmd.AddCommand(loadCmd)
}
