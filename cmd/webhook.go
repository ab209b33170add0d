package cmd

import (
	"fmt"

	"demo-data-loader/internal/hook"

	"github.com/spf13/cobra"
)

var (
	webhookOID    string
	webhookDomain string
)

var webhookCmd = &cobra.Command{
	Use:   "webhook-url",
	Short: "Print the demo webhook URL for an organization",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		domain := cfg.Hook.Domain
		if webhookDomain != "" {
			domain = webhookDomain
		}
		u, err := hook.Target{
			Domain:    domain,
			Extension: cfg.Hook.Extension,
			Name:      cfg.Hook.Name,
			OID:       webhookOID,
		}.URL()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

func init() {
	webhookCmd.Flags().StringVar(&webhookOID, "oid", "", "organization id (required)")
	webhookCmd.Flags().StringVar(&webhookDomain, "hook-domain", "", "webhook domain (default: hook.domain)")
	_ = webhookCmd.MarkFlagRequired("oid")
	rootCmd.AddCommand(webhookCmd)
}
