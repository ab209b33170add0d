package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"demo-data-loader/internal/catalog"

	"github.com/spf13/cobra"
)

var rulesFormat string

// rulesCmd prints the detection rules the demo events are built to trigger.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the demo detection rule catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := catalog.Rules()
		if err != nil {
			return err
		}
		switch strings.ToLower(rulesFormat) {
		case "yaml", "yml":
			b, err := catalog.Marshal(rules)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rules)
		case "names":
			names, err := catalog.Names()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		default:
			return fmt.Errorf("unknown format %q (want yaml, json or names)", rulesFormat)
		}
	},
}

func init() {
	rulesCmd.Flags().StringVarP(&rulesFormat, "format", "f", "yaml", "output format: yaml, json or names")
	rootCmd.AddCommand(rulesCmd)
}
