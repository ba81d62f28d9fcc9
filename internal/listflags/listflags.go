// Package listflags declares the flags shared by pomo's list commands.
package listflags

import "github.com/spf13/cobra"

// AddAllFlag adds --all, which includes completed items.
func AddAllFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVarP(target, "all", "a", false, "Include completed items")
}

// AddJSONFlag adds --json, which switches output to JSON.
func AddJSONFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVar(target, "json", false, "Output as JSON")
}
