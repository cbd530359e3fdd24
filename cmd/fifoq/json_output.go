package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"fifoq/internal/queue"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeItemsJSON writes items as a JSON array; an empty queue renders as [].
func writeItemsJSON(cmd *cobra.Command, items []queue.Item) error {
	if items == nil {
		items = []queue.Item{}
	}
	return writeJSON(cmd, items)
}
