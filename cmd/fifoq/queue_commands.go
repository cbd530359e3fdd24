package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fifoq/internal/itemfile"
	"fifoq/internal/logging"
	"fifoq/internal/queue"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the queue head first, e.g. <- [1]  [2] <-",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(runCtx context.Context, store *itemfile.Store, _ *slog.Logger) error {
				q, err := store.Read(runCtx)
				if err != nil {
					return err
				}
				if ctx.outputFormat() == "json" {
					return writeJSON(cmd, map[string]any{"queue": q.String(), "length": q.Len()})
				}
				fmt.Fprintln(cmd.OutOrStdout(), q.String())
				return nil
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items with their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must be >= 0")
			}
			return ctx.withStore(cmd, func(runCtx context.Context, store *itemfile.Store, _ *slog.Logger) error {
				q, err := store.Read(runCtx)
				if err != nil {
					return err
				}
				items := q.Items()
				if limit > 0 && len(items) > limit {
					items = items[:limit]
				}
				return renderItems(cmd, ctx.outputFormat(), items, q.Len())
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many items from the head (0 = all)")
	return cmd
}

func renderItems(cmd *cobra.Command, format string, items []queue.Item, total int) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeItemsJSON(cmd, items)
	case "text":
		for _, line := range itemLines(items) {
			fmt.Fprintln(out, line)
		}
		return nil
	default:
		if len(items) == 0 {
			fmt.Fprintln(out, "Queue is empty")
			return nil
		}
		columns := itemColumns(items)
		headers := make([]string, 0, len(columns)+1)
		headers = append(headers, "#")
		headers = append(headers, columns...)
		caption := fmt.Sprintf("%d of %d items", len(items), total)
		fmt.Fprint(out, renderTable(tableSpec{
			headers: headers,
			rows:    buildItemRows(items, columns),
			aligns:  itemColumnAlignments(items, columns),
			caption: caption,
		}))
		return nil
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize queue length, statuses and retry counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(cmd, func(runCtx context.Context, store *itemfile.Store, _ *slog.Logger) error {
				q, err := store.Read(runCtx)
				if err != nil {
					return err
				}
				stats := computeStats(q.Items(), cfg.Prune.RetryLimit)
				if ctx.outputFormat() == "json" {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				for _, line := range statsLines(stats, shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var fields []string
	var id string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append an item at the tail of the queue",
		Long: "Append an item built from --field key=value pairs. Values are parsed as JSON " +
			"scalars when possible (42, true, \"text\") and kept as text otherwise. Items " +
			"without an _id or id field get a generated _id.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := buildItem(fields, id)
			if err != nil {
				return err
			}
			return ctx.withStore(cmd, func(runCtx context.Context, store *itemfile.Store, logger *slog.Logger) error {
				var length int
				err := store.Update(runCtx, func(q *queue.Queue) error {
					q.AddItem(item)
					length = q.Len()
					return nil
				})
				if err != nil {
					return err
				}
				label, _ := item.Label()
				addLogger := logging.NewComponentLogger(logger, "add")
				addLogger.InfoContext(runCtx, "item queued",
					logging.ItemLabel(item),
					logging.Int("count", length),
				)
				addLogger.DebugContext(runCtx, "item fields", logging.ItemLabel(item), logging.Fields(item))
				if ctx.outputFormat() == "json" {
					return writeJSON(cmd, item)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued [%s] (%d items)\n", label, length)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Item field as key=value (repeatable)")
	cmd.Flags().StringVar(&id, "id", "", "Value for the _id field (defaults to a random UUID)")
	return cmd
}

func buildItem(fields []string, id string) (queue.Item, error) {
	item := make(queue.Item, len(fields)+1)
	for _, field := range fields {
		key, raw, ok := strings.Cut(field, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --field %q: expected key=value", field)
		}
		value := parseFieldValue(raw)
		if value.IsAbsent() {
			delete(item, key)
			continue
		}
		item[key] = value
	}
	if id = strings.TrimSpace(id); id != "" {
		item[queue.FieldPrimaryID] = queue.Text(id)
	}
	if _, ok := item.Label(); !ok {
		item[queue.FieldPrimaryID] = queue.Text(uuid.NewString())
	}
	return item, nil
}

// parseFieldValue reads raw as a JSON scalar, falling back to text.
func parseFieldValue(raw string) queue.Value {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err == nil && !dec.More() {
		if value, err := queue.ValueOf(decoded); err == nil {
			return value
		}
	}
	return queue.Text(raw)
}

func newNextCommand(ctx *commandContext) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Remove and print the oldest item(s)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be >= 1")
			}
			return ctx.withStore(cmd, func(runCtx context.Context, store *itemfile.Store, logger *slog.Logger) error {
				var taken []queue.Item
				var remaining int
				err := store.Update(runCtx, func(q *queue.Queue) error {
					for range count {
						item, ok := q.Next()
						if !ok {
							break
						}
						taken = append(taken, item)
					}
					remaining = q.Len()
					return nil
				})
				if err != nil {
					return err
				}
				logging.NewComponentLogger(logger, "next").DebugContext(runCtx, "items dequeued",
					logging.Int("count", len(taken)),
					logging.Int("remaining", remaining),
				)
				if ctx.outputFormat() == "json" {
					return writeItemsJSON(cmd, taken)
				}
				out := cmd.OutOrStdout()
				if len(taken) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				for _, line := range itemLines(taken) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of items to dequeue")
	return cmd
}
