package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fifoq/internal/config"
	"fifoq/internal/itemfile"
	"fifoq/internal/logging"
	"fifoq/internal/queue"
)

// retryLimitFromConfig is the value a bare --retry-limit takes.
const retryLimitFromConfig = "config"

// retryLimitFlag is an int flag whose bare form defers to prune.retry_limit.
type retryLimitFlag struct {
	value      int
	fromConfig bool
}

func (f *retryLimitFlag) String() string {
	if f.fromConfig {
		return retryLimitFromConfig
	}
	return strconv.Itoa(f.value)
}

func (f *retryLimitFlag) Set(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == retryLimitFromConfig {
		f.fromConfig = true
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("expected an integer, got %q", raw)
	}
	f.value = n
	f.fromConfig = false
	return nil
}

func (f *retryLimitFlag) Type() string { return "int" }

type pruneOptions struct {
	filters    []string
	rules      []string
	completed  bool
	failed     bool
	retryLimit retryLimitFlag
	dryRun     bool
}

// namedFilter pairs a filter with the flag that produced it, for output.
type namedFilter struct {
	name   string
	filter *queue.Filter
}

type pruneResult struct {
	DryRun    bool         `json:"dry_run"`
	Filters   []string     `json:"filters"`
	Removed   []queue.Item `json:"removed"`
	Remaining int          `json:"remaining"`
}

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var opts pruneOptions

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove every item matching a filter",
		Long: "Remove matching items in one pass per filter. Filters are JSON objects such as " +
			`{"retry":{"$gt":10},"prio":{"$lt":1000}}` + " and are applied in flag order: " +
			"--rule, --filter, --completed, --failed, then --retry-limit.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if opts.retryLimit.fromConfig {
				opts.retryLimit.value = cfg.Prune.RetryLimit
			}
			filters, err := collectPruneFilters(cfg, opts, cmd.Flags().Changed("retry-limit"))
			if err != nil {
				return err
			}
			return ctx.withStore(cmd, func(runCtx context.Context, store *itemfile.Store, logger *slog.Logger) error {
				result, err := runPrune(runCtx, store, filters, opts.dryRun)
				if err != nil {
					return err
				}
				logPrune(runCtx, logger, result)
				return renderPrune(cmd, ctx.outputFormat(), result)
			})
		},
	}

	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "JSON filter object (repeatable)")
	cmd.Flags().StringArrayVar(&opts.rules, "rule", nil, "Named filter from prune.rules (repeatable)")
	cmd.Flags().BoolVar(&opts.completed, "completed", false, `Remove items whose status is "completed"`)
	cmd.Flags().BoolVar(&opts.failed, "failed", false, `Remove items whose status is "failed"`)
	cmd.Flags().Var(&opts.retryLimit, "retry-limit", "Remove items whose retry counter exceeds N; pass as --retry-limit=N, bare flag uses prune.retry_limit")
	cmd.Flags().Lookup("retry-limit").NoOptDefVal = retryLimitFromConfig
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report what would be removed without saving")
	return cmd
}

func collectPruneFilters(cfg *config.Config, opts pruneOptions, retryLimitSet bool) ([]namedFilter, error) {
	var filters []namedFilter
	for _, name := range opts.rules {
		f, err := cfg.Rule(name)
		if err != nil {
			return nil, err
		}
		filters = append(filters, namedFilter{name: "rule:" + strings.TrimSpace(name), filter: f})
	}
	for _, spec := range opts.filters {
		f, err := queue.ParseFilter([]byte(spec))
		if err != nil {
			return nil, fmt.Errorf("--filter %s: %w", spec, err)
		}
		filters = append(filters, namedFilter{name: "filter:" + spec, filter: f})
	}
	if opts.completed {
		filters = append(filters, namedFilter{name: "completed", filter: queue.StatusFilter(queue.StatusCompleted)})
	}
	if opts.failed {
		filters = append(filters, namedFilter{name: "failed", filter: queue.StatusFilter(queue.StatusFailed)})
	}
	if retryLimitSet {
		limit := opts.retryLimit.value
		if limit < 0 {
			return nil, fmt.Errorf("--retry-limit must be >= 0, got %d", limit)
		}
		filters = append(filters, namedFilter{
			name:   "retry-limit:" + strconv.Itoa(limit),
			filter: queue.RetryLimitFilter(limit),
		})
	}
	if len(filters) == 0 {
		return nil, errors.New("nothing to prune: pass --filter, --rule, --completed, --failed or --retry-limit")
	}
	return filters, nil
}

func applyFilters(q *queue.Queue, filters []namedFilter) []queue.Item {
	before := q.Snapshot()
	for _, nf := range filters {
		q.FindAndRemove(nf.filter)
	}
	return removedItems(before, q.Items())
}

func runPrune(ctx context.Context, store *itemfile.Store, filters []namedFilter, dryRun bool) (pruneResult, error) {
	result := pruneResult{DryRun: dryRun, Filters: make([]string, 0, len(filters))}
	for _, nf := range filters {
		result.Filters = append(result.Filters, nf.name)
	}

	if dryRun {
		q, err := store.Read(ctx)
		if err != nil {
			return result, err
		}
		result.Removed = applyFilters(q, filters)
		result.Remaining = q.Len()
		return result, nil
	}

	err := store.Update(ctx, func(q *queue.Queue) error {
		result.Removed = applyFilters(q, filters)
		result.Remaining = q.Len()
		return nil
	})
	return result, err
}

func logPrune(ctx context.Context, logger *slog.Logger, result pruneResult) {
	logger = logging.NewComponentLogger(logger, "prune")
	attrs := []logging.Attr{
		logging.String("filter", strings.Join(result.Filters, " ")),
		logging.Int("removed", len(result.Removed)),
		logging.Int("remaining", result.Remaining),
		logging.Bool("dry_run", result.DryRun),
		logging.Items("removed_items", result.Removed),
	}
	if result.DryRun {
		logger.DebugContext(ctx, "prune preview", logging.Args(attrs...)...)
		return
	}
	logger.InfoContext(ctx, "items pruned", logging.Args(attrs...)...)
}

func renderPrune(cmd *cobra.Command, format string, result pruneResult) error {
	if format == "json" {
		if result.Removed == nil {
			result.Removed = []queue.Item{}
		}
		return writeJSON(cmd, result)
	}
	out := cmd.OutOrStdout()
	verb := "Removed"
	if result.DryRun {
		verb = "Would remove"
	}
	noun := "items"
	if len(result.Removed) == 1 {
		noun = "item"
	}
	fmt.Fprintf(out, "%s %d %s (%d remaining)\n", verb, len(result.Removed), noun, result.Remaining)
	for _, line := range itemLines(result.Removed) {
		fmt.Fprintln(out, "  "+line)
	}
	return nil
}
