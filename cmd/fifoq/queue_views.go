package main

import (
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fifoq/internal/queue"
)

// leadingColumns are shown first, in this order, when any item carries them.
var leadingColumns = []string{
	queue.FieldPrimaryID,
	queue.FieldID,
	queue.FieldStatus,
	queue.FieldTitle,
	queue.FieldRetry,
	queue.FieldPrio,
}

var titleCaser = cases.Title(language.Und)

func itemColumns(items []queue.Item) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		for key, value := range item {
			if !value.IsAbsent() {
				seen[key] = struct{}{}
			}
		}
	}

	columns := make([]string, 0, len(seen))
	for _, key := range leadingColumns {
		if _, ok := seen[key]; ok {
			columns = append(columns, key)
			delete(seen, key)
		}
	}
	rest := make([]string, 0, len(seen))
	for key := range seen {
		rest = append(rest, key)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

func buildItemRows(items []queue.Item, columns []string) [][]string {
	rows := make([][]string, 0, len(items))
	for idx, item := range items {
		row := make([]string, 0, len(columns)+1)
		row = append(row, strconv.Itoa(idx))
		for _, key := range columns {
			value := item.Field(key)
			if key == queue.FieldStatus {
				row = append(row, formatStatusLabel(value.String()))
				continue
			}
			row = append(row, value.String())
		}
		rows = append(rows, row)
	}
	return rows
}

func itemColumnAlignments(items []queue.Item, columns []string) []columnAlignment {
	aligns := make([]columnAlignment, 0, len(columns)+1)
	aligns = append(aligns, alignRight)
	for _, key := range columns {
		numeric := false
		for _, item := range items {
			kind := item.Field(key).Kind()
			if kind == queue.KindAbsent {
				continue
			}
			numeric = kind == queue.KindNumber
			if !numeric {
				break
			}
		}
		if numeric {
			aligns = append(aligns, alignRight)
		} else {
			aligns = append(aligns, alignLeft)
		}
	}
	return aligns
}

// itemLine renders one item as "[label] key=value ..." with keys sorted.
func itemLine(item queue.Item, fallback int) string {
	label, ok := item.Label()
	if !ok {
		label = strconv.Itoa(fallback)
	}
	keys := make([]string, 0, len(item))
	for key, value := range item {
		if !value.IsAbsent() {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(label)
	b.WriteString("]")
	for _, key := range keys {
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString("=")
		value := item[key]
		if value.Kind() == queue.KindText && strings.ContainsAny(value.String(), " \t\"=") {
			b.WriteString(strconv.Quote(value.String()))
		} else {
			b.WriteString(value.String())
		}
	}
	return b.String()
}

func itemLines(items []queue.Item) []string {
	lines := make([]string, 0, len(items))
	fallback := 0
	for _, item := range items {
		if _, ok := item.Label(); ok {
			lines = append(lines, itemLine(item, 0))
			continue
		}
		lines = append(lines, itemLine(item, fallback))
		fallback++
	}
	return lines
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	return titleCaser.String(strings.ReplaceAll(status, "_", " "))
}

// removedItems returns the members of before that are missing from after.
// after must be an order-preserving subsequence of before holding the same
// item maps.
func removedItems(before, after []queue.Item) []queue.Item {
	var removed []queue.Item
	j := 0
	for _, item := range before {
		if j < len(after) && sameItem(item, after[j]) {
			j++
			continue
		}
		removed = append(removed, item)
	}
	return removed
}

func sameItem(a, b queue.Item) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

type queueStats struct {
	Total          int            `json:"total"`
	Head           string         `json:"head,omitempty"`
	ByStatus       map[string]int `json:"by_status"`
	Unlabelled     int            `json:"unlabelled"`
	OverRetryLimit int            `json:"over_retry_limit"`
	RetryLimit     int            `json:"retry_limit"`
}

func computeStats(items []queue.Item, retryLimit int) queueStats {
	stats := queueStats{
		Total:      len(items),
		ByStatus:   make(map[string]int),
		RetryLimit: retryLimit,
	}
	if len(items) > 0 {
		if label, ok := items[0].Label(); ok {
			stats.Head = label
		} else {
			stats.Head = "0"
		}
	}
	limit := float64(retryLimit)
	for _, item := range items {
		if _, ok := item.Label(); !ok {
			stats.Unlabelled++
		}
		if status, ok := item.Field(queue.FieldStatus).Str(); ok && status != "" {
			stats.ByStatus[strings.ToLower(status)]++
		}
		if retry, ok := item.Field(queue.FieldRetry).Float(); ok && retry > limit {
			stats.OverRetryLimit++
		}
	}
	return stats
}

// statusOrder lists conventional statuses first, then any others sorted.
func statusOrder(byStatus map[string]int) []string {
	order := make([]string, 0, len(byStatus))
	for _, status := range queue.AllStatuses() {
		order = append(order, string(status))
	}
	var extra []string
	for status := range byStatus {
		if !slices.Contains(order, status) {
			extra = append(extra, status)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}
