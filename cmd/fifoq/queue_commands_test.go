package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"fifoq/internal/config"
	"fifoq/internal/itemfile"
	"fifoq/internal/queue"
	"fifoq/internal/testsupport"
)

func TestShowAndAdd(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"show"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if out != " <empty> \n" {
		t.Fatalf("unexpected empty rendering: %q", out)
	}

	out, _, err = runCLI(t, []string{"add", "--field", "id=1", "--field", "title=first job"}, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Queued [1] (1 items)")

	if _, _, err := runCLI(t, []string{"add", "--id", "b", "--field", "retry=3"}, env.configPath); err != nil {
		t.Fatalf("add second: %v", err)
	}

	out, _, err = runCLI(t, []string{"show"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if out != "<- [1]  [b] <-\n" {
		t.Fatalf("unexpected queue rendering: %q", out)
	}

	items := testsupport.ReadItems(t, env.itemsPath)
	if got, _ := items[1].Field("retry").Float(); got != 3 {
		t.Fatalf("expected numeric retry field, got %v", items[1].Field("retry"))
	}
}

func TestAddGeneratesID(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "add", "--field", "status=pending", "--field", "urgent=true"}, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode add output: %v\n%s", err, out)
	}
	id, _ := payload["_id"].(string)
	if len(id) != 36 {
		t.Fatalf("expected generated uuid _id, got %v", payload["_id"])
	}
	if payload["urgent"] != true || payload["status"] != "pending" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestAddRejectsMalformedField(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"add", "--field", "novalue"}, env.configPath); err == nil {
		t.Fatal("expected error for field without '='")
	}
}

func TestNextDequeuesInOrder(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedSampleJobs(t)

	out, _, err := runCLI(t, []string{"next", "--count", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	requireContains(t, out, `[1] id=1 prio=100 retry=0 title="do something fast"`)
	requireContains(t, out, "[2] id=2")
	if strings.Index(out, "[1]") > strings.Index(out, "[2]") {
		t.Fatalf("expected head first, got %q", out)
	}

	out, _, err = runCLI(t, []string{"show"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "<- [3]  [4]  [5] <-")

	if _, _, err := runCLI(t, []string{"next", "--count", "10"}, env.configPath); err != nil {
		t.Fatalf("drain: %v", err)
	}
	out, _, err = runCLI(t, []string{"next"}, env.configPath)
	if err != nil {
		t.Fatalf("next on empty: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestPruneFilter(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedSampleJobs(t)

	out, _, err := runCLI(t, []string{"prune", "--filter", `{"retry":{"$gt":10}}`}, env.configPath)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	requireContains(t, out, "Removed 2 items (3 remaining)")
	requireContains(t, out, "[4] id=4")
	requireContains(t, out, "[5] id=5")

	out, _, err = runCLI(t, []string{"show"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "<- [1]  [2]  [3] <-")
}

func TestPruneMultiClauseFilter(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedSampleJobs(t)

	_, _, err := runCLI(t, []string{"prune", "--filter", `{"retry":{"$gt":10},"prio":{"$lt":1000}}`}, env.configPath)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	out, _, err := runCLI(t, []string{"show"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "<- [3]  [5] <-")
}

func TestPruneDryRunLeavesFile(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedSampleJobs(t)

	out, _, err := runCLI(t, []string{"prune", "--dry-run", "--retry-limit=50"}, env.configPath)
	if err != nil {
		t.Fatalf("prune dry run: %v", err)
	}
	requireContains(t, out, "Would remove 2 items (3 remaining)")
	if got := len(testsupport.ReadItems(t, env.itemsPath)); got != 5 {
		t.Fatalf("dry run should not save, got %d items", got)
	}
}

func TestPruneRetryLimitDefaultsToConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedSampleJobs(t)

	out, _, err := runCLI(t, []string{"--json", "prune", "--retry-limit"}, env.configPath)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	var result struct {
		Filters   []string         `json:"filters"`
		Removed   []map[string]any `json:"removed"`
		Remaining int              `json:"remaining"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode prune output: %v\n%s", err, out)
	}
	if len(result.Filters) != 1 || result.Filters[0] != "retry-limit:10" {
		t.Fatalf("unexpected filters: %v", result.Filters)
	}
	if len(result.Removed) != 2 || result.Remaining != 3 {
		t.Fatalf("unexpected prune result: %+v", result)
	}
}

func TestPruneRejectsNegativeRetryLimit(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedSampleJobs(t)

	_, _, err := runCLI(t, []string{"prune", "--retry-limit=-1"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--retry-limit must be >= 0") {
		t.Fatalf("expected negative retry limit error, got %v", err)
	}
	if got := len(testsupport.ReadItems(t, env.itemsPath)); got != 5 {
		t.Fatalf("rejected prune should not touch the file, got %d items", got)
	}
}

func TestPruneRulesAndStatuses(t *testing.T) {
	env := setupCLITestEnv(t)
	jobs := testsupport.SampleJobs()
	jobs[0][queue.FieldStatus] = queue.Text(string(queue.StatusCompleted))
	jobs[1][queue.FieldStatus] = queue.Text(string(queue.StatusFailed))
	testsupport.WriteItems(t, env.itemsPath, jobs)

	out, _, err := runCLI(t, []string{"prune", "--rule", "exhausted"}, env.configPath)
	if err != nil {
		t.Fatalf("prune rule: %v", err)
	}
	requireContains(t, out, "Removed 1 item (4 remaining)")

	_, _, err = runCLI(t, []string{"prune", "--rule", "missing"}, env.configPath)
	if !errors.Is(err, config.ErrUnknownRule) {
		t.Fatalf("expected ErrUnknownRule, got %v", err)
	}

	out, _, err = runCLI(t, []string{"prune", "--completed", "--failed"}, env.configPath)
	if err != nil {
		t.Fatalf("prune statuses: %v", err)
	}
	requireContains(t, out, "Removed 2 items (2 remaining)")

	out, _, err = runCLI(t, []string{"show"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "<- [3]  [4] <-")
}

func TestPruneRequiresSelector(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"prune"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "nothing to prune") {
		t.Fatalf("expected selector error, got %v", err)
	}
}

func TestListFormats(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedSampleJobs(t)

	out, _, err := runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "do something fast")
	requireContains(t, out, "5 of 5 items")

	out, _, err = runCLI(t, []string{"list", "--limit", "2", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list json: %v", err)
	}
	var items []map[string]any
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode list output: %v\n%s", err, out)
	}
	if len(items) != 2 || items[0]["id"] != float64(1) {
		t.Fatalf("unexpected list payload: %v", items)
	}
}

func TestListTextFormatFromConfig(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithOutputFormat("text"))
	env.seedSampleJobs(t)

	out, _, err := runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 || !strings.HasPrefix(lines[4], "[5] ") {
		t.Fatalf("unexpected text listing: %q", out)
	}
}

func TestStatsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedSampleJobs(t)

	out, _, err := runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "== Queue ==")
	requireContains(t, out, "[INFO] 5")
	requireContains(t, out, "[WARN] 2 over limit 10")

	out, _, err = runCLI(t, []string{"--json", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats json: %v", err)
	}
	var stats queueStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 5 || stats.Head != "1" || stats.OverRetryLimit != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestItemsFlagSelectsFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "jobs.toml")
	testsupport.WriteItems(t, target, testsupport.SampleJobs())

	out, _, err := runCLI(t, []string{"--items", target, "show"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "<- [1]  [2]  [3]  [4]  [5] <-")

	_, _, err = runCLI(t, []string{"--items", filepath.Join(env.baseDir, "jobs.csv"), "show"}, env.configPath)
	if !errors.Is(err, itemfile.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
