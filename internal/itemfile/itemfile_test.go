package itemfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fifoq/internal/itemfile"
	"fifoq/internal/logging"
	"fifoq/internal/queue"
	"fifoq/internal/testsupport"
)

func labels(t *testing.T, items []queue.Item) []string {
	t.Helper()
	out := make([]string, 0, len(items))
	for _, item := range items {
		label, ok := item.Label()
		if !ok {
			t.Fatalf("item without label: %v", item)
		}
		out = append(out, label)
	}
	return out
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path string
		want itemfile.Format
	}{
		{"items.json", itemfile.FormatJSON},
		{"/x/Items.JSON", itemfile.FormatJSON},
		{"jobs.toml", itemfile.FormatTOML},
		{"jobs.db", itemfile.FormatSQLite},
		{"jobs.sqlite", itemfile.FormatSQLite},
		{"jobs.sqlite3", itemfile.FormatSQLite},
	}
	for _, tc := range cases {
		got, err := itemfile.DetectFormat(tc.path)
		if err != nil {
			t.Fatalf("DetectFormat(%q): %v", tc.path, err)
		}
		if got != tc.want {
			t.Fatalf("DetectFormat(%q) = %s, want %s", tc.path, got, tc.want)
		}
	}

	if _, err := itemfile.DetectFormat("jobs.yaml"); !errors.Is(err, itemfile.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRoundTripAllFormats(t *testing.T) {
	for _, name := range []string{"items.json", "items.toml", "items.db"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			jobs := testsupport.SampleJobs()
			jobs = append(jobs, queue.Item{
				queue.FieldPrimaryID: queue.Text("x"),
				queue.FieldStatus:    queue.Text("failed"),
				"ratio":              queue.Number(0.5),
				"urgent":             queue.Bool(true),
			})

			testsupport.WriteItems(t, path, jobs)
			got := testsupport.ReadItems(t, path)

			want := []string{"1", "2", "3", "4", "5", "x"}
			if strings.Join(labels(t, got), ",") != strings.Join(want, ",") {
				t.Fatalf("unexpected order: %v", labels(t, got))
			}
			for idx := range jobs {
				for key, value := range jobs[idx] {
					if !got[idx].Field(key).Equal(value) {
						t.Fatalf("item %d field %q: got %v want %v", idx, key, got[idx].Field(key), value)
					}
				}
				if len(got[idx]) != len(jobs[idx]) {
					t.Fatalf("item %d field count: got %d want %d", idx, len(got[idx]), len(jobs[idx]))
				}
			}
		})
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	for _, name := range []string{"missing.json", "missing.toml", "missing.sqlite"} {
		path := filepath.Join(t.TempDir(), name)
		items, err := itemfile.Load(context.Background(), path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if len(items) != 0 {
			t.Fatalf("expected no items, got %d", len(items))
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("Load should not create %s", name)
		}
	}
}

func TestSaveEmptyQueue(t *testing.T) {
	for _, name := range []string{"empty.json", "empty.toml", "empty.db"} {
		path := filepath.Join(t.TempDir(), name)
		testsupport.WriteItems(t, path, nil)
		if items := testsupport.ReadItems(t, path); len(items) != 0 {
			t.Fatalf("%s: expected empty queue, got %d items", name, len(items))
		}
	}
}

func TestJSONPreservesNilItem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	testsupport.WriteItems(t, path, []queue.Item{nil, {queue.FieldID: queue.Int(1)}})

	got := testsupport.ReadItems(t, path)
	if len(got) != 2 || got[0] != nil {
		t.Fatalf("expected nil head item, got %v", got)
	}
}

func TestTOMLDocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.toml")
	doc := "[[items]]\nid = 7\ntitle = 'rebuild index'\nretry = 3\n\n[[items]]\n_id = 'b'\nstatus = 'completed'\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write toml: %v", err)
	}

	items := testsupport.ReadItems(t, path)
	if got := labels(t, items); strings.Join(got, ",") != "7,b" {
		t.Fatalf("unexpected labels: %v", got)
	}
	if !items[0].Field(queue.FieldRetry).Equal(queue.Int(3)) {
		t.Fatalf("expected retry 3, got %v", items[0].Field(queue.FieldRetry))
	}

	testsupport.WriteItems(t, path, items)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read toml: %v", err)
	}
	if !strings.Contains(string(data), "[[items]]") || !strings.Contains(string(data), "retry = 3") {
		t.Fatalf("expected integer fields in [[items]] tables, got:\n%s", data)
	}
}

func TestTOMLRejectsNestedTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.toml")
	doc := "[[items]]\nid = 1\n[items.meta]\nowner = 'ops'\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write toml: %v", err)
	}
	if _, err := itemfile.Load(context.Background(), path); err == nil {
		t.Fatal("expected error for nested table field")
	}
}

func TestStoreUpdateAppliesFilter(t *testing.T) {
	for _, name := range []string{"items.json", "items.toml", "items.sqlite3"} {
		t.Run(name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithItemsFile(name))
			testsupport.WriteItems(t, cfg.Queue.ItemsPath, testsupport.SampleJobs())

			store, err := itemfile.OpenConfig(cfg, logging.NewNop())
			if err != nil {
				t.Fatalf("OpenConfig: %v", err)
			}
			ctx := context.Background()
			err = store.Update(ctx, func(q *queue.Queue) error {
				q.FindAndRemove(queue.NewFilter().Gt(queue.FieldRetry, queue.Int(10)))
				return nil
			})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}

			q, err := store.Read(ctx)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if got := strings.Join(labels(t, q.Items()), ","); got != "1,2,3" {
				t.Fatalf("unexpected survivors: %s", got)
			}
		})
	}
}

func TestStoreUpdateErrorSkipsSave(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteItems(t, cfg.Queue.ItemsPath, testsupport.SampleJobs())

	store, err := itemfile.OpenConfig(cfg, nil)
	if err != nil {
		t.Fatalf("OpenConfig: %v", err)
	}
	boom := errors.New("boom")
	err = store.Update(context.Background(), func(q *queue.Queue) error {
		q.Next()
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if got := len(testsupport.ReadItems(t, cfg.Queue.ItemsPath)); got != 5 {
		t.Fatalf("expected file untouched, got %d items", got)
	}
}

func TestLockExclusiveTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	ctx := context.Background()

	held, err := itemfile.Lock(ctx, path, time.Second, true)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	defer held.Unlock()

	if _, err := itemfile.Lock(ctx, path, 50*time.Millisecond, true); !errors.Is(err, itemfile.ErrLocked) {
		t.Fatalf("expected ErrLocked for exclusive waiter, got %v", err)
	}
	if _, err := itemfile.Lock(ctx, path, 0, false); !errors.Is(err, itemfile.ErrLocked) {
		t.Fatalf("expected ErrLocked for shared waiter, got %v", err)
	}

	if err := held.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	again, err := itemfile.Lock(ctx, path, 0, true)
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	_ = again.Unlock()
}

func TestLockSharedAllowsReaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	ctx := context.Background()

	first, err := itemfile.Lock(ctx, path, 0, false)
	if err != nil {
		t.Fatalf("first shared lock: %v", err)
	}
	defer first.Unlock()

	second, err := itemfile.Lock(ctx, path, 0, false)
	if err != nil {
		t.Fatalf("second shared lock: %v", err)
	}
	defer second.Unlock()

	if _, err := os.Stat(itemfile.LockPath(path)); err != nil {
		t.Fatalf("expected lock file: %v", err)
	}
}
