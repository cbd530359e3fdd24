package testsupport

import (
	"context"
	"testing"

	"fifoq/internal/itemfile"
	"fifoq/internal/queue"
)

// SampleJobs returns five retryable jobs with ids 1 through 5. Job 1 has a
// zero retry count; the others have 2, 1, 99 and 999 retries with priorities
// 23, 1010, 87 and 9892.
func SampleJobs() []queue.Item {
	job := func(id int, title string, retry, prio int) queue.Item {
		return queue.Item{
			queue.FieldID:    queue.Int(int64(id)),
			queue.FieldTitle: queue.Text(title),
			queue.FieldRetry: queue.Int(int64(retry)),
			queue.FieldPrio:  queue.Int(int64(prio)),
		}
	}
	return []queue.Item{
		job(1, "do something fast", 0, 100),
		job(2, "i fail sometimes", 2, 23),
		job(3, "i can also fail", 1, 1010),
		job(4, "i fail often", 99, 87),
		job(5, "i fail therefore i am", 999, 9892),
	}
}

// NewSampleQueue returns a queue holding SampleJobs.
func NewSampleQueue() *queue.Queue {
	return queue.New(SampleJobs())
}

// WriteItems saves items to path using the format implied by its extension.
func WriteItems(t testing.TB, path string, items []queue.Item) {
	t.Helper()

	if err := itemfile.Save(context.Background(), path, items); err != nil {
		t.Fatalf("itemfile.Save %s: %v", path, err)
	}
}

// ReadItems loads items from path, failing the test on error.
func ReadItems(t testing.TB, path string) []queue.Item {
	t.Helper()

	items, err := itemfile.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("itemfile.Load %s: %v", path, err)
	}
	return items
}
