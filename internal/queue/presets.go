package queue

import "strings"

// Status is the conventional lifecycle value stored in an item's status field.
// The queue never interprets it; presets and the CLI do.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Conventional field names used by job producers.
const (
	FieldStatus = "status"
	FieldRetry  = "retry"
	FieldTitle  = "title"
	FieldPrio   = "prio"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

// AllStatuses returns the ordered list of conventional statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	for _, status := range allStatuses {
		if status == normalized {
			return normalized, true
		}
	}
	return normalized, false
}

// StatusFilter matches items whose status field equals status.
func StatusFilter(status Status) *Filter {
	return NewFilter().Eq(FieldStatus, Text(string(status)))
}

// RetryLimitFilter matches items whose retry counter exceeds limit.
func RetryLimitFilter(limit int) *Filter {
	return NewFilter().Gt(FieldRetry, Int(int64(limit)))
}
