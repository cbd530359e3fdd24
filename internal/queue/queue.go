package queue

import (
	"strconv"
	"strings"
)

// Queue holds work items in arrival order; the head is the oldest item.
//
// A Queue has a single owner. It does no locking, so callers sharing one
// across goroutines must serialize access themselves.
type Queue struct {
	items []Item
}

// New returns a queue seeded with items. The queue takes ownership of the
// slice; callers must not modify it afterwards. A nil slice yields an empty
// queue.
func New(items []Item) *Queue {
	q := &Queue{}
	q.SetItems(items)
	return q
}

// SetItems replaces the queue contents with items, taking ownership of the
// slice without copying it.
func (q *Queue) SetItems(items []Item) {
	if items == nil {
		items = []Item{}
	}
	q.items = items
}

// Items returns the queue's live backing slice, head first. The slice is
// borrowed: it is only valid until the next mutating call and writes to it
// change the queue. Use Snapshot for an independent copy.
func (q *Queue) Items() []Item {
	return q.items
}

// Snapshot returns a copy of the item sequence, head first. Items themselves
// are shared maps.
func (q *Queue) Snapshot() []Item {
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

// AddItem appends item at the tail.
func (q *Queue) AddItem(item Item) {
	q.items = append(q.items, item)
}

// Next removes and returns the oldest item. The second result is false when
// the queue is empty.
func (q *Queue) Next() (Item, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	item := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return item, true
}

// Peek returns the oldest item without removing it.
func (q *Queue) Peek() (Item, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// HasItem reports whether at least one item remains.
func (q *Queue) HasItem() bool {
	return len(q.items) > 0
}

// Len returns the number of remaining items.
func (q *Queue) Len() int {
	return len(q.items)
}

// FindAndRemove deletes every item matched by f, keeping survivors in order.
//
// Items are first marked clause by clause (see Filter), then removed walking
// from the tail to the head. A nil or empty filter removes nothing.
func (q *Queue) FindAndRemove(f *Filter) {
	if f.Len() == 0 || len(q.items) == 0 {
		return
	}

	marks := make([]bool, len(q.items))
	for i, item := range q.items {
		marks[i] = f.mark(item, marks[i])
	}

	for i := len(q.items) - 1; i >= 0; i-- {
		if !marks[i] {
			continue
		}
		copy(q.items[i:], q.items[i+1:])
		q.items[len(q.items)-1] = nil
		q.items = q.items[:len(q.items)-1]
	}
}

// String renders the queue head first, e.g. "<- [1]  [2] <-", or " <empty> "
// when no items remain. Items without a truthy _id or id are labelled with a
// counter that only advances for such items.
func (q *Queue) String() string {
	if len(q.items) == 0 {
		return " <empty> "
	}
	var b strings.Builder
	b.WriteString("<-")
	fallback := 0
	for _, item := range q.items {
		label, ok := item.Label()
		if !ok {
			label = strconv.Itoa(fallback)
			fallback++
		}
		b.WriteString(" [")
		b.WriteString(label)
		b.WriteString("] ")
	}
	b.WriteString("<-")
	return b.String()
}
