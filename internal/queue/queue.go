package queue

import (
	"sync"

	"github.com/hr95savage/screenshotter/internal/types"
)

// Item is a URL paired with its position in the full sitemap list.
type Item struct {
	Index int
	URL   string
}

// Queue is the ordered, thread-safe work list of a single run.
// Duplicates are kept; every entry is handed out exactly once, in order.
type Queue struct {
	items []Item
	next  int
	mu    sync.Mutex
}

// Window applies start-from/max-pages slicing to entries. Entries before
// startFrom are dropped, then at most maxPages are kept; zero or negative
// values mean no limit.
func Window(entries []types.SitemapEntry, startFrom, maxPages int) []Item {
	if startFrom < 0 {
		startFrom = 0
	}
	if startFrom >= len(entries) {
		return nil
	}

	end := len(entries)
	if maxPages > 0 && maxPages < end-startFrom {
		end = startFrom + maxPages
	}

	items := make([]Item, 0, end-startFrom)
	for i := startFrom; i < end; i++ {
		items = append(items, Item{Index: i, URL: string(entries[i])})
	}
	return items
}

// New creates a Queue over items.
func New(items []Item) *Queue {
	return &Queue{items: items}
}

// Next returns the next item to process
func (q *Queue) Next() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.next >= len(q.items) {
		return Item{}, false
	}
	item := q.items[q.next]
	q.next++
	return item, true
}

// Len returns the total number of items, consumed or not.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Remaining returns how many items have not been handed out yet.
func (q *Queue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.next
}
