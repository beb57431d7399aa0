package crawl

import (
	"container/heap"
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/lorecrawl"
)

// Frontier is an in-memory URL frontier: a priority queue of pending
// records with exact deduplication over normalized URLs and a visited
// set. Higher priority dequeues first; ties within a priority are served
// in admission order. Records whose NotBefore lies in the future are held
// back until they become eligible. Safe for concurrent use.
type Frontier struct {
	mu      sync.Mutex
	queue   recordHeap
	pending map[string]bool // normalized URL, queued or in flight
	visited map[string]bool
	seq     uint64
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		pending: make(map[string]bool),
		visited: make(map[string]bool),
	}
}

// RestoreFrontier rebuilds a Frontier from snapshot contents. Records are
// admitted in dump order, so a restored frontier makes the same dequeue
// decisions the original instance would have made.
func RestoreFrontier(records []lorecrawl.URLRecord, visited []string) *Frontier {
	f := NewFrontier()
	for _, u := range visited {
		f.visited[u] = true
	}
	for _, rec := range records {
		if f.pending[rec.URL] || f.visited[rec.URL] {
			continue
		}
		f.pending[rec.URL] = true
		f.push(rec)
	}
	return f
}

// Add enqueues a record. The record's URL must already be normalized.
// Returns false without enqueueing when the URL is pending, in flight, or
// visited, so repeated discoveries of the same URL are no-ops.
func (f *Frontier) Add(rec lorecrawl.URLRecord) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending[rec.URL] || f.visited[rec.URL] {
		return false
	}
	f.pending[rec.URL] = true
	f.push(rec)
	return true
}

// Next removes and returns the highest-priority record whose NotBefore is
// not after now. Records still waiting out a retry delay are skipped but
// retained with their original admission order. The returned record's URL
// stays in the pending set until MarkVisited or Requeue, so duplicate
// discoveries while it is in flight are still rejected.
func (f *Frontier) Next(now time.Time) (lorecrawl.URLRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var held []queuedRecord
	defer func() {
		for _, q := range held {
			heap.Push(&f.queue, q)
		}
	}()

	for f.queue.Len() > 0 {
		q := heap.Pop(&f.queue).(queuedRecord)
		if f.visited[q.rec.URL] {
			// Stale entry for a URL visited after it was queued.
			delete(f.pending, q.rec.URL)
			continue
		}
		if q.rec.NotBefore.After(now) {
			held = append(held, q)
			continue
		}
		return q.rec, true
	}
	return lorecrawl.URLRecord{}, false
}

// Requeue returns an in-flight record to the queue, typically with an
// updated NotBefore after a retryable failure. The record is assigned a
// fresh admission sequence, so among equal priorities it queues behind
// records already waiting.
func (f *Frontier) Requeue(rec lorecrawl.URLRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited[rec.URL] {
		return
	}
	f.pending[rec.URL] = true
	f.push(rec)
}

// MarkVisited moves a URL from pending to visited. A visited URL is never
// returned by Next and never accepted by Add again.
func (f *Frontier) MarkVisited(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.pending, url)
	f.visited[url] = true
}

// Visited reports whether the URL has been marked visited.
func (f *Frontier) Visited(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited[url]
}

// Len returns the number of queued records, eligible or not.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// VisitedCount returns the size of the visited set.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// NextEligibleAt returns the earliest NotBefore among queued records. The
// scheduler sleeps until then when nothing is currently eligible. ok is
// false when the queue is empty.
func (f *Frontier) NextEligibleAt() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Len() == 0 {
		return time.Time{}, false
	}
	earliest := f.queue[0].rec.NotBefore
	for _, q := range f.queue[1:] {
		if q.rec.NotBefore.Before(earliest) {
			earliest = q.rec.NotBefore
		}
	}
	return earliest, true
}

// Records returns the queued records in dequeue order, ignoring
// eligibility times. Feeding the result to RestoreFrontier reproduces the
// queue exactly.
func (f *Frontier) Records() []lorecrawl.URLRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	clone := make(recordHeap, len(f.queue))
	copy(clone, f.queue)

	records := make([]lorecrawl.URLRecord, 0, clone.Len())
	for clone.Len() > 0 {
		q := heap.Pop(&clone).(queuedRecord)
		records = append(records, q.rec)
	}
	return records
}

// VisitedURLs returns the visited set sorted for deterministic encoding.
func (f *Frontier) VisitedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	urls := make([]string, 0, len(f.visited))
	for u := range f.visited {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// push assumes f.mu is held.
func (f *Frontier) push(rec lorecrawl.URLRecord) {
	heap.Push(&f.queue, queuedRecord{rec: rec, seq: f.seq})
	f.seq++
}

// queuedRecord pairs a record with its admission sequence so equal
// priorities dequeue first-in-first-out.
type queuedRecord struct {
	rec lorecrawl.URLRecord
	seq uint64
}

// recordHeap implements heap.Interface ordered by descending priority,
// then ascending admission sequence.
type recordHeap []queuedRecord

func (h recordHeap) Len() int { return len(h) }

func (h recordHeap) Less(i, j int) bool {
	if h[i].rec.Priority != h[j].rec.Priority {
		return h[i].rec.Priority > h[j].rec.Priority
	}
	return h[i].seq < h[j].seq
}

func (h recordHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *recordHeap) Push(x any) {
	*h = append(*h, x.(queuedRecord))
}

func (h *recordHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
