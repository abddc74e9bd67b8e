package rpc

import (
	"sync"

	"github.com/vismaygawai/marketplace/internal/market"
)

const noticeLogCap = 64

// noticeEntry is a published notice with its position in the feed, so a
// poller can resume from the last sequence it saw.
type noticeEntry struct {
	Seq uint64 `json:"seq"`
	market.Notice
}

// noticeLog buffers the core's one-shot notices for polling clients.
// The buffer is a bounded window; a client that falls more than
// noticeLogCap notices behind silently misses the oldest ones.
type noticeLog struct {
	mu      sync.Mutex
	entries []noticeEntry
	nextSeq uint64
}

func newNoticeLog() *noticeLog {
	return &noticeLog{nextSeq: 1}
}

func (l *noticeLog) add(n market.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, noticeEntry{Seq: l.nextSeq, Notice: n})
	l.nextSeq++
	if len(l.entries) > noticeLogCap {
		l.entries = l.entries[len(l.entries)-noticeLogCap:]
	}
}

func (l *noticeLog) since(after uint64) []noticeEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]noticeEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Seq > after {
			out = append(out, e)
		}
	}
	return out
}

// collect drains the subscription into the log until the channel closes.
func (l *noticeLog) collect(ch <-chan market.Notice) {
	for n := range ch {
		l.add(n)
	}
}
