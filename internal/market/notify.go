package market

import (
	"sync"
	"time"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticePending NoticeLevel = "pending"
)

// Notice is a one-shot user-visible message. Notices are fanned out to
// live subscribers only; nothing is queued or replayed.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

type Notifier struct {
	mu      sync.Mutex
	subs    map[int]chan Notice
	nextSub int
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Notice)}
}

func (n *Notifier) Publish(level NoticeLevel, message string) {
	notice := Notice{Level: level, Message: message, At: time.Now().UTC()}
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, ch := range n.subs {
		select {
		case ch <- notice:
		default:
			close(ch)
			delete(n.subs, id)
		}
	}
}

func (n *Notifier) Subscribe() (<-chan Notice, func()) {
	n.mu.Lock()
	id := n.nextSub
	n.nextSub++
	ch := make(chan Notice, 32)
	n.subs[id] = ch
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			close(sub)
			delete(n.subs, id)
		}
	}
	return ch, cancel
}
