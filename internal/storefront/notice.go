package storefront

import (
	"sync"
	"time"
)

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "success"
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	}
	return "info"
}

type Notice struct {
	ID   uint64
	Kind NoticeKind
	Text string
	At   time.Time
}

// NoticeBoard holds transient messages for the shell. Notices posted with a
// positive ttl disappear on their own.
type NoticeBoard struct {
	mu     sync.Mutex
	nextID uint64
	active []Notice
	seen   uint64
	timers map[uint64]*time.Timer
}

func NewNoticeBoard() *NoticeBoard {
	return &NoticeBoard{timers: make(map[uint64]*time.Timer)}
}

func (b *NoticeBoard) Post(kind NoticeKind, text string, ttl time.Duration) Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	n := Notice{ID: b.nextID, Kind: kind, Text: text, At: time.Now()}
	b.active = append(b.active, n)
	if ttl > 0 {
		b.timers[n.ID] = time.AfterFunc(ttl, func() { b.Dismiss(n.ID) })
	}
	return n
}

func (b *NoticeBoard) Dismiss(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.timers[id]; ok {
		t.Stop()
		delete(b.timers, id)
	}
	for i, n := range b.active {
		if n.ID == id {
			b.active = append(b.active[:i], b.active[i+1:]...)
			return
		}
	}
}

// Active returns the notices that have not been dismissed.
func (b *NoticeBoard) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Notice(nil), b.active...)
}

// Unseen returns active notices posted since the previous call.
func (b *NoticeBoard) Unseen() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Notice
	for _, n := range b.active {
		if n.ID > b.seen {
			out = append(out, n)
		}
	}
	b.seen = b.nextID
	return out
}

// Last returns the most recent active notice.
func (b *NoticeBoard) Last() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.active) == 0 {
		return Notice{}, false
	}
	return b.active[len(b.active)-1], true
}

func (b *NoticeBoard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}
	b.active = nil
	b.seen = b.nextID
}
