package session

import (
	"sync"
	"time"

	"go-restaurant-ordering/models"
)

// DefaultNotificationDuration is how long a banner stays up on its own.
const DefaultNotificationDuration = 4 * time.Second

// scheduleFunc runs f after d and returns a function that cancels it.
type scheduleFunc func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Notifier is a single-slot banner. A new message replaces the current one
// outright; each message hides itself after its own duration unless a newer
// message took the slot first.
type Notifier struct {
	mu       sync.Mutex
	current  models.Notification
	gen      uint64
	stop     func() bool
	schedule scheduleFunc
	subs     map[chan models.Notification]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{
		current:  models.Notification{Severity: models.SeveritySuccess},
		schedule: afterFunc,
		subs:     make(map[chan models.Notification]struct{}),
	}
}

// Show replaces the banner. A non-positive duration means the default.
func (n *Notifier) Show(message string, severity models.Severity, d time.Duration) {
	if d <= 0 {
		d = DefaultNotificationDuration
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stop != nil {
		n.stop()
	}
	n.gen++
	gen := n.gen
	n.current = models.Notification{Message: message, Severity: severity, Visible: true}
	n.stop = n.schedule(d, func() { n.expire(gen) })
	n.publishLocked()
}

// Dismiss hides the banner now.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stop != nil {
		n.stop()
		n.stop = nil
	}
	if !n.current.Visible {
		return
	}
	n.current.Visible = false
	n.publishLocked()
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if gen != n.gen || !n.current.Visible {
		return
	}
	n.current.Visible = false
	n.stop = nil
	n.publishLocked()
}

func (n *Notifier) Current() models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Subscribe returns a channel that receives every banner change. Slow
// readers only ever miss intermediate states, never the latest one.
func (n *Notifier) Subscribe() (<-chan models.Notification, func()) {
	ch := make(chan models.Notification, 1)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, ch)
			n.mu.Unlock()
		})
	}
}

func (n *Notifier) publishLocked() {
	for ch := range n.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- n.current:
		default:
		}
	}
}

// Close cancels any pending hide timer.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stop != nil {
		n.stop()
		n.stop = nil
	}
}
