package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Level of a user-visible notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a non-blocking message shown to the user.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier surfaces messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

const defaultHistory = 50

// Feed keeps recent notifications and fans them out to subscribers.
type Feed struct {
	mu      sync.RWMutex
	history []Notification
	limit   int
	subs    map[int]chan Notification
	nextSub int
	logger  logrus.FieldLogger
}

// NewFeed creates a feed keeping at most limit notifications
func NewFeed(limit int, logger logrus.FieldLogger) *Feed {
	if limit <= 0 {
		limit = defaultHistory
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Feed{
		limit:  limit,
		subs:   make(map[int]chan Notification),
		logger: logger,
	}
}

// Notify records the message and delivers it to every subscriber.
// Slow subscribers miss messages rather than block the caller.
func (f *Feed) Notify(level Level, message string) {
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}

	entry := f.logger.WithFields(logrus.Fields{"notification_level": string(level), "notification_id": n.ID})
	switch level {
	case LevelError:
		entry.Error(message)
	case LevelWarning:
		entry.Warn(message)
	default:
		entry.Info(message)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.history = append(f.history, n)
	if len(f.history) > f.limit {
		f.history = f.history[len(f.history)-f.limit:]
	}
	for _, ch := range f.subs {
		select {
		case ch <- n:
		default:
			f.logger.WithField("notification_id", n.ID).Debug("Subscriber buffer full, dropping notification")
		}
	}
}

// Recent returns the stored notifications, oldest first.
func (f *Feed) Recent() []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Notification, len(f.history))
	copy(out, f.history)
	return out
}

// Subscribe returns a channel of new notifications and a function that
// closes it.
func (f *Feed) Subscribe(buffer int) (<-chan Notification, func()) {
	ch := make(chan Notification, buffer)

	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(ch)
		})
	}
}
