package connectivity

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/notify"
)

// OfflineMessage is shown once each time the platform reports going offline.
const OfflineMessage = "You're offline. Some features may be limited."

// Status reports the current connectivity state.
type Status interface {
	Offline() bool
}

// Observer tracks the platform's online/offline signal. The signal is
// trusted as-is: there is no probing and no debouncing.
type Observer struct {
	mu       sync.RWMutex
	offline  bool
	subs     map[int]func(offline bool)
	nextSub  int
	notifier notify.Notifier
	logger   logrus.FieldLogger
}

// NewObserver creates an observer seeded with the platform's current signal
func NewObserver(online bool, notifier notify.Notifier, logger logrus.FieldLogger) *Observer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Observer{
		offline:  !online,
		subs:     make(map[int]func(bool)),
		notifier: notifier,
		logger:   logger,
	}
}

// Offline reports whether the platform last signalled offline.
func (o *Observer) Offline() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.offline
}

// HandleOffline applies a platform "offline" event.
func (o *Observer) HandleOffline() {
	o.set(true)
}

// HandleOnline applies a platform "online" event.
func (o *Observer) HandleOnline() {
	o.set(false)
}

// Set applies a platform event expressed as a boolean.
func (o *Observer) Set(online bool) {
	o.set(!online)
}

func (o *Observer) set(offline bool) {
	o.mu.Lock()
	if o.offline == offline {
		o.mu.Unlock()
		return
	}
	o.offline = offline
	subs := make([]func(bool), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	o.logger.WithField("offline", offline).Info("Connectivity changed")

	// One notification per transition, however many subscribers exist.
	if offline && o.notifier != nil {
		o.notifier.Notify(notify.LevelWarning, OfflineMessage)
	}
	for _, fn := range subs {
		fn(offline)
	}
}

// Subscribe registers fn to be called on every transition. The returned
// function removes the subscription.
func (o *Observer) Subscribe(fn func(offline bool)) func() {
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}
