package client

import (
	"sync"
	"time"
)

// HighSeverityToastDuration is how long a high-severity toast stays up before
// auto-dismissing. Critical toasts never auto-dismiss.
const HighSeverityToastDuration = 8 * time.Second

type Toast struct {
	NotificationID string
	Severity       string
	Message        string
	Persistent     bool
	AutoDismiss    time.Duration // zero means no timer
}

// ToastCenter tracks the interruptive toasts currently on screen and owns
// their auto-dismiss timers. Timers are cancelled on manual dismissal and on
// Stop, so an ended session leaves nothing running.
type ToastCenter struct {
	mu      sync.Mutex
	active  map[string]Toast
	timers  map[string]*time.Timer
	onShow  func(Toast)
	stopped bool
}

func NewToastCenter(onShow func(Toast)) *ToastCenter {
	return &ToastCenter{
		active: make(map[string]Toast),
		timers: make(map[string]*time.Timer),
		onShow: onShow,
	}
}

func (t *ToastCenter) Raise(toast Toast) {
	t.mu.Lock()

	if t.stopped {
		t.mu.Unlock()
		return
	}

	t.active[toast.NotificationID] = toast

	if !toast.Persistent && toast.AutoDismiss > 0 {
		id := toast.NotificationID
		t.timers[id] = time.AfterFunc(toast.AutoDismiss, func() {
			t.Dismiss(id)
		})
	}

	t.mu.Unlock()

	if t.onShow != nil {
		t.onShow(toast)
	}
}

func (t *ToastCenter) Dismiss(notificationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.active, notificationID)

	if timer, exists := t.timers[notificationID]; exists {
		timer.Stop()
		delete(t.timers, notificationID)
	}
}

// Active returns the toasts currently showing, in no particular order.
func (t *ToastCenter) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	toasts := make([]Toast, 0, len(t.active))
	for _, toast := range t.active {
		toasts = append(toasts, toast)
	}

	return toasts
}

// Stop cancels all pending timers and rejects further toasts.
func (t *ToastCenter) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true

	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}

	t.active = make(map[string]Toast)
}
