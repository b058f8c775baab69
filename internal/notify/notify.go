package notify

import "sync"

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Toast is a transient operator-facing notification.
type Toast struct {
	Level   Level
	Message string
}

// Notifier is how controllers surface outcomes to the operator. Every
// failure in the dashboard reduces to a notification; nothing is fatal.
type Notifier interface {
	Success(message string)
	Error(message string)
}

const maxPending = 8

// Flash queues toasts until the next page render drains them.
type Flash struct {
	mu      sync.Mutex
	pending []Toast
}

func NewFlash() *Flash {
	return &Flash{}
}

func (f *Flash) Success(message string) {
	f.push(Toast{Level: LevelSuccess, Message: message})
}

func (f *Flash) Error(message string) {
	f.push(Toast{Level: LevelError, Message: message})
}

func (f *Flash) push(t Toast) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) >= maxPending {
		f.pending = f.pending[1:]
	}
	f.pending = append(f.pending, t)
}

// Drain returns the queued toasts and clears the queue.
func (f *Flash) Drain() []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out
}
