package notify

import "sync"

// Sent is one notification captured by a Recorder.
type Sent struct {
	Template   string
	OrderID    int64
	Recipients []string
}

// Recorder is a Notifier that only remembers what it was asked to send.
// Used by tests instead of real channels.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	err  error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes every subsequent Notify return err.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Notify records the notification.
func (r *Recorder) Notify(template string, orderID int64, recipients []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{Template: template, OrderID: orderID, Recipients: recipients})
	return r.err
}

// Sent returns a copy of everything recorded so far.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}
