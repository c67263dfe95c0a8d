package download

import "sync"

// watchState is the shared core of a watch channel: a cell holding the
// most recent Event plus a one-slot change signal. Sends overwrite the
// cell and coalesce into at most one pending signal, so a slow reader
// always observes the latest value rather than a backlog.
type watchState struct {
	mu     sync.Mutex
	latest Event

	changed  chan struct{} // cap 1, non-blocking send
	sendDone chan struct{} // closed when the sender is finished
	recvDone chan struct{} // closed when the receiver gives up

	sendOnce sync.Once
	recvOnce sync.Once
}

// Sender is the transfer side of a watch channel.
type Sender struct {
	s *watchState
}

// Receiver is the observer side of a watch channel. Closing it is the
// cancellation signal: the transfer polls Cancelled and aborts.
type Receiver struct {
	s *watchState
}

// NewWatch creates a watch channel holding seed. The seed counts as a
// pending change, so the first Wait returns immediately.
func NewWatch(seed Event) (*Sender, *Receiver) {
	st := &watchState{
		latest:   seed,
		changed:  make(chan struct{}, 1),
		sendDone: make(chan struct{}),
		recvDone: make(chan struct{}),
	}
	st.changed <- struct{}{}
	return &Sender{s: st}, &Receiver{s: st}
}

// Send replaces the latest value. It never blocks; an unread previous
// value is simply overwritten.
func (tx *Sender) Send(e Event) {
	tx.s.mu.Lock()
	tx.s.latest = e
	tx.s.mu.Unlock()

	select {
	case tx.s.changed <- struct{}{}:
	default:
	}
}

// Close marks the sender finished. A receiver blocked in Wait drains any
// pending value first, then sees false.
func (tx *Sender) Close() {
	tx.s.sendOnce.Do(func() { close(tx.s.sendDone) })
}

// Cancelled returns a channel that is closed once the receiver has been
// closed.
func (tx *Sender) Cancelled() <-chan struct{} {
	return tx.s.recvDone
}

// Wait blocks until a new value is available and returns true. It returns
// false when no value will ever arrive again: the sender closed without
// leaving an unread value, or this receiver itself was closed.
func (rx *Receiver) Wait() bool {
	select {
	case <-rx.s.changed:
		return true
	case <-rx.s.recvDone:
		return false
	case <-rx.s.sendDone:
		select {
		case <-rx.s.changed:
			return true
		default:
			return false
		}
	}
}

// Latest returns the most recently sent value.
func (rx *Receiver) Latest() Event {
	rx.s.mu.Lock()
	defer rx.s.mu.Unlock()
	return rx.s.latest
}

// Close abandons the channel and asks the sender to abort.
func (rx *Receiver) Close() {
	rx.s.recvOnce.Do(func() { close(rx.s.recvDone) })
}
