package download

import (
	"testing"
	"time"
)

func TestWatch_SeedIsPending(t *testing.T) {
	_, rx := NewWatch(Starting())

	// The seed counts as an unread change.
	if !rx.Wait() {
		t.Fatal("Wait should return true for the seed value")
	}
	if got := rx.Latest(); got.Kind != KindStarting {
		t.Errorf("Latest kind = %v, want starting", got.Kind)
	}
}

func TestWatch_SendsCoalesce(t *testing.T) {
	tx, rx := NewWatch(Starting())
	if !rx.Wait() {
		t.Fatal("seed not delivered")
	}

	tx.Send(Progress(10, 100))
	tx.Send(Progress(20, 100))
	tx.Send(Progress(30, 100))

	if !rx.Wait() {
		t.Fatal("Wait should return true after sends")
	}
	got := rx.Latest()
	if got.Kind != KindProgress || got.Downloaded != 30 {
		t.Errorf("Latest = %+v, want the last progress report", got)
	}

	// The three sends collapsed into one pending change, so with the
	// sender closed there is nothing further to read.
	tx.Close()
	if rx.Wait() {
		t.Error("Wait should return false, intermediate values must not queue up")
	}
}

func TestWatch_SenderCloseDrainsFinalValue(t *testing.T) {
	tx, rx := NewWatch(Starting())
	if !rx.Wait() {
		t.Fatal("seed not delivered")
	}

	tx.Send(Finished())
	tx.Close()

	if !rx.Wait() {
		t.Fatal("Wait should drain the value sent before Close")
	}
	if got := rx.Latest(); got.Kind != KindFinished {
		t.Errorf("Latest kind = %v, want finished", got.Kind)
	}
	if rx.Wait() {
		t.Error("Wait should return false once the channel is drained and closed")
	}
}

func TestWatch_WaitBlocksUntilSend(t *testing.T) {
	tx, rx := NewWatch(Starting())
	if !rx.Wait() {
		t.Fatal("seed not delivered")
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		tx.Send(Progress(5, 50))
	}()

	done := make(chan bool, 1)
	go func() { done <- rx.Wait() }()

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("Wait returned false, want a delivered value")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not wake up on send")
	}

	if got := rx.Latest(); got.Downloaded != 5 {
		t.Errorf("Latest downloaded = %d, want 5", got.Downloaded)
	}
}

func TestWatch_ReceiverCloseCancelsSender(t *testing.T) {
	tx, rx := NewWatch(Starting())

	select {
	case <-tx.Cancelled():
		t.Fatal("Cancelled should not fire before the receiver closes")
	default:
	}

	rx.Close()

	select {
	case <-tx.Cancelled():
	default:
		t.Fatal("Cancelled should fire once the receiver closes")
	}

	// Further sends and closes must not panic or block.
	tx.Send(Progress(1, 10))
	tx.Close()
	rx.Close()
}

func TestWatch_WaitFalseAfterReceiverClose(t *testing.T) {
	_, rx := NewWatch(Starting())
	if !rx.Wait() {
		t.Fatal("seed not delivered")
	}

	rx.Close()
	if rx.Wait() {
		t.Error("Wait should return false on a closed receiver")
	}
}

func TestWatch_ConcurrentProducer(t *testing.T) {
	tx, rx := NewWatch(Starting())

	go func() {
		for i := int64(1); i <= 200; i++ {
			tx.Send(Progress(i*10, 2000))
		}
		tx.Send(Finished())
		tx.Close()
	}()

	var last Event
	var prev int64
	reads := 0
	for rx.Wait() {
		last = rx.Latest()
		if last.Kind == KindProgress {
			if last.Downloaded < prev {
				t.Fatalf("downloaded went backwards: %d after %d", last.Downloaded, prev)
			}
			prev = last.Downloaded
		}
		reads++
	}

	if last.Kind != KindFinished {
		t.Errorf("final observed event = %+v, want finished", last)
	}
	if reads > 202 {
		t.Errorf("observed %d reads for 202 sends, coalescing should cap this", reads)
	}
}
