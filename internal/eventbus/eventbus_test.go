package eventbus

import "testing"

func TestPublishSubscribe(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()
	b.Publish(42)
	if got := <-sub; got != 42 {
		t.Fatalf("got %d want 42", got)
	}
	b.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatalf("channel should be closed after unsubscribe")
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()
	for i := 0; i < 100; i++ {
		b.Publish(i) // must not block even with no reader
	}
	// The buffered prefix is still delivered in order.
	if got := <-sub; got != 0 {
		t.Fatalf("got %d want 0", got)
	}
	b.Close()
}

func TestCloseIsIdempotent(t *testing.T) {
	b := New[string]()
	sub := b.Subscribe()
	b.Close()
	b.Close()
	if _, ok := <-sub; ok {
		t.Fatalf("subscriber channel should be closed")
	}
	b.Publish("late") // no panic after close
	if late := b.Subscribe(); late == nil {
		t.Fatalf("subscribe after close should return a closed channel")
	}
}
