// internal/editor/bus_test.go
package editor

import (
	"sync"
	"testing"
	"time"
)

func TestBusDispatchesToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var got []string
	bus.OnDocumentOpen(func(d Document) {
		mu.Lock()
		got = append(got, "first:"+d.Path)
		mu.Unlock()
	})
	bus.OnDocumentOpen(func(d Document) {
		mu.Lock()
		got = append(got, "second:"+d.Path)
		mu.Unlock()
	})

	bus.PublishDocumentOpen(Document{Path: "/tmp/a.go", Scheme: "file"})
	bus.Wait()

	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if got[0] != "first:/tmp/a.go" || got[1] != "second:/tmp/a.go" {
		t.Errorf("handlers ran out of registration order: %v", got)
	}
}

func TestBusCategoriesAreIndependent(t *testing.T) {
	bus := NewBus()

	opened := 0
	bus.OnDocumentOpen(func(Document) { opened++ })

	bus.PublishDocumentSave(Document{Path: "/tmp/b.go"})
	bus.PublishFileCreated("/tmp/c.go")
	bus.Wait()

	if opened != 0 {
		t.Errorf("document-open handler saw %d occurrences from other topics", opened)
	}
}

func TestBusDrainsUnsubscribedExecution(t *testing.T) {
	bus := NewBus()

	out := make(chan string)
	exit := make(chan int, 1)
	bus.PublishExecution(Execution{Command: "true", Started: time.Now(), Output: out, Exit: exit})

	// With no subscriber the bus must consume the streams so the writer
	// never blocks.
	for i := 0; i < 100; i++ {
		out <- "chunk"
	}
	close(out)
	exit <- 0
	bus.Wait()
}

func TestBusChatTurn(t *testing.T) {
	bus := NewBus()

	var turns []ChatTurn
	var mu sync.Mutex
	bus.OnChatTurn(func(turn ChatTurn) {
		mu.Lock()
		turns = append(turns, turn)
		mu.Unlock()
	})

	at := time.Now()
	bus.PublishChatTurn(ChatTurn{Message: "hi", IsUserMessage: true, Timestamp: at})
	bus.Wait()

	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if !turns[0].IsUserMessage || turns[0].Message != "hi" {
		t.Errorf("turn not delivered intact: %+v", turns[0])
	}
}
