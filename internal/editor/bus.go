// internal/editor/bus.go
package editor

import (
	"sync"
	"time"
)

// Document is a raw occurrence concerning one editor document.
type Document struct {
	Path   string
	Scheme string
	Text   string
}

// Change is one contiguous edit within a keystroke occurrence.
type Change struct {
	Text        string `json:"text"`
	RangeOffset int    `json:"rangeOffset"`
	RangeLength int    `json:"rangeLength"`
}

// Keystroke is a raw document-edit occurrence.
type Keystroke struct {
	Document Document
	Changes  []Change
}

// Execution is a raw terminal command occurrence. Output is a finite stream
// of chunks that ends when the command completes; Exit delivers the status
// observed after the stream is fully drained.
type Execution struct {
	Command string
	Started time.Time
	Output  <-chan string
	Exit    <-chan int
}

// ChatTurn is the internal "chat turn recorded" signal raised by the chat
// session controller.
type ChatTurn struct {
	Message       string
	IsUserMessage bool
	Timestamp     time.Time
}

type topic[T any] struct {
	mu       sync.RWMutex
	handlers []func(T)
}

func (t *topic[T]) subscribe(fn func(T)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, fn)
}

func (t *topic[T]) empty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.handlers) == 0
}

func (t *topic[T]) publish(wg *sync.WaitGroup, v T) {
	t.mu.RLock()
	handlers := make([]func(T), len(t.handlers))
	copy(handlers, t.handlers)
	t.mu.RUnlock()

	// Each occurrence is its own unit of work: handling never blocks the
	// publisher or the next occurrence.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, h := range handlers {
			h(v)
		}
	}()
}

// Bus fans raw editor activity out to subscribed producers, one category per
// topic. It is the boundary between the editor plumbing and the pipeline.
type Bus struct {
	wg sync.WaitGroup

	documentOpen  topic[Document]
	documentSave  topic[Document]
	documentClose topic[Document]
	editorSwitch  topic[Document]
	keystroke     topic[Keystroke]
	execution     topic[Execution]
	fileCreated   topic[string]
	fileDeleted   topic[string]
	chatTurn      topic[ChatTurn]
}

// NewBus creates an empty activity bus.
func NewBus() *Bus {
	return &Bus{}
}

// Wait blocks until every dispatched occurrence has been handled.
func (b *Bus) Wait() { b.wg.Wait() }

func (b *Bus) OnDocumentOpen(fn func(Document))  { b.documentOpen.subscribe(fn) }
func (b *Bus) OnDocumentSave(fn func(Document))  { b.documentSave.subscribe(fn) }
func (b *Bus) OnDocumentClose(fn func(Document)) { b.documentClose.subscribe(fn) }
func (b *Bus) OnEditorSwitch(fn func(Document))  { b.editorSwitch.subscribe(fn) }
func (b *Bus) OnKeystroke(fn func(Keystroke))    { b.keystroke.subscribe(fn) }
func (b *Bus) OnExecution(fn func(Execution))    { b.execution.subscribe(fn) }
func (b *Bus) OnFileCreated(fn func(string))     { b.fileCreated.subscribe(fn) }
func (b *Bus) OnFileDeleted(fn func(string))     { b.fileDeleted.subscribe(fn) }
func (b *Bus) OnChatTurn(fn func(ChatTurn))      { b.chatTurn.subscribe(fn) }

func (b *Bus) PublishDocumentOpen(d Document)  { b.documentOpen.publish(&b.wg, d) }
func (b *Bus) PublishDocumentSave(d Document)  { b.documentSave.publish(&b.wg, d) }
func (b *Bus) PublishDocumentClose(d Document) { b.documentClose.publish(&b.wg, d) }
func (b *Bus) PublishEditorSwitch(d Document)  { b.editorSwitch.publish(&b.wg, d) }
func (b *Bus) PublishKeystroke(k Keystroke)    { b.keystroke.publish(&b.wg, k) }
func (b *Bus) PublishFileCreated(path string)  { b.fileCreated.publish(&b.wg, path) }
func (b *Bus) PublishFileDeleted(path string)  { b.fileDeleted.publish(&b.wg, path) }
func (b *Bus) PublishChatTurn(t ChatTurn)      { b.chatTurn.publish(&b.wg, t) }

// PublishExecution dispatches the occurrence like any other topic, except
// that with no subscribers the bus consumes the output and exit streams
// itself. The command's writer must never block on an unconsumed stream.
func (b *Bus) PublishExecution(e Execution) {
	if b.execution.empty() {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for range e.Output {
			}
			<-e.Exit
		}()
		return
	}
	b.execution.publish(&b.wg, e)
}
